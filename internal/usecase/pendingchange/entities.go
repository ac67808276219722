package pendingchange

import auditDomain "ibb-guide/internal/domain/audit"

type RequestInput struct {
	UserID    string
	ListingID string
	Field     string
	NewValue  string
	Origin    auditDomain.Origin
}
