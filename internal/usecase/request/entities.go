package request

import (
	"time"

	auditDomain "ibb-guide/internal/domain/audit"
)

type SubmitInput struct {
	UserID string
	// RequestType defaults to UPDATE_INFO.
	RequestType string
	TargetKind  string
	TargetID    string
	Changes     map[string]any
	Description string
	Origin      auditDomain.Origin
}

type DecideInput struct {
	RequestID  string
	ReviewerID string
	// Reason is the reviewer's response shown to the requester.
	Reason     string
	Conditions string
	Deadline   *time.Time
	Origin     auditDomain.Origin
}
