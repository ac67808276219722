package audit

import auditDomain "ibb-guide/internal/domain/audit"

// Entry is one auditable decision.
type Entry struct {
	ActorID    string
	Action     string
	TargetKind string
	TargetID   string
	Old        map[string]any
	New        map[string]any
	Reason     string
	Origin     auditDomain.Origin
}
