package approval

import (
	"time"

	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/workflow"
)

type DecisionInput struct {
	ReviewerID string
	TargetID   string
	// Reason is required for reject and request-info decisions.
	Reason string
	Origin auditDomain.Origin
}

// Counts feeds the dashboard badges.
type Counts struct {
	Partners int64 `json:"partners"`
	Listings int64 `json:"listings"`
	Changes  int64 `json:"changes"`
}

// decision is what a strategy needs to stamp review metadata.
type decision struct {
	action     workflow.Action
	reviewerID string
	reason     string
	at         time.Time
}

// subject is the entity under review as seen by the orchestrator.
type subject struct {
	id     string
	status workflow.Status
	// owner receives the decision notification
	owner  string
	entity any
}
