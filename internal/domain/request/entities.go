package request

import (
	"errors"
	"time"

	"ibb-guide/internal/domain/workflow"
	"ibb-guide/pkg/jsonb"
)

var (
	ErrNotFound       = errors.New("request not found")
	ErrTargetNotFound = errors.New("request target not found")
)

// Request types. Each one decides what approval does to the target.
const (
	TypeUpdateInfo          = "UPDATE_INFO"
	TypeAddPlace            = "ADD_PLACE"
	TypeVerifyEstablishment = "VERIFY_ESTABLISHMENT"
	TypeUpgradePartner      = "UPGRADE_PARTNER"
)

// Decision kinds recorded for every reviewer answer.
const (
	DecisionApprove     = "APPROVE"
	DecisionReject      = "REJECT"
	DecisionRequestInfo = "REQUEST_INFO"
	DecisionConditional = "CONDITIONAL"
)

// DecisionFor maps a workflow action onto the recorded decision kind.
func DecisionFor(a workflow.Action) (string, bool) {
	switch a {
	case workflow.ActionApprove:
		return DecisionApprove, true
	case workflow.ActionReject:
		return DecisionReject, true
	case workflow.ActionRequestInfo:
		return DecisionRequestInfo, true
	case workflow.ActionConditionalApprove:
		return DecisionConditional, true
	}
	return "", false
}

// Target is an entity a generic request can change field by field.
type Target interface {
	FieldValue(field string) (any, bool)
	SetField(field string, v any) error
	Snapshot() map[string]any
}

// Table: requests
type Request struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RequestID     string          `gorm:"column:request_id;type:char(32);not null;uniqueIndex" json:"request_id"`
	RequesterID   string          `gorm:"column:requester_id;type:char(32);not null;index" json:"requester_id"`
	RequestType   string          `gorm:"column:request_type;size:50;not null" json:"request_type"`
	TargetKind    string          `gorm:"column:target_kind;size:50;not null;index:idx_requests_target" json:"target_kind"`
	TargetID      string          `gorm:"column:target_id;type:char(32);not null;index:idx_requests_target" json:"target_id"`
	Changes       jsonb.Map       `gorm:"column:changes" json:"changes"`
	OriginalData  jsonb.Map       `gorm:"column:original_data" json:"original_data"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	Status        workflow.Status `gorm:"column:status;size:30;not null;default:'PENDING';index" json:"status"`
	AdminResponse string          `gorm:"column:admin_response;type:text" json:"admin_response,omitempty"`
	Conditions    string          `gorm:"column:conditions;type:text" json:"conditions,omitempty"`
	Deadline      *time.Time      `gorm:"column:deadline" json:"deadline,omitempty"`
	ReviewedBy    *string         `gorm:"column:reviewed_by;type:char(32)" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	Version       uint64          `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "requests" }

func (r *Request) Columns() map[string]any {
	return map[string]any{
		"status":         r.Status,
		"admin_response": r.AdminResponse,
		"conditions":     r.Conditions,
		"deadline":       r.Deadline,
		"reviewed_by":    r.ReviewedBy,
		"reviewed_at":    r.ReviewedAt,
	}
}

// Table: request_status_logs
type StatusLog struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RequestID    string          `gorm:"column:request_id;type:char(32);not null;index" json:"request_id"`
	Status       workflow.Status `gorm:"column:status;size:30;not null" json:"status"`
	ChangedBy    string          `gorm:"column:changed_by;type:char(32);not null" json:"changed_by"`
	Message      string          `gorm:"column:message;type:text" json:"message"`
	InternalNote string          `gorm:"column:internal_note;type:text" json:"-"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StatusLog) TableName() string { return "request_status_logs" }

// Table: entity_versions. Snapshot of a target taken before approved
// changes were applied; RevertPatch (RFC 6902) turns the applied state back.
type EntityVersion struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TargetKind  string    `gorm:"column:target_kind;size:50;not null;index:idx_entity_versions_target" json:"target_kind"`
	TargetID    string    `gorm:"column:target_id;type:char(32);not null;index:idx_entity_versions_target" json:"target_id"`
	Snapshot    jsonb.Map `gorm:"column:snapshot" json:"snapshot"`
	RevertPatch string    `gorm:"column:revert_patch;type:text" json:"revert_patch"`
	CreatedBy   string    `gorm:"column:created_by;type:char(32);not null" json:"created_by"`
	Reason      string    `gorm:"column:reason;size:255" json:"reason"`
	RequestID   string    `gorm:"column:request_id;type:char(32);index" json:"request_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EntityVersion) TableName() string { return "entity_versions" }

// Table: approval_decisions. The formal record of one reviewer answer,
// written in the same transaction as the status change it caused.
type Decision struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DecisionID string     `gorm:"column:decision_id;type:char(32);not null;uniqueIndex" json:"decision_id"`
	RequestID  string     `gorm:"column:request_id;type:char(32);not null;index:idx_decisions_request" json:"request_id"`
	DecidedBy  string     `gorm:"column:decided_by;type:char(32);not null;index" json:"decided_by"`
	Decision   string     `gorm:"column:decision;size:20;not null;index:idx_decisions_request" json:"decision"`
	Reason     string     `gorm:"column:reason;type:text" json:"reason"`
	Conditions string     `gorm:"column:conditions;type:text" json:"conditions,omitempty"`
	Deadline   *time.Time `gorm:"column:deadline" json:"deadline,omitempty"`
	IsFinal    bool       `gorm:"column:is_final;not null;default:true" json:"is_final"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Decision) TableName() string { return "approval_decisions" }
