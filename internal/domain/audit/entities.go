package audit

import (
	"time"

	"ibb-guide/pkg/jsonb"
)

const (
	ActionApprove            = "APPROVE"
	ActionReject             = "REJECT"
	ActionRequestInfo        = "REQUEST_INFO"
	ActionConditionalApprove = "CONDITIONAL_APPROVE"
	ActionRequestChange      = "REQUEST_CHANGE"
	ActionApproveRequest     = "APPROVE_REQUEST"
	ActionRejectRequest      = "REJECT_REQUEST"
	ActionSubmitRequest      = "SUBMIT_REQUEST"
)

// Table: audit_logs. Rows are insert-only.
type Record struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ActorID    string    `gorm:"column:actor_id;type:char(32);not null;index" json:"actor_id"`
	Action     string    `gorm:"column:action;size:40;not null;index" json:"action"`
	TargetKind string    `gorm:"column:target_kind;size:50;not null;index:idx_audit_logs_target" json:"target_kind"`
	TargetID   string    `gorm:"column:target_id;size:64;not null;index:idx_audit_logs_target" json:"target_id"`
	OldValues  jsonb.Map `gorm:"column:old_values" json:"old_values"`
	NewValues  jsonb.Map `gorm:"column:new_values" json:"new_values"`
	Diff       jsonb.Map `gorm:"column:diff" json:"diff"`
	Reason     string    `gorm:"column:reason;type:text" json:"reason"`
	ClientIP   *string   `gorm:"column:client_ip;size:45" json:"client_ip,omitempty"`
	UserAgent  string    `gorm:"column:user_agent;size:200" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "audit_logs" }
