package partner

import (
	"errors"
	"fmt"
	"time"

	"ibb-guide/internal/domain/workflow"
)

var ErrNotFound = errors.New("partner profile not found")

// Table: partner_profiles
type Profile struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ProfileID          string          `gorm:"column:profile_id;type:char(32);not null;uniqueIndex" json:"profile_id"`
	AccountID          string          `gorm:"column:account_id;type:char(32);not null;index" json:"account_id"`
	BusinessName       string          `gorm:"column:business_name;size:255;not null" json:"business_name"`
	Description        string          `gorm:"column:description;type:text" json:"description"`
	Status             workflow.Status `gorm:"column:status;size:30;not null;default:'PENDING';index" json:"status"`
	RejectionReason    string          `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	InfoRequestMessage string          `gorm:"column:info_request_message;type:text" json:"info_request_message,omitempty"`
	ReviewedBy         *string         `gorm:"column:reviewed_by;type:char(32)" json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	Version            uint64          `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "partner_profiles" }

// Columns lists every mutable column for versioned updates.
func (p *Profile) Columns() map[string]any {
	return map[string]any{
		"business_name":        p.BusinessName,
		"description":          p.Description,
		"status":               p.Status,
		"rejection_reason":     p.RejectionReason,
		"info_request_message": p.InfoRequestMessage,
		"reviewed_by":          p.ReviewedBy,
		"reviewed_at":          p.ReviewedAt,
	}
}

func (p *Profile) FieldValue(field string) (any, bool) {
	switch field {
	case "business_name":
		return p.BusinessName, true
	case "description":
		return p.Description, true
	}
	return nil, false
}

// SetField only accepts string values for the editable text fields.
func (p *Profile) SetField(field string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("field %q expects a string, got %T", field, v)
	}
	switch field {
	case "business_name":
		p.BusinessName = s
	case "description":
		p.Description = s
	default:
		return fmt.Errorf("unknown partner field %q", field)
	}
	return nil
}

func (p *Profile) Snapshot() map[string]any {
	out := p.Columns()
	out["profile_id"] = p.ProfileID
	out["account_id"] = p.AccountID
	return out
}
