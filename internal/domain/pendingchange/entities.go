package pendingchange

import (
	"errors"
	"time"

	"ibb-guide/internal/domain/workflow"
)

var ErrNotFound = errors.New("pending change not found")

const EntityListing = "listing"

// SensitiveFields are the listing fields whose edits must be reviewed.
var SensitiveFields = map[string]string{
	"name":        "Name",
	"description": "Description",
}

func IsSensitiveField(field string) bool {
	_, ok := SensitiveFields[field]
	return ok
}

// ActiveKeyFor is unique among unresolved changes; it is cleared once a
// change is decided so history rows never collide.
func ActiveKeyFor(listingID, field string) string { return listingID + ":" + field }

// Table: pending_changes
type Change struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ChangeID    string          `gorm:"column:change_id;type:char(32);not null;uniqueIndex" json:"change_id"`
	EntityType  string          `gorm:"column:entity_type;size:50;not null;default:'listing'" json:"entity_type"`
	ListingID   string          `gorm:"column:listing_id;type:char(32);not null;index:idx_pending_changes_listing_status" json:"listing_id"`
	FieldName   string          `gorm:"column:field_name;size:50;not null" json:"field_name"`
	OldValue    string          `gorm:"column:old_value;type:text" json:"old_value"`
	NewValue    string          `gorm:"column:new_value;type:text" json:"new_value"`
	RequestedBy string          `gorm:"column:requested_by;type:char(32);not null;index" json:"requested_by"`
	Status      workflow.Status `gorm:"column:status;size:20;not null;default:'PENDING';index:idx_pending_changes_listing_status" json:"status"`
	ReviewedBy  *string         `gorm:"column:reviewed_by;type:char(32)" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote  string          `gorm:"column:review_note;type:text" json:"review_note,omitempty"`
	ClientIP    *string         `gorm:"column:client_ip;size:45" json:"client_ip,omitempty"`
	ActiveKey   *string         `gorm:"column:active_key;size:100;uniqueIndex" json:"-"`
	Version     uint64          `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Change) TableName() string { return "pending_changes" }

func (c *Change) IsPending() bool { return c.Status == workflow.StatusPending }

// FieldLabel is the human readable field name.
func (c *Change) FieldLabel() string {
	if l, ok := SensitiveFields[c.FieldName]; ok {
		return l
	}
	return c.FieldName
}

// DiffSummary renders "Field: 'old' → 'new'" with long values shortened.
func (c *Change) DiffSummary() string {
	return c.FieldLabel() + ": '" + preview(c.OldValue) + "' → '" + preview(c.NewValue) + "'"
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return s
}

// Resolve stamps the review metadata and releases the active key.
func (c *Change) Resolve(status workflow.Status, reviewer string, at time.Time, note string) {
	c.Status = status
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &at
	c.ReviewNote = note
	c.ActiveKey = nil
}

func (c *Change) Columns() map[string]any {
	return map[string]any{
		"old_value":    c.OldValue,
		"new_value":    c.NewValue,
		"requested_by": c.RequestedBy,
		"status":       c.Status,
		"reviewed_by":  c.ReviewedBy,
		"reviewed_at":  c.ReviewedAt,
		"review_note":  c.ReviewNote,
		"client_ip":    c.ClientIP,
		"active_key":   c.ActiveKey,
	}
}
