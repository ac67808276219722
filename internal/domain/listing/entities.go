package listing

import (
	"errors"
	"time"

	"ibb-guide/internal/domain/workflow"
)

var (
	ErrNotFound         = errors.New("listing not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Table: listings (establishments published in the directory)
type Listing struct {
	ID              uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ListingID       string          `gorm:"column:listing_id;type:char(32);not null;uniqueIndex" json:"listing_id"`
	OwnerID         *string         `gorm:"column:owner_id;type:char(32);index" json:"owner_id,omitempty"`
	Name            string          `gorm:"column:name;size:255;not null" json:"name"`
	Description     string          `gorm:"column:description;type:text" json:"description"`
	CategoryID      *uint64         `gorm:"column:category_id;index" json:"category_id,omitempty"`
	Phone           string          `gorm:"column:phone;size:32" json:"phone,omitempty"`
	Website         string          `gorm:"column:website;size:255" json:"website,omitempty"`
	IsActive        bool            `gorm:"column:is_active;not null;default:false" json:"is_active"`
	IsVerified      bool            `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	ApprovalStatus  workflow.Status `gorm:"column:approval_status;size:30;not null;default:'DRAFT';index" json:"approval_status"`
	RejectionReason string          `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ApprovedBy      *string         `gorm:"column:approved_by;type:char(32)" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at" json:"approved_at,omitempty"`
	Version         uint64          `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Listing) TableName() string { return "listings" }

// Table: categories
type Category struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;size:120;not null" json:"name"`
}

func (Category) TableName() string { return "categories" }

// Columns lists every mutable column for versioned updates.
func (l *Listing) Columns() map[string]any {
	return map[string]any{
		"owner_id":         l.OwnerID,
		"name":             l.Name,
		"description":      l.Description,
		"category_id":      l.CategoryID,
		"phone":            l.Phone,
		"website":          l.Website,
		"is_active":        l.IsActive,
		"is_verified":      l.IsVerified,
		"approval_status":  l.ApprovalStatus,
		"rejection_reason": l.RejectionReason,
		"approved_by":      l.ApprovedBy,
		"approved_at":      l.ApprovedAt,
	}
}
