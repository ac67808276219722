package account

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("account not found")

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
)

const (
	RoleStaff   = "staff"
	RolePartner = "partner"
	RoleTourist = "tourist"
)

// Table: accounts
type Account struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AccountID     string    `gorm:"column:account_id;type:char(32);not null;uniqueIndex" json:"account_id"`
	Username      string    `gorm:"column:username;size:150;not null" json:"username"`
	FullName      string    `gorm:"column:full_name;size:255" json:"full_name"`
	Email         string    `gorm:"column:email;size:255" json:"email"`
	Role          string    `gorm:"column:role;size:32;index" json:"role"`
	IsStaff       bool      `gorm:"column:is_staff;not null;default:false" json:"is_staff"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	AccountStatus Status    `gorm:"column:account_status;size:20;not null;default:'pending'" json:"account_status"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// CanReview reports whether the account holds the reviewer capability.
func (a *Account) CanReview() bool { return a != nil && a.IsStaff && a.IsActive }

// DisplayName falls back to the username when no full name is set.
func (a *Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

// IDs returns the account ids of accs in order.
func IDs(accs []Account) []string {
	out := make([]string, 0, len(accs))
	for _, a := range accs {
		out = append(out, a.AccountID)
	}
	return out
}
