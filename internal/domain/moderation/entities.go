package moderation

import (
	"context"
	"time"
)

type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// Stronger reports whether s outranks o.
func (s Severity) Stronger(o Severity) bool { return s.rank() > o.rank() }

type Action string

const (
	ActionAllow Action = "allow"
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

type Verdict struct {
	Action   Action   `json:"action"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Matched  []string `json:"matched,omitempty"`
}

func Allow() Verdict { return Verdict{Action: ActionAllow, Severity: SeverityNone} }

func (v Verdict) Blocked() bool { return v.Action == ActionBlock }

// Classifier screens free text. Implementations may cache their rules.
type Classifier interface {
	Analyze(ctx context.Context, text string) (Verdict, error)
}

// Table: banned_words
type BannedWord struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Term      string    `gorm:"column:term;size:120;not null" json:"term"`
	Severity  Severity  `gorm:"column:severity;size:10;not null;default:'low'" json:"severity"`
	Language  string    `gorm:"column:language;size:5;not null;default:'ar'" json:"language"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BannedWord) TableName() string { return "banned_words" }

type WordRepository interface {
	ListActive(ctx context.Context) ([]BannedWord, error)
	Create(ctx context.Context, w *BannedWord) error
	Deactivate(ctx context.Context, id uint64) error
}
