package notification

import (
	"context"
	"time"

	"ibb-guide/pkg/id"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	EventPartnerApproved  = "PARTNER_APPROVED"
	EventPartnerRejected  = "PARTNER_REJECTED"
	EventPartnerNeedsInfo = "PARTNER_NEEDS_INFO"
	EventListingApproved  = "LISTING_APPROVED"
	EventListingRejected  = "LISTING_REJECTED"
	EventChangeRequested  = "CHANGE_REQUESTED"
	EventChangeApproved   = "CHANGE_APPROVED"
	EventChangeRejected   = "CHANGE_REJECTED"
	EventRequestSubmitted = "REQUEST_SUBMITTED"
	EventRequestUpdated   = "REQUEST_STATUS_UPDATED"
)

// Audience selects recipients: one role, one account, or everybody.
type Audience struct {
	Role        string `json:"role,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
	All         bool   `json:"all,omitempty"`
}

func ToRole(role string) Audience { return Audience{Role: role} }
func ToRecipient(accountID string) Audience { return Audience{RecipientID: accountID} }
func Broadcast() Audience { return Audience{All: true} }
func (a Audience) IsZero() bool { return a.Role == "" && a.RecipientID == "" && !a.All }

type Event struct {
	// EventID lets consumers drop redeliveries.
	EventID    string         `json:"event_id"`
	Name       string         `json:"name"`
	Payload    map[string]any `json:"payload"`
	Audience   Audience       `json:"audience"`
	Priority   Priority       `json:"priority"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewEvent(name string, payload map[string]any, audience Audience, priority Priority) Event {
	if priority == "" {
		priority = PriorityMedium
	}
	return Event{
		EventID:    id.NewEventID(),
		Name:       name,
		Payload:    payload,
		Audience:   audience,
		Priority:   priority,
		OccurredAt: time.Now().UTC(),
	}
}

// Dispatcher delivers events outside of any transaction. Emit must not
// block on delivery and never reports failure to the caller.
type Dispatcher interface {
	Emit(ctx context.Context, e Event)
}

// Publisher performs a single delivery attempt.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Batch collects events raised inside a transaction so they can be emitted
// after commit.
type Batch []Event

func (b *Batch) Add(e Event) { *b = append(*b, e) }

// AddPerRecipient queues one event for each recipient account.
func (b *Batch) AddPerRecipient(name string, payload map[string]any, recipients []string, priority Priority) {
	for _, r := range recipients {
		b.Add(NewEvent(name, payload, ToRecipient(r), priority))
	}
}

// Flush hands every event to d. A nil dispatcher drops them.
func (b Batch) Flush(ctx context.Context, d Dispatcher) {
	if d == nil {
		return
	}
	for _, e := range b {
		d.Emit(ctx, e)
	}
}
