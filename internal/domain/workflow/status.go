package workflow

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusPending     Status = "PENDING"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusNeedsInfo   Status = "NEEDS_INFO"
	StatusConditional Status = "CONDITIONAL_APPROVAL"
)

// IsTerminal reports whether no further transition is allowed under the baseline table.
func (s Status) IsTerminal() bool { return s == StatusApproved || s == StatusRejected }

func (s Status) String() string { return string(s) }

type Action string

const (
	ActionApprove            Action = "APPROVE"
	ActionReject             Action = "REJECT"
	ActionRequestInfo        Action = "REQUEST_INFO"
	ActionConditionalApprove Action = "CONDITIONAL_APPROVE"
)

func (a Action) String() string { return string(a) }

// Kind tags the entity a decision is about.
type Kind string

const (
	KindPartner       Kind = "partner"
	KindListing       Kind = "listing"
	KindPendingChange Kind = "pending_change"
	KindRequest       Kind = "request"
)

var statuses = map[string]Status{
	"DRAFT":                StatusDraft,
	"PENDING":              StatusPending,
	"APPROVED":             StatusApproved,
	"REJECTED":             StatusRejected,
	"NEEDS_INFO":           StatusNeedsInfo,
	"CONDITIONAL_APPROVAL": StatusConditional,
}

var actions = map[string]Action{
	"APPROVE":             ActionApprove,
	"REJECT":              ActionReject,
	"REQUEST_INFO":        ActionRequestInfo,
	"CONDITIONAL_APPROVE": ActionConditionalApprove,
	// short form used by older clients
	"CONDITIONAL": ActionConditionalApprove,
}

// ParseStatus accepts any letter case ("pending", "PENDING").
func ParseStatus(raw string) (Status, error) {
	if s, ok := statuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s, nil
	}
	return "", fmt.Errorf("invalid status %q", raw)
}

// ParseAction accepts any letter case ("approve", "request_info").
func ParseAction(raw string) (Action, error) {
	if a, ok := actions[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return a, nil
	}
	return "", fmt.Errorf("invalid action %q", raw)
}
