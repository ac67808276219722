package workflow

import "fmt"

type transition struct {
	from   Status
	action Action
}

// Table maps (status, action) pairs to the resulting status.
type Table map[transition]Status

// baseTable is never mutated; per-kind extensions go through overlays.
var baseTable = Table{
	{StatusPending, ActionApprove}:            StatusApproved,
	{StatusPending, ActionReject}:             StatusRejected,
	{StatusPending, ActionRequestInfo}:        StatusNeedsInfo,
	{StatusPending, ActionConditionalApprove}: StatusConditional,
	{StatusNeedsInfo, ActionApprove}:          StatusApproved,
	{StatusNeedsInfo, ActionReject}:           StatusRejected,
	{StatusConditional, ActionApprove}:        StatusApproved,
	{StatusConditional, ActionReject}:         StatusRejected,
}

// Overlay is an extra set of legal transitions for one entity kind.
type Overlay struct {
	pairs Table
}

// NewOverlay copies the given pairs so later edits by the caller do not leak in.
func NewOverlay(pairs map[Status]map[Action]Status) Overlay {
	t := Table{}
	for from, byAction := range pairs {
		for action, to := range byAction {
			t[transition{from, action}] = to
		}
	}
	return Overlay{pairs: t}
}

// ListingOverlay lets a draft listing be approved or rejected directly.
var ListingOverlay = NewOverlay(map[Status]map[Action]Status{
	StatusDraft: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
})

var requiredFields = map[Action]string{
	ActionReject:             "reason",
	ActionRequestInfo:        "reason",
	ActionConditionalApprove: "conditions",
}

// Machine is a pure decision function over (status, action) pairs.
// The zero value uses the baseline table only.
type Machine struct {
	overlays []Overlay
}

func NewMachine(overlays ...Overlay) Machine {
	return Machine{overlays: append([]Overlay(nil), overlays...)}
}

func (m Machine) next(from Status, action Action) (Status, bool) {
	key := transition{from, action}
	for i := len(m.overlays) - 1; i >= 0; i-- {
		if to, ok := m.overlays[i].pairs[key]; ok {
			return to, true
		}
	}
	to, ok := baseTable[key]
	return to, ok
}

func (m Machine) CanTransition(from Status, action Action) (bool, string) {
	if _, ok := m.next(from, action); ok {
		return true, ""
	}
	if from.IsTerminal() {
		return false, fmt.Sprintf("already finalized (status: %s)", from)
	}
	return false, fmt.Sprintf("cannot %s from status %s", action, from)
}

func (m Machine) ValidateRequiredFields(action Action, ctx Context) (bool, string) {
	switch requiredFields[action] {
	case "reason":
		if ctx.Reason == "" {
			return false, fmt.Sprintf("reason is required for %s", action)
		}
	case "conditions":
		if ctx.Conditions == "" {
			return false, fmt.Sprintf("conditions are required for %s", action)
		}
	}
	return true, ""
}

// Execute validates the transition and required fields. On failure the
// returned status is the input status.
func (m Machine) Execute(from Status, action Action, ctx Context) (bool, Status, string) {
	if ok, reason := m.CanTransition(from, action); !ok {
		return false, from, reason
	}
	if ok, reason := m.ValidateRequiredFields(action, ctx); !ok {
		return false, from, reason
	}
	to, _ := m.next(from, action)
	return true, to, "action executed"
}

// ExecuteRaw is Execute for untyped inbound values.
func (m Machine) ExecuteRaw(from, action string, ctx Context) (bool, string, string) {
	s, err := ParseStatus(from)
	if err != nil {
		return false, from, err.Error()
	}
	a, err := ParseAction(action)
	if err != nil {
		return false, from, err.Error()
	}
	ok, to, msg := m.Execute(s, a, ctx)
	return ok, string(to), msg
}
