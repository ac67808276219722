package workflow

import "github.com/go-faster/errors"

var (
	// ErrForbidden is returned when the acting account lacks the reviewer capability.
	ErrForbidden = errors.New("actor is not allowed to review")
	// ErrStaleState is returned by conditional updates that matched no row.
	ErrStaleState = errors.New("entity state changed concurrently")
)

// Result is the outcome of a business operation. Rule violations are reported
// here; only authorization and infrastructure problems are returned as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Entity  any    `json:"entity,omitempty"`
	// Unchanged is set when the operation was a no-op (value already current).
	Unchanged bool `json:"unchanged,omitempty"`
}

func Ok(msg string, entity any) *Result { return &Result{Success: true, Message: msg, Entity: entity} }

func Fail(msg string) *Result { return &Result{Success: false, Message: msg} }

// MsgNotPending is reported when a conditional update lost a race.
const MsgNotPending = "not pending: the item was changed by another reviewer"

// abort is a rule violation raised inside a transaction. It rolls the
// transaction back and is then reported as a failed Result.
type abort struct{ msg string }

func (a *abort) Error() string { return a.msg }

// Abort returns an error that makes the enclosing transaction roll back and
// surfaces msg as a failed Result through AsResult.
func Abort(msg string) error { return &abort{msg: msg} }

// AsResult splits a transaction outcome into a business failure or a hard
// error. A nil err yields (nil, nil).
func AsResult(err error) (*Result, error) {
	if err == nil {
		return nil, nil
	}
	var a *abort
	if errors.As(err, &a) {
		return Fail(a.msg), nil
	}
	if errors.Is(err, ErrStaleState) {
		return Fail(MsgNotPending), nil
	}
	return nil, err
}
