package workflow

import "time"

// Context carries the inputs of one reviewer decision.
type Context struct {
	RequestID   string
	Kind        Kind
	RequesterID string
	ReviewerID  string
	Reason      string
	Conditions  string
	Deadline    *time.Time
}
