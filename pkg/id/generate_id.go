package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (a v4 UUID without separators).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewEventID returns a canonical v4 UUID used as an idempotency key by event consumers.
func NewEventID() string { return uuid.NewString() }
