package uuidx

import "github.com/google/uuid"

// New returns a fresh version 7 UUID. V7 identifiers sort by creation time,
// which keeps journal records and span ids roughly ordered when inspected.
// It panics if the random source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a fresh version 7 UUID rendered as a string.
func NewString() string {
	return New().String()
}
