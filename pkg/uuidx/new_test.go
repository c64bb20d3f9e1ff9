package uuidx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id := New()
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
	assert.NotEqual(t, id, New(), "Generated UUIDs should be unique")
}

func TestNewString(t *testing.T) {
	idStr := NewString()
	id, err := uuid.Parse(idStr)
	assert.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNew_Ordering(t *testing.T) {
	// V7 identifiers embed a millisecond timestamp, so ids minted in sequence
	// compare in mint order often enough for journal inspection to be useful.
	first := NewString()
	second := NewString()
	assert.LessOrEqual(t, first[:8], second[:8])
}
