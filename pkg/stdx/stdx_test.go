package stdx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZero(t *testing.T) {
	assert.Equal(t, 0, Zero[int]())
	assert.Equal(t, "", Zero[string]())
	assert.Nil(t, Zero[map[string]any]())

	type pair struct{ A, B string }
	assert.Equal(t, pair{}, Zero[pair]())
}

func TestMust0(t *testing.T) {
	assert.NotPanics(t, func() { Must0(nil) })
	assert.Panics(t, func() { Must0(errors.New("boom")) })
}

func TestMust1(t *testing.T) {
	assert.Equal(t, 42, Must1(42, nil))
	assert.Panics(t, func() { Must1(0, errors.New("boom")) })
}
