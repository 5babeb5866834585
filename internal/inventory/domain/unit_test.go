package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalUnit(t *testing.T) {
	assert.Equal(t, "kg", CanonicalUnit(" KG "))
	assert.Equal(t, "pack", CanonicalUnit("bag"))
	assert.Equal(t, "pack", CanonicalUnit("Piece"))
	assert.Equal(t, "pack", CanonicalUnit("pc"))
	assert.Equal(t, "", CanonicalUnit("dozen"))
}

func TestNormalizeUnit(t *testing.T) {
	t.Run("recognized sale unit wins", func(t *testing.T) {
		assert.Equal(t, "g", NormalizeUnit("g", "kg"))
	})

	t.Run("unrecognized sale unit falls back to batch unit", func(t *testing.T) {
		assert.Equal(t, "kg", NormalizeUnit("dozen", "kg"))
	})

	t.Run("neither recognized keeps the raw batch unit", func(t *testing.T) {
		assert.Equal(t, "crate", NormalizeUnit("dozen", "crate"))
	})
}
