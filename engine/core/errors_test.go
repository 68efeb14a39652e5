package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorf_WrapsSentinel(t *testing.T) {
	err := ConfigErrorf("window size must be positive, got %dx%d", 0, 720)

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "0x720")
}

func TestResourceErrorf_WrapsSentinel(t *testing.T) {
	err := ResourceErrorf("texture %q not found", "player.png")

	assert.ErrorIs(t, err, ErrResource)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestStateError_Message(t *testing.T) {
	err := NewStateError("PopCanvas", "pop with empty canvas stack")

	assert.Equal(t, "state error in PopCanvas: pop with empty canvas stack", err.Error())

	var se *StateError
	assert.True(t, errors.As(error(err), &se))
	assert.Equal(t, "PopCanvas", se.Op)
}
