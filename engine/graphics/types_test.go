package graphics

import (
	m "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDrawParams_TransformOrder(t *testing.T) {
	// Origin shifts first, then scale, then rotation, then position.
	params := NewDrawParams().
		WithOrigin(1, 0).
		WithScale(2, 2).
		WithRotation(float32(m.Pi / 2)).
		WithPosition(10, 10)

	// Local (1,0): origin cancels it to (0,0); lands on the position.
	got := params.transform(mgl32.Vec2{1, 0})
	assert.InDelta(t, 10, got.X(), 1e-5)
	assert.InDelta(t, 10, got.Y(), 1e-5)

	// Local (2,0): offset (1,0), scaled to (2,0), rotated 90° to (0,2),
	// translated.
	got = params.transform(mgl32.Vec2{2, 0})
	assert.InDelta(t, 10, got.X(), 1e-5)
	assert.InDelta(t, 12, got.Y(), 1e-5)
}

func TestDrawParams_DefaultIsIdentity(t *testing.T) {
	params := NewDrawParams()
	got := params.transform(mgl32.Vec2{3, 4})
	assert.InDelta(t, 3, got.X(), 1e-6)
	assert.InDelta(t, 4, got.Y(), 1e-6)
	assert.Equal(t, ColorWhite, params.Color)
	assert.Equal(t, BlendAlpha, params.Blend)
}

func TestColor_Vec4(t *testing.T) {
	c := NewColor(0.1, 0.2, 0.3, 0.4)
	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0.3, 0.4}, c.Vec4())
	assert.Equal(t, float32(1), RGB(0, 0, 0).A)
}
