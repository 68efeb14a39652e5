package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/core"
)

func TestNewTexture_ValidatesInput(t *testing.T) {
	dev := newFakeDevice()

	_, err := NewTexture(dev, 0, 4, FilterNearest, nil)
	assert.Error(t, err)

	_, err = NewTexture(dev, 2, 2, FilterNearest, make([]uint8, 3))
	assert.Error(t, err)

	tex, err := NewTexture(dev, 2, 2, FilterNearest, make([]uint8, 16))
	require.NoError(t, err)
	assert.Equal(t, int32(2), tex.Width())
	assert.Equal(t, int32(2), tex.Height())
}

func TestTexture_ReferenceCounting(t *testing.T) {
	dev := newFakeDevice()
	tex, err := NewTexture(dev, 2, 2, FilterNearest, nil)
	require.NoError(t, err)

	tex.Retain()
	tex.Release()
	// Still one reference; the device texture survives.
	_, live := dev.textures[tex.Handle()]
	assert.True(t, live)

	tex.Release()
	_, live = dev.textures[tex.Handle()]
	assert.False(t, live)
}

func TestTexture_SetDataValidatesBounds(t *testing.T) {
	dev := newFakeDevice()
	tex, err := NewTexture(dev, 4, 4, FilterNearest, nil)
	require.NoError(t, err)

	assert.Error(t, tex.setData(2, 2, 4, 4, make([]uint8, 64)))
	assert.Error(t, tex.setData(0, 0, 2, 2, make([]uint8, 3)))
	assert.NoError(t, tex.setData(1, 1, 2, 2, make([]uint8, 16)))
}

func TestShader_ReferenceCounting(t *testing.T) {
	dev := newFakeDevice()
	sh, err := NewShader(dev, "vert", "frag")
	require.NoError(t, err)

	sh.Retain()
	sh.Release()
	_, live := dev.programs[sh.Program()]
	assert.True(t, live)

	sh.Release()
	_, live = dev.programs[sh.Program()]
	assert.False(t, live)
}

func TestCanvas_ReleaseDestroysResources(t *testing.T) {
	dev := newFakeDevice()
	canvas, err := NewCanvas(dev, 64, 64, FilterLinear)
	require.NoError(t, err)

	assert.Equal(t, int32(64), canvas.Width())
	assert.NotEmpty(t, canvas.Name())

	texHandle := canvas.Texture().Handle()
	canvas.Release(dev)

	_, live := dev.textures[texHandle]
	assert.False(t, live)
	_, live = dev.framebuffers[canvas.framebuffer]
	assert.False(t, live)
}

func TestNewCanvas_RejectsBadDimensions(t *testing.T) {
	dev := newFakeDevice()
	_, err := NewCanvas(dev, 0, 64, FilterNearest)
	assert.Error(t, err)
}

func TestDrawReleasedTextureIsStateError(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)
	tex.Release()

	require.NoError(t, g.BeginFrame())
	err := g.DrawTexture(tex, NewDrawParams())
	require.NoError(t, g.EndFrame())

	var stateErr *core.StateError
	assert.ErrorAs(t, err, &stateErr)
	assert.Empty(t, dev.draws)
}
