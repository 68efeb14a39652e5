package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/core"
)

func newTestGraphics(t *testing.T) (*Graphics, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	g, err := New(dev, Config{
		LogicalWidth:  640,
		LogicalHeight: 360,
		WindowWidth:   1280,
		WindowHeight:  720,
		BatchCapacity: 64,
	})
	require.NoError(t, err)
	return g, dev
}

func newTestTexture(t *testing.T, g *Graphics, w, h int32) *Texture {
	t.Helper()
	tex, err := NewTexture(g.Device(), w, h, FilterNearest, nil)
	require.NoError(t, err)
	return tex
}

func TestGraphics_DrawOutsideFrameIsStateError(t *testing.T) {
	g, _ := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)

	err := g.DrawTexture(tex, NewDrawParams())
	require.Error(t, err)
	var stateErr *core.StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestGraphics_FrameCoalescesDraws(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)

	require.NoError(t, g.BeginFrame())
	for i := 0; i < 20; i++ {
		require.NoError(t, g.DrawTexture(tex, NewDrawParams().WithPosition(float32(i), 0)))
	}
	require.NoError(t, g.EndFrame())

	assert.Len(t, dev.draws, 1)
}

func TestGraphics_DoubleBeginFrameIsStateError(t *testing.T) {
	g, _ := newTestGraphics(t)

	require.NoError(t, g.BeginFrame())
	err := g.BeginFrame()
	var stateErr *core.StateError
	assert.ErrorAs(t, err, &stateErr)
	require.NoError(t, g.EndFrame())
}

func TestGraphics_CanvasStackRoundTrip(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)
	canvas, err := NewCanvas(g.Device(), 128, 128, FilterNearest)
	require.NoError(t, err)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.PushCanvas(canvas))
	assert.Equal(t, canvas, g.ActiveCanvas())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	require.NoError(t, g.PopCanvas())
	assert.Nil(t, g.ActiveCanvas())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	require.NoError(t, g.EndFrame())

	require.Len(t, dev.draws, 2)
	// First draw went to the canvas with its own viewport, second to the
	// letterboxed screen.
	assert.Equal(t, canvas.framebuffer, dev.draws[0].target)
	assert.Equal(t, [4]int32{0, 0, 128, 128}, dev.draws[0].viewport)
	assert.Equal(t, ScreenTarget, dev.draws[1].target)
	assert.Equal(t, [4]int32{0, 0, 1280, 720}, dev.draws[1].viewport)
}

func TestGraphics_PopWithoutPushIsStateError(t *testing.T) {
	g, _ := newTestGraphics(t)

	require.NoError(t, g.BeginFrame())
	err := g.PopCanvas()
	var stateErr *core.StateError
	assert.ErrorAs(t, err, &stateErr)
	require.NoError(t, g.EndFrame())
}

func TestGraphics_UnbalancedStackUnwindsAtEndFrame(t *testing.T) {
	g, _ := newTestGraphics(t)
	canvas, err := NewCanvas(g.Device(), 64, 64, FilterNearest)
	require.NoError(t, err)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.PushCanvas(canvas))
	require.NoError(t, g.EndFrame())

	// The next frame starts with a clean stack.
	require.NoError(t, g.BeginFrame())
	assert.Nil(t, g.ActiveCanvas())
	require.NoError(t, g.EndFrame())
}

func TestGraphics_DrawActiveCanvasRejected(t *testing.T) {
	g, _ := newTestGraphics(t)
	canvas, err := NewCanvas(g.Device(), 64, 64, FilterNearest)
	require.NoError(t, err)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.PushCanvas(canvas))
	err = g.DrawCanvas(canvas, NewDrawParams())
	var stateErr *core.StateError
	assert.ErrorAs(t, err, &stateErr)
	require.NoError(t, g.PopCanvas())
	require.NoError(t, g.EndFrame())
}

func TestGraphics_ZeroAreaWindowSuppressesFrame(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)

	g.OnResize(0, 0)
	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	require.NoError(t, g.EndFrame())
	assert.Empty(t, dev.draws)

	// Restoring the window resumes rendering.
	g.OnResize(1280, 720)
	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	require.NoError(t, g.EndFrame())
	assert.Len(t, dev.draws, 1)
}

func TestGraphics_LetterboxClearsBands(t *testing.T) {
	g, dev := newTestGraphics(t)

	g.OnResize(1600, 720)
	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.EndFrame())

	// The bands outside the centered viewport are cleared to black.
	require.NotEmpty(t, dev.clears)
	assert.Equal(t, ColorBlack, dev.clears[0])
}

func TestGraphics_ClearFlushesPendingDraws(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	require.NoError(t, g.Clear(ColorBlack))
	require.NoError(t, g.EndFrame())

	// The draw preceding the clear was not dropped.
	assert.Len(t, dev.draws, 1)
}

func TestGraphics_TextureMutationFlushesOpenBatch(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 2, 2)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))

	pixels := make([]uint8, 2*2*4)
	require.NoError(t, g.SetTextureData(tex, 0, 0, 2, 2, pixels))

	// The batched draw flushed before the upload so it samples the old
	// contents.
	assert.Len(t, dev.draws, 1)
	require.NoError(t, g.EndFrame())
}

func TestGraphics_TextureMutationWithoutBatchDoesNotFlush(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 2, 2)
	other := newTestTexture(t, g, 2, 2)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawTexture(other, NewDrawParams()))

	pixels := make([]uint8, 2*2*4)
	require.NoError(t, g.SetTextureData(tex, 0, 0, 2, 2, pixels))

	// Unrelated texture; the open batch stays open.
	assert.Empty(t, dev.draws)
	require.NoError(t, g.EndFrame())
	assert.Len(t, dev.draws, 1)
}

func TestGraphics_ShaderSwitchSplitsBatch(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 16, 16)
	custom, err := NewShader(g.Device(), "vert", "frag")
	require.NoError(t, err)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	g.SetShader(custom)
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	g.SetShader(nil)
	require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
	require.NoError(t, g.EndFrame())

	require.Len(t, dev.draws, 3)
	assert.Equal(t, dev.draws[0].program, dev.draws[2].program)
	assert.NotEqual(t, dev.draws[0].program, dev.draws[1].program)
}

func TestGraphics_DrawMeshUsesWhiteTextureWhenUntextured(t *testing.T) {
	g, dev := newTestGraphics(t)

	builder := NewGeometryBuilder()
	require.NoError(t, builder.Rectangle(Fill(), NewRectangle(0, 0, 10, 10)))
	mesh := builder.BuildMesh()

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawMesh(mesh, NewDrawParams()))
	require.NoError(t, g.EndFrame())

	require.Len(t, dev.draws, 1)
	assert.Equal(t, g.whiteTexture.Handle(), dev.draws[0].texture)
}

func TestGraphics_DrawRegionComputesUVs(t *testing.T) {
	g, dev := newTestGraphics(t)
	tex := newTestTexture(t, g, 64, 64)

	require.NoError(t, g.BeginFrame())
	require.NoError(t, g.DrawRegion(tex, NewRectangle(16, 32, 32, 16), NewDrawParams()))
	require.NoError(t, g.EndFrame())

	require.Len(t, dev.draws, 1)
	verts := dev.draws[0].vertices
	// First vertex: uv floats sit at offsets 2 and 3.
	assert.InDelta(t, 0.25, verts[2], 1e-6)
	assert.InDelta(t, 0.5, verts[3], 1e-6)
	// Third vertex (bottom-right corner of the region).
	assert.InDelta(t, 0.75, verts[2*VertexStride+2], 1e-6)
	assert.InDelta(t, 0.75, verts[2*VertexStride+3], 1e-6)
}

func TestGraphics_RejectsBadConfig(t *testing.T) {
	dev := newFakeDevice()

	_, err := New(dev, Config{LogicalWidth: 0, LogicalHeight: 360})
	assert.Error(t, err)
}

func TestGraphics_CoalescedFrameBindsOnce(t *testing.T) {
	countBinds := func(quads int) int {
		g, dev := newTestGraphics(t)
		tex := newTestTexture(t, g, 16, 16)
		require.NoError(t, g.BeginFrame())
		for i := 0; i < quads; i++ {
			require.NoError(t, g.DrawTexture(tex, NewDrawParams()))
		}
		require.NoError(t, g.EndFrame())
		return dev.bindCalls
	}

	// Same-key draws share one flush, so the target is bound the same
	// number of times no matter how many quads the frame carried.
	assert.Equal(t, countBinds(1), countBinds(10))
}
