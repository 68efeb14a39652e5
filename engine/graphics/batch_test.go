package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testProjection = mgl32.Ident4()
	testViewport   = [4]int32{0, 0, 640, 360}
)

func quadCorners(x, y, w, h float32) [4]mgl32.Vec2 {
	return [4]mgl32.Vec2{
		{x, y},
		{x + w, y},
		{x + w, y + h},
		{x, y + h},
	}
}

var fullUVs = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func testKey(tex TextureHandle) batchKey {
	return batchKey{texture: tex, program: 1, blend: BlendAlpha, target: ScreenTarget}
}

func TestBatch_CoalescesSameKey(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	key := testKey(7)
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(float32(i)*10, 0, 8, 8), fullUVs, ColorWhite))
	}
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 1)
	assert.Equal(t, int32(60), dev.draws[0].indexCount)
	assert.Equal(t, TextureHandle(7), dev.draws[0].texture)
}

func TestBatch_FlushesOnKeyChange(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		key := testKey(TextureHandle(1 + i%2))
		require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(0, 0, 8, 8), fullUVs, ColorWhite))
	}
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 6)
	assert.Equal(t, TextureHandle(1), dev.draws[0].texture)
	assert.Equal(t, TextureHandle(2), dev.draws[1].texture)
}

func TestBatch_BlendChangeSplitsBatch(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	alpha := testKey(1)
	additive := alpha
	additive.blend = BlendAdditive

	require.NoError(t, b.Quad(alpha, testProjection, testViewport, quadCorners(0, 0, 8, 8), fullUVs, ColorWhite))
	require.NoError(t, b.Quad(additive, testProjection, testViewport, quadCorners(8, 0, 8, 8), fullUVs, ColorWhite))
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 2)
	assert.Equal(t, BlendAlpha, dev.draws[0].blend)
	assert.Equal(t, BlendAdditive, dev.draws[1].blend)
}

func TestBatch_CapacityOverflowFlushesMidBatch(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 4)
	require.NoError(t, err)

	key := testKey(1)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(float32(i), 0, 1, 1), fullUVs, ColorWhite))
	}
	require.NoError(t, b.close())

	// First four quads in one draw, the fifth in a second one. No quad
	// is lost.
	require.Len(t, dev.draws, 2)
	assert.Equal(t, int32(24), dev.draws[0].indexCount)
	assert.Equal(t, int32(6), dev.draws[1].indexCount)
}

func TestBatch_PreservesSubmissionOrder(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	key := testKey(1)
	xs := []float32{30, 10, 20}
	for _, x := range xs {
		require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(x, 0, 1, 1), fullUVs, ColorWhite))
	}
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 1)
	verts := dev.draws[0].vertices
	// First float of each quad's first vertex is its x position.
	assert.Equal(t, float32(30), verts[0*4*VertexStride])
	assert.Equal(t, float32(10), verts[1*4*VertexStride])
	assert.Equal(t, float32(20), verts[2*4*VertexStride])
}

func TestBatch_QuadIndexPattern(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	key := testKey(1)
	require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(0, 0, 1, 1), fullUVs, ColorWhite))
	require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(1, 0, 1, 1), fullUVs, ColorWhite))
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 1)
	want := []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	assert.Equal(t, want, dev.draws[0].indices)
}

func TestBatch_ZeroAreaQuadAccepted(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	key := testKey(1)
	require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(5, 5, 0, 0), fullUVs, ColorWhite))
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 1)
	assert.Equal(t, int32(6), dev.draws[0].indexCount)
}

func TestBatch_MeshRebasesIndices(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	key := testKey(1)
	require.NoError(t, b.Quad(key, testProjection, testViewport, quadCorners(0, 0, 1, 1), fullUVs, ColorWhite))

	tri := []Vertex{
		{Position: mgl32.Vec2{0, 0}, Color: ColorWhite},
		{Position: mgl32.Vec2{1, 0}, Color: ColorWhite},
		{Position: mgl32.Vec2{0, 1}, Color: ColorWhite},
	}
	require.NoError(t, b.Mesh(key, testProjection, testViewport, tri, []uint32{0, 1, 2}))
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 1)
	got := dev.draws[0].indices
	assert.Equal(t, []uint32{4, 5, 6}, got[6:])
}

func TestBatch_OversizedMeshRejected(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 2)
	require.NoError(t, err)

	verts := make([]Vertex, 9)
	indices := make([]uint32, 9)
	for i := range indices {
		indices[i] = uint32(i % 9)
	}

	key := testKey(1)
	err = b.Mesh(key, testProjection, testViewport, verts, indices)
	require.Error(t, err)

	// The failed request leaves nothing behind.
	require.NoError(t, b.close())
	assert.Empty(t, dev.draws)
}

func TestBatch_FlushUsesCapturedStateOnKeyChange(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	screenKey := testKey(1)
	canvasKey := screenKey
	canvasKey.target = 9
	canvasViewport := [4]int32{0, 0, 128, 128}

	require.NoError(t, b.Quad(screenKey, testProjection, testViewport, quadCorners(0, 0, 1, 1), fullUVs, ColorWhite))
	// Target switch flushes the first batch; it must use the viewport
	// captured at open, not the canvas one.
	require.NoError(t, b.Quad(canvasKey, testProjection, canvasViewport, quadCorners(0, 0, 1, 1), fullUVs, ColorWhite))
	require.NoError(t, b.close())

	require.Len(t, dev.draws, 2)
	assert.Equal(t, testViewport, dev.draws[0].viewport)
	assert.Equal(t, ScreenTarget, dev.draws[0].target)
	assert.Equal(t, canvasViewport, dev.draws[1].viewport)
	assert.Equal(t, FramebufferHandle(9), dev.draws[1].target)
}

func TestBatch_EmptyFlushIsNoop(t *testing.T) {
	dev := newFakeDevice()
	b, err := NewBatch(dev, 64)
	require.NoError(t, err)

	require.NoError(t, b.Flush())
	require.NoError(t, b.close())
	assert.Empty(t, dev.draws)
	assert.Equal(t, uint64(0), b.FlushCount())
}

func TestNewBatch_RejectsBadCapacity(t *testing.T) {
	dev := newFakeDevice()

	_, err := NewBatch(dev, 0)
	assert.Error(t, err)

	_, err = NewBatch(dev, MaxBatchQuads+1)
	assert.Error(t, err)
}
