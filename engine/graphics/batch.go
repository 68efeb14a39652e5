package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
)

// MaxBatchQuads bounds the configurable batch capacity.
const MaxBatchQuads = 8191

// quadIndexPattern is the index layout of a single quad, repeated and
// re-based for every quad in a batch.
var quadIndexPattern = [6]uint32{0, 1, 2, 2, 3, 0}

// batchKey is the GPU state shared by every vertex in one batch. A draw
// request whose key differs from the open batch forces a flush first.
type batchKey struct {
	texture TextureHandle
	program ProgramHandle
	blend   BlendMode
	target  FramebufferHandle
}

type batchState uint8

const (
	batchIdle batchState = iota
	batchAccumulating
	batchFlushing
)

// Batch accumulates draw requests into CPU-side vertex/index buffers and
// flushes them to the device as a single indexed draw. Requests are
// rendered in submission order; only consecutive requests sharing a key
// are coalesced.
type Batch struct {
	device Device

	capacityQuads int
	vertexBuffer  BufferHandle
	indexBuffer   BufferHandle

	vertices    []float32
	indices     []uint32
	vertexCount int

	key        batchKey
	open       bool
	projection mgl32.Mat4
	viewport   [4]int32

	state batchState

	// flushes counts device draw calls since creation, surfaced for
	// diagnostics.
	flushes uint64
}

func NewBatch(device Device, capacityQuads int) (*Batch, error) {
	if capacityQuads <= 0 || capacityQuads > MaxBatchQuads {
		return nil, core.ConfigErrorf("batch capacity must be in 1..%d, got %d", MaxBatchQuads, capacityQuads)
	}

	vb, err := device.CreateVertexBuffer(capacityQuads*4*VertexStride, BufferUsageStream)
	if err != nil {
		return nil, err
	}
	ib, err := device.CreateIndexBuffer(capacityQuads*6, BufferUsageStream)
	if err != nil {
		device.DestroyBuffer(vb)
		return nil, err
	}

	return &Batch{
		device:        device,
		capacityQuads: capacityQuads,
		vertexBuffer:  vb,
		indexBuffer:   ib,
		vertices:      make([]float32, 0, capacityQuads*4*VertexStride),
		indices:       make([]uint32, 0, capacityQuads*6),
		projection:    mgl32.Ident4(),
	}, nil
}

func (b *Batch) Destroy() {
	b.device.DestroyBuffer(b.vertexBuffer)
	b.device.DestroyBuffer(b.indexBuffer)
}

// FlushCount reports how many device draw calls the batch has issued.
func (b *Batch) FlushCount() uint64 {
	return b.flushes
}

func (b *Batch) maxVertices() int {
	return b.capacityQuads * 4
}

func (b *Batch) maxIndices() int {
	return b.capacityQuads * 6
}

// ensure flushes the open batch when the incoming key differs, then opens
// a batch for the key, capturing the projection and viewport that will be
// active when it eventually flushes.
func (b *Batch) ensure(key batchKey, projection mgl32.Mat4, viewport [4]int32) error {
	if b.open && b.key == key {
		return nil
	}
	if b.open {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	b.key = key
	b.projection = projection
	b.viewport = viewport
	b.open = true
	b.state = batchAccumulating
	return nil
}

// reserve flushes mid-batch when the request would overflow the fixed
// buffers. The key and capture stay; no data is lost.
func (b *Batch) reserve(vertexCount, indexCount int) error {
	if vertexCount > b.maxVertices() || indexCount > b.maxIndices() {
		return core.ResourceErrorf("geometry of %d vertices / %d indices exceeds batch capacity of %d quads",
			vertexCount, indexCount, b.capacityQuads)
	}
	if b.vertexCount+vertexCount > b.maxVertices() || len(b.indices)+indexCount > b.maxIndices() {
		return b.Flush()
	}
	return nil
}

func (b *Batch) pushVertex(position, uv mgl32.Vec2, color Color) {
	b.vertices = append(b.vertices,
		position.X(), position.Y(),
		uv.X(), uv.Y(),
		color.R, color.G, color.B, color.A,
	)
	b.vertexCount++
}

// Quad appends one textured quad. corners are in draw order: top-left,
// top-right, bottom-right, bottom-left.
func (b *Batch) Quad(key batchKey, projection mgl32.Mat4, viewport [4]int32, corners, uvs [4]mgl32.Vec2, color Color) error {
	if err := b.ensure(key, projection, viewport); err != nil {
		return err
	}
	if err := b.reserve(4, 6); err != nil {
		return err
	}

	base := uint32(b.vertexCount)
	for i := 0; i < 4; i++ {
		b.pushVertex(corners[i], uvs[i], color)
	}
	for _, idx := range quadIndexPattern {
		b.indices = append(b.indices, base+idx)
	}
	return nil
}

// Mesh appends arbitrary triangle geometry, re-basing its indices into
// the shared stream.
func (b *Batch) Mesh(key batchKey, projection mgl32.Mat4, viewport [4]int32, vertices []Vertex, indices []uint32) error {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil
	}
	if err := b.ensure(key, projection, viewport); err != nil {
		return err
	}
	if err := b.reserve(len(vertices), len(indices)); err != nil {
		return err
	}

	base := uint32(b.vertexCount)
	for _, v := range vertices {
		b.pushVertex(v.Position, v.UV, v.Color)
	}
	for _, idx := range indices {
		b.indices = append(b.indices, base+idx)
	}
	return nil
}

// Flush uploads the accumulated vertex and index data and issues exactly
// one indexed draw, then clears the CPU-side buffers. Flushing an empty
// batch is a no-op.
func (b *Batch) Flush() error {
	if len(b.indices) == 0 {
		b.open = false
		b.state = batchIdle
		return nil
	}

	b.state = batchFlushing

	b.device.BindFramebuffer(b.key.target)
	b.device.SetViewport(b.viewport[0], b.viewport[1], b.viewport[2], b.viewport[3])
	b.device.SetBlendMode(b.key.blend)

	if err := b.device.SetUniformMat4(b.key.program, "u_projection", b.projection); err != nil {
		return err
	}
	if err := b.device.UpdateVertexBuffer(b.vertexBuffer, b.vertices); err != nil {
		return err
	}
	if err := b.device.UpdateIndexBuffer(b.indexBuffer, b.indices); err != nil {
		return err
	}
	if err := b.device.DrawIndexed(b.vertexBuffer, b.indexBuffer, b.key.texture, b.key.program, int32(len(b.indices))); err != nil {
		return err
	}

	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.vertexCount = 0
	b.flushes++
	b.state = batchAccumulating
	return nil
}

// close flushes pending work and returns the batch to idle. Called at
// frame end and before target switches that end batching entirely.
func (b *Batch) close() error {
	if err := b.Flush(); err != nil {
		return err
	}
	b.open = false
	b.state = batchIdle
	return nil
}

// usesTexture reports whether the open batch keys on the given texture.
// Texture mutation must flush first when this is true.
func (b *Batch) usesTexture(handle TextureHandle) bool {
	return b.open && len(b.indices) > 0 && b.key.texture == handle
}
