package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
)

// drawCall records one DrawIndexed issued against the fake device,
// together with the state and data that were current when it happened.
type drawCall struct {
	texture    TextureHandle
	program    ProgramHandle
	indexCount int32
	blend      BlendMode
	target     FramebufferHandle
	viewport   [4]int32
	projection mgl32.Mat4
	vertices   []float32
	indices    []uint32
}

// fakeDevice implements Device entirely in memory, recording the calls
// the renderer makes so tests can assert on batching behavior.
type fakeDevice struct {
	nextHandle uint32

	vertexData   map[BufferHandle][]float32
	indexData    map[BufferHandle][]uint32
	textures     map[TextureHandle][2]int32
	framebuffers map[FramebufferHandle]TextureHandle
	programs     map[ProgramHandle]bool

	boundTarget FramebufferHandle
	blend       BlendMode
	viewport    [4]int32
	projection  mgl32.Mat4

	draws  []drawCall
	clears []Color

	bindCalls int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		vertexData:   make(map[BufferHandle][]float32),
		indexData:    make(map[BufferHandle][]uint32),
		textures:     make(map[TextureHandle][2]int32),
		framebuffers: make(map[FramebufferHandle]TextureHandle),
		programs:     make(map[ProgramHandle]bool),
	}
}

func (d *fakeDevice) alloc() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *fakeDevice) Initialize() error { return nil }
func (d *fakeDevice) Shutdown() error   { return nil }

func (d *fakeDevice) CreateVertexBuffer(floatCapacity int, usage BufferUsage) (BufferHandle, error) {
	h := BufferHandle(d.alloc())
	d.vertexData[h] = nil
	return h, nil
}

func (d *fakeDevice) UpdateVertexBuffer(handle BufferHandle, data []float32) error {
	if _, ok := d.vertexData[handle]; !ok {
		return core.ResourceErrorf("unknown vertex buffer %d", handle)
	}
	d.vertexData[handle] = append([]float32(nil), data...)
	return nil
}

func (d *fakeDevice) CreateIndexBuffer(indexCapacity int, usage BufferUsage) (BufferHandle, error) {
	h := BufferHandle(d.alloc())
	d.indexData[h] = nil
	return h, nil
}

func (d *fakeDevice) UpdateIndexBuffer(handle BufferHandle, data []uint32) error {
	if _, ok := d.indexData[handle]; !ok {
		return core.ResourceErrorf("unknown index buffer %d", handle)
	}
	d.indexData[handle] = append([]uint32(nil), data...)
	return nil
}

func (d *fakeDevice) DestroyBuffer(handle BufferHandle) {
	delete(d.vertexData, handle)
	delete(d.indexData, handle)
}

func (d *fakeDevice) CreateTexture(width, height int32, filter FilterMode, pixels []uint8) (TextureHandle, error) {
	h := TextureHandle(d.alloc())
	d.textures[h] = [2]int32{width, height}
	return h, nil
}

func (d *fakeDevice) UpdateTexture(handle TextureHandle, x, y, width, height int32, pixels []uint8) error {
	if _, ok := d.textures[handle]; !ok {
		return core.ResourceErrorf("unknown texture %d", handle)
	}
	return nil
}

func (d *fakeDevice) SetTextureFilter(handle TextureHandle, filter FilterMode) error {
	if _, ok := d.textures[handle]; !ok {
		return core.ResourceErrorf("unknown texture %d", handle)
	}
	return nil
}

func (d *fakeDevice) DestroyTexture(handle TextureHandle) {
	delete(d.textures, handle)
}

func (d *fakeDevice) CreateFramebuffer(target TextureHandle) (FramebufferHandle, error) {
	if _, ok := d.textures[target]; !ok {
		return 0, core.ResourceErrorf("unknown texture %d", target)
	}
	h := FramebufferHandle(d.alloc())
	d.framebuffers[h] = target
	return h, nil
}

func (d *fakeDevice) DestroyFramebuffer(handle FramebufferHandle) {
	delete(d.framebuffers, handle)
}

func (d *fakeDevice) BindFramebuffer(handle FramebufferHandle) {
	d.bindCalls++
	d.boundTarget = handle
}

func (d *fakeDevice) CreateProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error) {
	h := ProgramHandle(d.alloc())
	d.programs[h] = true
	return h, nil
}

func (d *fakeDevice) DestroyProgram(handle ProgramHandle) {
	delete(d.programs, handle)
}

func (d *fakeDevice) SetUniformMat4(program ProgramHandle, name string, value mgl32.Mat4) error {
	if name == "u_projection" {
		d.projection = value
	}
	return nil
}

func (d *fakeDevice) SetUniformVec4(program ProgramHandle, name string, value mgl32.Vec4) error {
	return nil
}

func (d *fakeDevice) SetUniformFloat(program ProgramHandle, name string, value float32) error {
	return nil
}

func (d *fakeDevice) SetUniformInt(program ProgramHandle, name string, value int32) error {
	return nil
}

func (d *fakeDevice) SetViewport(x, y, width, height int32) {
	d.viewport = [4]int32{x, y, width, height}
}

func (d *fakeDevice) SetBlendMode(mode BlendMode) {
	d.blend = mode
}

func (d *fakeDevice) Clear(color Color) {
	d.clears = append(d.clears, color)
}

func (d *fakeDevice) DrawIndexed(vertexBuffer, indexBuffer BufferHandle, texture TextureHandle, program ProgramHandle, indexCount int32) error {
	d.draws = append(d.draws, drawCall{
		texture:    texture,
		program:    program,
		indexCount: indexCount,
		blend:      d.blend,
		target:     d.boundTarget,
		viewport:   d.viewport,
		projection: d.projection,
		vertices:   append([]float32(nil), d.vertexData[vertexBuffer]...),
		indices:    append([]uint32(nil), d.indexData[indexBuffer]...),
	})
	return nil
}

var _ Device = (*fakeDevice)(nil)
