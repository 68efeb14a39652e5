package graphics

import "github.com/go-gl/mathgl/mgl32"

// Opaque device-side resource handles. A zero handle is never valid,
// except for FramebufferHandle where zero addresses the default (screen)
// framebuffer.
type (
	BufferHandle      uint32
	TextureHandle     uint32
	FramebufferHandle uint32
	ProgramHandle     uint32
)

// ScreenTarget is the framebuffer handle of the window surface.
const ScreenTarget FramebufferHandle = 0

// Device is the boundary to the GPU driver. All GPU commands the engine
// issues go through this interface; nothing above it touches the driver.
// Implementations must make Bind-style operations idempotent via a state
// cache, and must report use of destroyed handles as an error rather than
// passing them to the driver.
//
// The contract is single-threaded: every call happens on the thread that
// owns the GPU context.
type Device interface {
	Initialize() error
	Shutdown() error

	// Vertex buffers hold packed float32 vertex data with the engine's
	// fixed layout (position 2f, uv 2f, color 4f).
	CreateVertexBuffer(floatCapacity int, usage BufferUsage) (BufferHandle, error)
	UpdateVertexBuffer(handle BufferHandle, data []float32) error
	CreateIndexBuffer(indexCapacity int, usage BufferUsage) (BufferHandle, error)
	UpdateIndexBuffer(handle BufferHandle, data []uint32) error
	DestroyBuffer(handle BufferHandle)

	// Textures are always RGBA8. pixels may be nil for an uninitialized
	// (render target) texture.
	CreateTexture(width, height int32, filter FilterMode, pixels []uint8) (TextureHandle, error)
	UpdateTexture(handle TextureHandle, x, y, width, height int32, pixels []uint8) error
	SetTextureFilter(handle TextureHandle, filter FilterMode) error
	DestroyTexture(handle TextureHandle)

	CreateFramebuffer(target TextureHandle) (FramebufferHandle, error)
	DestroyFramebuffer(handle FramebufferHandle)
	// BindFramebuffer makes the handle the active render target.
	// ScreenTarget binds the window surface. Re-binding the already
	// bound target is a no-op.
	BindFramebuffer(handle FramebufferHandle)

	CreateProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error)
	DestroyProgram(handle ProgramHandle)
	SetUniformMat4(program ProgramHandle, name string, value mgl32.Mat4) error
	SetUniformVec4(program ProgramHandle, name string, value mgl32.Vec4) error
	SetUniformFloat(program ProgramHandle, name string, value float32) error
	SetUniformInt(program ProgramHandle, name string, value int32) error

	SetViewport(x, y, width, height int32)
	SetBlendMode(mode BlendMode)
	Clear(color Color)

	// DrawIndexed issues one indexed draw of indexCount indices using the
	// given buffers, texture and program. This is the only draw primitive
	// the engine uses; one flush maps to exactly one call.
	DrawIndexed(vertexBuffer, indexBuffer BufferHandle, texture TextureHandle, program ProgramHandle, indexCount int32) error
}
