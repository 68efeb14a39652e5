package opengl

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/graphics"
)

const vertexStrideBytes = graphics.VertexStride * 4

type vertexBuffer struct {
	glName    uint32
	vao       uint32
	capFloats int
}

type indexBuffer struct {
	glName     uint32
	capIndices int
}

type texture struct {
	glName uint32
	width  int32
	height int32
}

type framebuffer struct {
	glName uint32
}

type program struct {
	glName   uint32
	uniforms map[string]int32
}

// Device implements the GPU boundary on OpenGL 3.3 core. It allocates
// its own opaque handles so stale handles are caught in the maps here
// instead of being handed to the driver. All calls must come from the
// thread holding the GL context.
type Device struct {
	nextHandle uint32

	vertexBuffers map[graphics.BufferHandle]*vertexBuffer
	indexBuffers  map[graphics.BufferHandle]*indexBuffer
	textures      map[graphics.TextureHandle]*texture
	framebuffers  map[graphics.FramebufferHandle]*framebuffer
	programs      map[graphics.ProgramHandle]*program

	// Cached GL state so redundant binds never reach the driver.
	boundVAO         uint32
	boundTexture     uint32
	boundProgram     uint32
	boundFramebuffer uint32
	blend            graphics.BlendMode
	viewport         [4]int32

	initialized bool
}

func NewDevice() *Device {
	return &Device{
		vertexBuffers: make(map[graphics.BufferHandle]*vertexBuffer),
		indexBuffers:  make(map[graphics.BufferHandle]*indexBuffer),
		textures:      make(map[graphics.TextureHandle]*texture),
		framebuffers:  make(map[graphics.FramebufferHandle]*framebuffer),
		programs:      make(map[graphics.ProgramHandle]*program),
	}
}

func (d *Device) Initialize() error {
	if err := gl.Init(); err != nil {
		return core.ConfigErrorf("opengl init failed: %v", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	renderer := gl.GoStr(gl.GetString(gl.RENDERER))
	core.LogInfo("OpenGL %s on %s", version, renderer)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	d.blend = graphics.BlendAlpha

	// Invalidate caches so the first real bind of each kind executes.
	d.boundVAO = ^uint32(0)
	d.boundTexture = ^uint32(0)
	d.boundProgram = ^uint32(0)
	d.boundFramebuffer = ^uint32(0)

	d.initialized = true
	return nil
}

func (d *Device) Shutdown() error {
	if !d.initialized {
		return nil
	}
	for _, vb := range d.vertexBuffers {
		gl.DeleteVertexArrays(1, &vb.vao)
		gl.DeleteBuffers(1, &vb.glName)
	}
	for _, ib := range d.indexBuffers {
		gl.DeleteBuffers(1, &ib.glName)
	}
	for _, t := range d.textures {
		gl.DeleteTextures(1, &t.glName)
	}
	for _, fb := range d.framebuffers {
		gl.DeleteFramebuffers(1, &fb.glName)
	}
	for _, p := range d.programs {
		gl.DeleteProgram(p.glName)
	}
	d.vertexBuffers = make(map[graphics.BufferHandle]*vertexBuffer)
	d.indexBuffers = make(map[graphics.BufferHandle]*indexBuffer)
	d.textures = make(map[graphics.TextureHandle]*texture)
	d.framebuffers = make(map[graphics.FramebufferHandle]*framebuffer)
	d.programs = make(map[graphics.ProgramHandle]*program)
	d.initialized = false
	return nil
}

func (d *Device) allocHandle() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func glUsage(usage graphics.BufferUsage) uint32 {
	switch usage {
	case graphics.BufferUsageStatic:
		return gl.STATIC_DRAW
	case graphics.BufferUsageDynamic:
		return gl.DYNAMIC_DRAW
	default:
		return gl.STREAM_DRAW
	}
}

func (d *Device) CreateVertexBuffer(floatCapacity int, usage graphics.BufferUsage) (graphics.BufferHandle, error) {
	if floatCapacity <= 0 {
		return 0, core.ResourceErrorf("vertex buffer capacity must be positive, got %d", floatCapacity)
	}

	vb := &vertexBuffer{capFloats: floatCapacity}
	gl.GenBuffers(1, &vb.glName)
	gl.GenVertexArrays(1, &vb.vao)

	d.bindVAO(vb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.glName)
	gl.BufferData(gl.ARRAY_BUFFER, floatCapacity*4, nil, glUsage(usage))

	// Fixed engine vertex layout: position 2f, uv 2f, color 4f.
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, vertexStrideBytes, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, vertexStrideBytes, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, vertexStrideBytes, gl.PtrOffset(4*4))

	handle := graphics.BufferHandle(d.allocHandle())
	d.vertexBuffers[handle] = vb
	return handle, nil
}

func (d *Device) UpdateVertexBuffer(handle graphics.BufferHandle, data []float32) error {
	vb, ok := d.vertexBuffers[handle]
	if !ok {
		return d.staleHandle("Device.UpdateVertexBuffer", uint32(handle))
	}
	if len(data) > vb.capFloats {
		return core.ResourceErrorf("vertex data of %d floats exceeds buffer capacity %d", len(data), vb.capFloats)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.glName)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, gl.Ptr(data))
	return nil
}

func (d *Device) CreateIndexBuffer(indexCapacity int, usage graphics.BufferUsage) (graphics.BufferHandle, error) {
	if indexCapacity <= 0 {
		return 0, core.ResourceErrorf("index buffer capacity must be positive, got %d", indexCapacity)
	}

	ib := &indexBuffer{capIndices: indexCapacity}
	gl.GenBuffers(1, &ib.glName)

	// ELEMENT_ARRAY_BUFFER binding is VAO state; keep the allocation
	// out of any live VAO.
	d.bindVAO(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.glName)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexCapacity*4, nil, glUsage(usage))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	handle := graphics.BufferHandle(d.allocHandle())
	d.indexBuffers[handle] = ib
	return handle, nil
}

func (d *Device) UpdateIndexBuffer(handle graphics.BufferHandle, data []uint32) error {
	ib, ok := d.indexBuffers[handle]
	if !ok {
		return d.staleHandle("Device.UpdateIndexBuffer", uint32(handle))
	}
	if len(data) > ib.capIndices {
		return core.ResourceErrorf("index data of %d exceeds buffer capacity %d", len(data), ib.capIndices)
	}
	if len(data) == 0 {
		return nil
	}
	d.bindVAO(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.glName)
	gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(data)*4, gl.Ptr(data))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return nil
}

func (d *Device) DestroyBuffer(handle graphics.BufferHandle) {
	if vb, ok := d.vertexBuffers[handle]; ok {
		if d.boundVAO == vb.vao {
			d.bindVAO(0)
		}
		gl.DeleteVertexArrays(1, &vb.vao)
		gl.DeleteBuffers(1, &vb.glName)
		delete(d.vertexBuffers, handle)
		return
	}
	if ib, ok := d.indexBuffers[handle]; ok {
		gl.DeleteBuffers(1, &ib.glName)
		delete(d.indexBuffers, handle)
		return
	}
	d.staleHandle("Device.DestroyBuffer", uint32(handle))
}

func glFilter(filter graphics.FilterMode) int32 {
	if filter == graphics.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func (d *Device) CreateTexture(width, height int32, filter graphics.FilterMode, pixels []uint8) (graphics.TextureHandle, error) {
	if width <= 0 || height <= 0 {
		return 0, core.ResourceErrorf("texture dimensions must be positive, got %dx%d", width, height)
	}

	t := &texture{width: width, height: height}
	gl.GenTextures(1, &t.glName)
	d.bindTexture(t.glName)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	var ptr unsafe.Pointer
	if pixels != nil {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)

	handle := graphics.TextureHandle(d.allocHandle())
	d.textures[handle] = t
	return handle, nil
}

func (d *Device) UpdateTexture(handle graphics.TextureHandle, x, y, width, height int32, pixels []uint8) error {
	t, ok := d.textures[handle]
	if !ok {
		return d.staleHandle("Device.UpdateTexture", uint32(handle))
	}
	d.bindTexture(t.glName)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return nil
}

func (d *Device) SetTextureFilter(handle graphics.TextureHandle, filter graphics.FilterMode) error {
	t, ok := d.textures[handle]
	if !ok {
		return d.staleHandle("Device.SetTextureFilter", uint32(handle))
	}
	d.bindTexture(t.glName)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(filter))
	return nil
}

func (d *Device) DestroyTexture(handle graphics.TextureHandle) {
	t, ok := d.textures[handle]
	if !ok {
		d.staleHandle("Device.DestroyTexture", uint32(handle))
		return
	}
	if d.boundTexture == t.glName {
		d.bindTexture(0)
	}
	gl.DeleteTextures(1, &t.glName)
	delete(d.textures, handle)
}

func (d *Device) CreateFramebuffer(target graphics.TextureHandle) (graphics.FramebufferHandle, error) {
	t, ok := d.textures[target]
	if !ok {
		return 0, d.staleHandle("Device.CreateFramebuffer", uint32(target))
	}

	fb := &framebuffer{}
	gl.GenFramebuffers(1, &fb.glName)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.glName)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.glName, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFramebuffer)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fb.glName)
		return 0, core.ResourceErrorf("framebuffer incomplete, status 0x%x", status)
	}

	handle := graphics.FramebufferHandle(d.allocHandle())
	d.framebuffers[handle] = fb
	return handle, nil
}

func (d *Device) DestroyFramebuffer(handle graphics.FramebufferHandle) {
	fb, ok := d.framebuffers[handle]
	if !ok {
		d.staleHandle("Device.DestroyFramebuffer", uint32(handle))
		return
	}
	if d.boundFramebuffer == fb.glName {
		d.BindFramebuffer(graphics.ScreenTarget)
	}
	gl.DeleteFramebuffers(1, &fb.glName)
	delete(d.framebuffers, handle)
}

func (d *Device) BindFramebuffer(handle graphics.FramebufferHandle) {
	glName := uint32(0)
	if handle != graphics.ScreenTarget {
		fb, ok := d.framebuffers[handle]
		if !ok {
			d.staleHandle("Device.BindFramebuffer", uint32(handle))
			return
		}
		glName = fb.glName
	}
	if d.boundFramebuffer == glName {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, glName)
	d.boundFramebuffer = glName
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (graphics.ProgramHandle, error) {
	vert, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, err
	}
	frag, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, err
	}

	glName := gl.CreateProgram()
	gl.AttachShader(glName, vert)
	gl.AttachShader(glName, frag)
	gl.LinkProgram(glName)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(glName, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(glName, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(glName, logLength, nil, gl.Str(infoLog))
		gl.DeleteProgram(glName)
		return 0, core.ResourceErrorf("shader link failed: %s", strings.TrimRight(infoLog, "\x00"))
	}

	// The sampler always sits on unit 0.
	d.useProgram(glName)
	if loc := gl.GetUniformLocation(glName, gl.Str("u_texture\x00")); loc >= 0 {
		gl.Uniform1i(loc, 0)
	}

	handle := graphics.ProgramHandle(d.allocHandle())
	d.programs[handle] = &program{glName: glName, uniforms: make(map[string]int32)}
	return handle, nil
}

func (d *Device) DestroyProgram(handle graphics.ProgramHandle) {
	p, ok := d.programs[handle]
	if !ok {
		d.staleHandle("Device.DestroyProgram", uint32(handle))
		return
	}
	if d.boundProgram == p.glName {
		d.useProgram(0)
	}
	gl.DeleteProgram(p.glName)
	delete(d.programs, handle)
}

func (d *Device) uniformLocation(handle graphics.ProgramHandle, name string) (*program, int32, error) {
	p, ok := d.programs[handle]
	if !ok {
		return nil, -1, d.staleHandle("Device.SetUniform", uint32(handle))
	}
	loc, ok := p.uniforms[name]
	if !ok {
		loc = gl.GetUniformLocation(p.glName, gl.Str(name+"\x00"))
		p.uniforms[name] = loc
	}
	if loc < 0 {
		return nil, -1, core.ResourceErrorf("uniform %q not found in program", name)
	}
	return p, loc, nil
}

func (d *Device) SetUniformMat4(handle graphics.ProgramHandle, name string, value mgl32.Mat4) error {
	p, loc, err := d.uniformLocation(handle, name)
	if err != nil {
		return err
	}
	d.useProgram(p.glName)
	gl.UniformMatrix4fv(loc, 1, false, &value[0])
	return nil
}

func (d *Device) SetUniformVec4(handle graphics.ProgramHandle, name string, value mgl32.Vec4) error {
	p, loc, err := d.uniformLocation(handle, name)
	if err != nil {
		return err
	}
	d.useProgram(p.glName)
	gl.Uniform4f(loc, value.X(), value.Y(), value.Z(), value.W())
	return nil
}

func (d *Device) SetUniformFloat(handle graphics.ProgramHandle, name string, value float32) error {
	p, loc, err := d.uniformLocation(handle, name)
	if err != nil {
		return err
	}
	d.useProgram(p.glName)
	gl.Uniform1f(loc, value)
	return nil
}

func (d *Device) SetUniformInt(handle graphics.ProgramHandle, name string, value int32) error {
	p, loc, err := d.uniformLocation(handle, name)
	if err != nil {
		return err
	}
	d.useProgram(p.glName)
	gl.Uniform1i(loc, value)
	return nil
}

func (d *Device) SetViewport(x, y, width, height int32) {
	vp := [4]int32{x, y, width, height}
	if d.viewport == vp {
		return
	}
	gl.Viewport(x, y, width, height)
	d.viewport = vp
}

func (d *Device) SetBlendMode(mode graphics.BlendMode) {
	if d.blend == mode {
		return
	}
	switch mode {
	case graphics.BlendNone:
		gl.Disable(gl.BLEND)
	default:
		if d.blend == graphics.BlendNone {
			gl.Enable(gl.BLEND)
		}
		switch mode {
		case graphics.BlendAdditive:
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		case graphics.BlendMultiply:
			gl.BlendFunc(gl.DST_COLOR, gl.ZERO)
		default:
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		}
	}
	d.blend = mode
}

// Clear fills the current viewport region. Scissoring to the viewport
// keeps letterbox bands untouched when the viewport is inset.
func (d *Device) Clear(color graphics.Color) {
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(d.viewport[0], d.viewport[1], d.viewport[2], d.viewport[3])
	gl.ClearColor(color.R, color.G, color.B, color.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

func (d *Device) DrawIndexed(vertexHandle, indexHandle graphics.BufferHandle, textureHandle graphics.TextureHandle, programHandle graphics.ProgramHandle, indexCount int32) error {
	vb, ok := d.vertexBuffers[vertexHandle]
	if !ok {
		return d.staleHandle("Device.DrawIndexed", uint32(vertexHandle))
	}
	ib, ok := d.indexBuffers[indexHandle]
	if !ok {
		return d.staleHandle("Device.DrawIndexed", uint32(indexHandle))
	}
	t, ok := d.textures[textureHandle]
	if !ok {
		return d.staleHandle("Device.DrawIndexed", uint32(textureHandle))
	}
	p, ok := d.programs[programHandle]
	if !ok {
		return d.staleHandle("Device.DrawIndexed", uint32(programHandle))
	}
	if indexCount <= 0 {
		return nil
	}

	d.useProgram(p.glName)
	d.bindTexture(t.glName)
	d.bindVAO(vb.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.glName)
	gl.DrawElements(gl.TRIANGLES, indexCount, gl.UNSIGNED_INT, nil)
	return nil
}

func (d *Device) bindVAO(vao uint32) {
	if d.boundVAO == vao {
		return
	}
	gl.BindVertexArray(vao)
	d.boundVAO = vao
}

func (d *Device) bindTexture(glName uint32) {
	if d.boundTexture == glName {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, glName)
	d.boundTexture = glName
}

func (d *Device) useProgram(glName uint32) {
	if d.boundProgram == glName {
		return
	}
	gl.UseProgram(glName)
	d.boundProgram = glName
}

func (d *Device) staleHandle(op string, handle uint32) error {
	err := core.NewStateError(op, "handle %d is not live (destroyed or never created)", handle)
	core.ReportStateError(err)
	return err
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		kind := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			kind = "fragment"
		}
		return 0, core.ResourceErrorf("%s shader compile failed: %s", kind, strings.TrimRight(infoLog, "\x00"))
	}
	return shader, nil
}

var _ graphics.Device = (*Device)(nil)
