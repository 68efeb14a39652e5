package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
)

// DefaultBatchCapacity is the quad capacity used when the configuration
// does not specify one.
const DefaultBatchCapacity = 2048

type Config struct {
	// LogicalWidth/LogicalHeight is the design resolution all drawing
	// uses, independent of the window size.
	LogicalWidth  int32
	LogicalHeight int32
	WindowWidth   int32
	WindowHeight  int32
	// BatchCapacity is the batch buffer size in quads.
	BatchCapacity int
}

// Graphics is the renderer frontend: it owns the batcher, the camera and
// the built-in resources, and tracks the render-target stack. All
// methods must be called from the thread owning the GPU context.
type Graphics struct {
	device Device
	batch  *Batch
	camera *Camera

	defaultShader *Shader
	activeShader  *Shader

	// whiteTexture backs untextured geometry (shapes, solid fills).
	whiteTexture *Texture

	canvasStack []*Canvas

	inFrame    bool
	suppressed bool
}

func New(device Device, cfg Config) (*Graphics, error) {
	if cfg.LogicalWidth <= 0 || cfg.LogicalHeight <= 0 {
		return nil, core.ConfigErrorf("logical resolution must be positive, got %dx%d", cfg.LogicalWidth, cfg.LogicalHeight)
	}
	if cfg.BatchCapacity == 0 {
		cfg.BatchCapacity = DefaultBatchCapacity
	}

	batch, err := NewBatch(device, cfg.BatchCapacity)
	if err != nil {
		return nil, err
	}

	shader, err := newDefaultShader(device)
	if err != nil {
		batch.Destroy()
		return nil, err
	}

	white, err := NewTexture(device, 1, 1, FilterNearest, []uint8{0xff, 0xff, 0xff, 0xff})
	if err != nil {
		shader.Release()
		batch.Destroy()
		return nil, err
	}

	return &Graphics{
		device:        device,
		batch:         batch,
		camera:        NewCamera(cfg.LogicalWidth, cfg.LogicalHeight, cfg.WindowWidth, cfg.WindowHeight),
		defaultShader: shader,
		whiteTexture:  white,
	}, nil
}

func (g *Graphics) Shutdown() {
	g.whiteTexture.Release()
	g.defaultShader.Release()
	g.batch.Destroy()
}

func (g *Graphics) Device() Device {
	return g.device
}

func (g *Graphics) Camera() *Camera {
	return g.camera
}

// OnResize records the new physical window size. The screen-scaling
// transform is recomputed from it on the next frame.
func (g *Graphics) OnResize(width, height int32) {
	g.camera.SetWindowSize(width, height)
}

// BeginFrame opens the draw phase. With a zero-area window the frame is
// suppressed: draw calls are accepted and discarded.
func (g *Graphics) BeginFrame() error {
	if g.inFrame {
		err := core.NewStateError("Graphics.BeginFrame", "frame already open")
		core.ReportStateError(err)
		return err
	}
	g.inFrame = true

	viewport, ok := g.camera.ScreenViewport()
	g.suppressed = !ok
	if !ok {
		return nil
	}

	// Clear the letterbox/pillarbox bands before any drawing, then keep
	// the viewport constrained to the logical area.
	winW, winH := g.camera.WindowSize()
	if viewport[2] != winW || viewport[3] != winH {
		g.device.BindFramebuffer(ScreenTarget)
		g.device.SetViewport(0, 0, winW, winH)
		g.device.Clear(ColorBlack)
	}
	return nil
}

// EndFrame flushes pending batches and verifies the target stack is
// balanced. An unbalanced stack is a state error; the stack is unwound
// so the next frame starts clean. Presentation (buffer swap) is the
// platform's job and happens after this returns.
func (g *Graphics) EndFrame() error {
	if !g.inFrame {
		err := core.NewStateError("Graphics.EndFrame", "no frame open")
		core.ReportStateError(err)
		return err
	}

	flushErr := g.batch.close()

	if n := len(g.canvasStack); n != 0 {
		core.ReportStateError(core.NewStateError("Graphics.EndFrame",
			"render-target stack not balanced: %d canvas push(es) without pop, topmost %q",
			n, g.canvasStack[n-1].Name()))
		g.canvasStack = g.canvasStack[:0]
		g.device.BindFramebuffer(ScreenTarget)
	}

	g.inFrame = false
	g.suppressed = false
	return flushErr
}

// PushCanvas saves the current render target and makes the canvas the
// active one. Pushes must be balanced by pops before frame end.
func (g *Graphics) PushCanvas(canvas *Canvas) error {
	if err := g.requireFrame("Graphics.PushCanvas"); err != nil {
		return err
	}
	// The open batch belongs to the previous target.
	if err := g.batch.close(); err != nil {
		return err
	}
	g.canvasStack = append(g.canvasStack, canvas)
	return nil
}

// PopCanvas restores the previously active render target. A pop without
// a matching push is a state error.
func (g *Graphics) PopCanvas() error {
	if err := g.requireFrame("Graphics.PopCanvas"); err != nil {
		return err
	}
	if len(g.canvasStack) == 0 {
		err := core.NewStateError("Graphics.PopCanvas", "pop without matching push")
		core.ReportStateError(err)
		return err
	}
	if err := g.batch.close(); err != nil {
		return err
	}
	g.canvasStack = g.canvasStack[:len(g.canvasStack)-1]
	return nil
}

// ActiveCanvas returns the current canvas target, or nil when drawing to
// the screen.
func (g *Graphics) ActiveCanvas() *Canvas {
	if len(g.canvasStack) == 0 {
		return nil
	}
	return g.canvasStack[len(g.canvasStack)-1]
}

// SetShader routes subsequent draws through a custom shader. Passing nil
// restores the default sprite shader. The switch flushes the open batch.
func (g *Graphics) SetShader(shader *Shader) {
	g.activeShader = shader
}

func (g *Graphics) shaderProgram() ProgramHandle {
	if g.activeShader != nil {
		return g.activeShader.Program()
	}
	return g.defaultShader.Program()
}

// Clear fills the active target's drawable area with the color. Pending
// draws flush first so submission order is preserved.
func (g *Graphics) Clear(color Color) error {
	if err := g.requireFrame("Graphics.Clear"); err != nil {
		return err
	}
	if g.suppressed {
		return nil
	}
	if err := g.batch.close(); err != nil {
		return err
	}

	target, _, viewport := g.currentTarget()
	g.device.BindFramebuffer(target)
	g.device.SetViewport(viewport[0], viewport[1], viewport[2], viewport[3])
	g.device.Clear(color)
	return nil
}

// DrawTexture batches the full texture with the given transform.
func (g *Graphics) DrawTexture(texture *Texture, params DrawParams) error {
	return g.DrawRegion(texture, NewRectangle(0, 0, float32(texture.Width()), float32(texture.Height())), params)
}

// DrawRegion batches a source rectangle (in texels) of the texture. A
// zero-area region is accepted and contributes a degenerate quad.
func (g *Graphics) DrawRegion(texture *Texture, src Rectangle, params DrawParams) error {
	if err := g.requireFrame("Graphics.DrawRegion"); err != nil {
		return err
	}
	if texture.destroyed {
		err := core.NewStateError("Graphics.DrawRegion", "texture already destroyed")
		core.ReportStateError(err)
		return err
	}
	if g.suppressed {
		return nil
	}

	key, projection, viewport := g.drawKey(texture.Handle(), params.Blend)

	tw, th := float32(texture.Width()), float32(texture.Height())
	u0, v0 := src.X/tw, src.Y/th
	u1, v1 := (src.X+src.Width)/tw, (src.Y+src.Height)/th

	corners := [4]mgl32.Vec2{
		params.transform(mgl32.Vec2{0, 0}),
		params.transform(mgl32.Vec2{src.Width, 0}),
		params.transform(mgl32.Vec2{src.Width, src.Height}),
		params.transform(mgl32.Vec2{0, src.Height}),
	}
	uvs := [4]mgl32.Vec2{
		{u0, v0},
		{u1, v0},
		{u1, v1},
		{u0, v1},
	}

	return g.batch.Quad(key, projection, viewport, corners, uvs, params.Color)
}

// DrawCanvas draws a canvas's contents like a texture. The canvas must
// not be the active render target.
func (g *Graphics) DrawCanvas(canvas *Canvas, params DrawParams) error {
	for _, active := range g.canvasStack {
		if active == canvas {
			err := core.NewStateError("Graphics.DrawCanvas", "canvas %q is an active render target", canvas.Name())
			core.ReportStateError(err)
			return err
		}
	}
	return g.DrawTexture(canvas.Texture(), params)
}

// DrawMesh batches tessellated geometry through the same vertex stream
// as sprites. Untextured meshes sample the built-in white texture.
func (g *Graphics) DrawMesh(mesh *Mesh, params DrawParams) error {
	if err := g.requireFrame("Graphics.DrawMesh"); err != nil {
		return err
	}
	if g.suppressed {
		return nil
	}

	texture := mesh.Texture
	if texture == nil {
		texture = g.whiteTexture
	}
	if texture.destroyed {
		err := core.NewStateError("Graphics.DrawMesh", "mesh texture already destroyed")
		core.ReportStateError(err)
		return err
	}

	key, projection, viewport := g.drawKey(texture.Handle(), params.Blend)

	transformed := make([]Vertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		transformed[i] = Vertex{
			Position: params.transform(v.Position),
			UV:       v.UV,
			Color: Color{
				R: v.Color.R * params.Color.R,
				G: v.Color.G * params.Color.G,
				B: v.Color.B * params.Color.B,
				A: v.Color.A * params.Color.A,
			},
		}
	}

	return g.batch.Mesh(key, projection, viewport, transformed, mesh.Indices)
}

// SetTextureData re-uploads a region of texture pixels. When the open
// batch keys on the texture the batch flushes first, so already-batched
// draws still sample the old contents.
func (g *Graphics) SetTextureData(texture *Texture, x, y, width, height int32, pixels []uint8) error {
	if g.batch.usesTexture(texture.Handle()) {
		if err := g.batch.Flush(); err != nil {
			return err
		}
	}
	return texture.setData(x, y, width, height, pixels)
}

// Flush forces pending batched draws to the device. Mostly useful for
// tests and diagnostics; frame end flushes implicitly.
func (g *Graphics) Flush() error {
	return g.batch.Flush()
}

// FlushCount reports the number of device draw calls issued so far.
func (g *Graphics) FlushCount() uint64 {
	return g.batch.FlushCount()
}

func (g *Graphics) requireFrame(op string) error {
	if !g.inFrame {
		err := core.NewStateError(op, "called outside BeginFrame/EndFrame")
		core.ReportStateError(err)
		return err
	}
	return nil
}

// currentTarget resolves the active target with its projection and
// viewport. Canvases use their own dimensions and a full viewport; the
// screen uses the letterboxed viewport.
func (g *Graphics) currentTarget() (FramebufferHandle, mgl32.Mat4, [4]int32) {
	if canvas := g.ActiveCanvas(); canvas != nil {
		return canvas.framebuffer,
			g.camera.CanvasProjection(canvas.Width(), canvas.Height()),
			[4]int32{0, 0, canvas.Width(), canvas.Height()}
	}
	viewport, _ := g.camera.ScreenViewport()
	return ScreenTarget, g.camera.Projection(), viewport
}

func (g *Graphics) drawKey(texture TextureHandle, blend BlendMode) (batchKey, mgl32.Mat4, [4]int32) {
	target, projection, viewport := g.currentTarget()
	return batchKey{
		texture: texture,
		program: g.shaderProgram(),
		blend:   blend,
		target:  target,
	}, projection, viewport
}
