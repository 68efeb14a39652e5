package graphics

import "github.com/go-gl/mathgl/mgl32"

// Color is an RGBA color with components in the 0.0 to 1.0 range.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorClear = Color{0, 0, 0, 0}
)

func NewColor(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// RGB creates an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Rectangle is an axis-aligned rectangle. For source regions the values
// are in texels; for geometry they are in logical units.
type Rectangle struct {
	X, Y, Width, Height float32
}

func NewRectangle(x, y, width, height float32) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Vertex is one entry of the batch vertex stream: position, texture
// coordinate and color. Value type, copied into the CPU-side buffers.
type Vertex struct {
	Position mgl32.Vec2
	UV       mgl32.Vec2
	Color    Color
}

// VertexStride is the number of float32 values one Vertex occupies in
// the packed vertex stream.
const VertexStride = 8

// BlendMode selects how incoming fragments combine with the target.
// The set is closed; the batcher keys batches on it.
type BlendMode uint8

const (
	// BlendAlpha is standard alpha blending.
	BlendAlpha BlendMode = iota
	// BlendAdditive adds source to destination, used for glows and particles.
	BlendAdditive
	// BlendMultiply multiplies source and destination.
	BlendMultiply
	// BlendNone overwrites the destination.
	BlendNone
)

// FilterMode selects the texture sampling filter.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// BufferUsage is the expected update frequency of a GPU buffer.
type BufferUsage uint8

const (
	// BufferUsageStatic data is not expected to change after creation.
	BufferUsageStatic BufferUsage = iota
	// BufferUsageDynamic data changes occasionally.
	BufferUsageDynamic
	// BufferUsageStream data changes every frame.
	BufferUsageStream
)

// DrawParams carries the destination transform and tint of a single draw
// request. The zero value has zero scale and a transparent tint; use
// NewDrawParams for an identity transform with a white tint.
type DrawParams struct {
	Position mgl32.Vec2
	Scale    mgl32.Vec2
	Origin   mgl32.Vec2
	Rotation float32
	Color    Color
	Blend    BlendMode
}

func NewDrawParams() DrawParams {
	return DrawParams{
		Scale: mgl32.Vec2{1, 1},
		Color: ColorWhite,
	}
}

func (p DrawParams) WithPosition(x, y float32) DrawParams {
	p.Position = mgl32.Vec2{x, y}
	return p
}

func (p DrawParams) WithScale(x, y float32) DrawParams {
	p.Scale = mgl32.Vec2{x, y}
	return p
}

func (p DrawParams) WithOrigin(x, y float32) DrawParams {
	p.Origin = mgl32.Vec2{x, y}
	return p
}

func (p DrawParams) WithRotation(radians float32) DrawParams {
	p.Rotation = radians
	return p
}

func (p DrawParams) WithColor(c Color) DrawParams {
	p.Color = c
	return p
}

func (p DrawParams) WithBlend(mode BlendMode) DrawParams {
	p.Blend = mode
	return p
}

// transform applies origin, scale, rotation and position to a local point.
func (p DrawParams) transform(local mgl32.Vec2) mgl32.Vec2 {
	x := (local.X() - p.Origin.X()) * p.Scale.X()
	y := (local.Y() - p.Origin.Y()) * p.Scale.Y()
	if p.Rotation != 0 {
		rot := mgl32.Rotate2D(p.Rotation)
		v := rot.Mul2x1(mgl32.Vec2{x, y})
		x, y = v.X(), v.Y()
	}
	return mgl32.Vec2{x + p.Position.X(), y + p.Position.Y()}
}
