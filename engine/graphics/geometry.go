package graphics

import (
	m "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
)

// DefaultSegmentTolerance is the curve-flattening tolerance, in logical
// pixels, used when the builder is not configured with one. Tessellation
// quality is configuration, not correctness.
const DefaultSegmentTolerance float32 = 0.25

// Mesh is tessellated triangle geometry drawable through the batcher
// with DrawParams, like a sprite. Without a texture it renders as solid
// color via the built-in white texture.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Texture  *Texture
}

// ShapeStyle selects between a filled shape and an outlined one.
type ShapeStyle struct {
	stroke bool
	width  float32
}

// Fill styles a shape as filled.
func Fill() ShapeStyle {
	return ShapeStyle{}
}

// Stroke styles a shape as an outline with the given stroke width.
func Stroke(width float32) ShapeStyle {
	return ShapeStyle{stroke: true, width: width}
}

// GeometryBuilder accumulates primitive shapes into a single vertex and
// index stream. Filled shapes triangulate as fans; stroked shapes expand
// into quad strips along the outline.
type GeometryBuilder struct {
	vertices  []Vertex
	indices   []uint32
	color     Color
	tolerance float32
}

func NewGeometryBuilder() *GeometryBuilder {
	return &GeometryBuilder{
		color:     ColorWhite,
		tolerance: DefaultSegmentTolerance,
	}
}

// SetColor sets the vertex color used for subsequent shapes.
func (gb *GeometryBuilder) SetColor(color Color) *GeometryBuilder {
	gb.color = color
	return gb
}

// SetSegmentTolerance sets the curve-flattening tolerance in logical
// pixels. Smaller values produce more segments.
func (gb *GeometryBuilder) SetSegmentTolerance(tolerance float32) *GeometryBuilder {
	if tolerance > 0 {
		gb.tolerance = tolerance
	}
	return gb
}

// Clear drops the accumulated geometry, keeping color and tolerance.
func (gb *GeometryBuilder) Clear() *GeometryBuilder {
	gb.vertices = gb.vertices[:0]
	gb.indices = gb.indices[:0]
	return gb
}

func (gb *GeometryBuilder) Vertices() []Vertex {
	return gb.vertices
}

func (gb *GeometryBuilder) Indices() []uint32 {
	return gb.indices
}

// BuildMesh copies the accumulated geometry into a standalone mesh.
func (gb *GeometryBuilder) BuildMesh() *Mesh {
	mesh := &Mesh{
		Vertices: make([]Vertex, len(gb.vertices)),
		Indices:  make([]uint32, len(gb.indices)),
	}
	copy(mesh.Vertices, gb.vertices)
	copy(mesh.Indices, gb.indices)
	return mesh
}

// Rectangle adds an axis-aligned rectangle.
func (gb *GeometryBuilder) Rectangle(style ShapeStyle, rect Rectangle) error {
	points := []mgl32.Vec2{
		{rect.X, rect.Y},
		{rect.X + rect.Width, rect.Y},
		{rect.X + rect.Width, rect.Y + rect.Height},
		{rect.X, rect.Y + rect.Height},
	}
	return gb.Polygon(style, points)
}

// RoundedRectangle adds a rectangle with quarter-circle corners,
// flattened within the segment tolerance. The corner radius is clamped
// to half the shorter side.
func (gb *GeometryBuilder) RoundedRectangle(style ShapeStyle, rect Rectangle, radius float32) error {
	if radius <= 0 {
		return core.ResourceErrorf("corner radius must be positive, got %f", radius)
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return core.ResourceErrorf("rounded rectangle needs a positive size, got %fx%f", rect.Width, rect.Height)
	}
	shorter := rect.Width
	if rect.Height < shorter {
		shorter = rect.Height
	}
	if radius > shorter/2 {
		radius = shorter / 2
	}

	steps := segmentsFor(radius, gb.tolerance) / 4
	if steps < 2 {
		steps = 2
	}

	corners := [4]struct {
		center mgl32.Vec2
		start  float64
	}{
		{mgl32.Vec2{rect.X + radius, rect.Y + radius}, m.Pi},
		{mgl32.Vec2{rect.X + rect.Width - radius, rect.Y + radius}, 1.5 * m.Pi},
		{mgl32.Vec2{rect.X + rect.Width - radius, rect.Y + rect.Height - radius}, 0},
		{mgl32.Vec2{rect.X + radius, rect.Y + rect.Height - radius}, 0.5 * m.Pi},
	}

	points := make([]mgl32.Vec2, 0, 4*(steps+1))
	for _, c := range corners {
		for s := 0; s <= steps; s++ {
			angle := c.start + (m.Pi/2)*float64(s)/float64(steps)
			points = append(points, mgl32.Vec2{
				c.center.X() + radius*float32(m.Cos(angle)),
				c.center.Y() + radius*float32(m.Sin(angle)),
			})
		}
	}
	return gb.Polygon(style, points)
}

// Circle adds a circle approximated within the segment tolerance.
func (gb *GeometryBuilder) Circle(style ShapeStyle, center mgl32.Vec2, radius float32) error {
	return gb.Ellipse(style, center, mgl32.Vec2{radius, radius})
}

// Ellipse adds an axis-aligned ellipse.
func (gb *GeometryBuilder) Ellipse(style ShapeStyle, center mgl32.Vec2, radii mgl32.Vec2) error {
	if radii.X() <= 0 || radii.Y() <= 0 {
		return core.ResourceErrorf("ellipse radii must be positive, got %v", radii)
	}

	maxRadius := radii.X()
	if radii.Y() > maxRadius {
		maxRadius = radii.Y()
	}
	segments := segmentsFor(maxRadius, gb.tolerance)

	points := make([]mgl32.Vec2, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * m.Pi * float64(i) / float64(segments)
		points[i] = mgl32.Vec2{
			center.X() + radii.X()*float32(m.Cos(angle)),
			center.Y() + radii.Y()*float32(m.Sin(angle)),
		}
	}
	return gb.Polygon(style, points)
}

// Polygon adds a closed polygon. Filled polygons triangulate as a fan
// from the first point, which yields a simple mesh for convex and
// star-shaped outlines; callers with concave outlines should split them.
func (gb *GeometryBuilder) Polygon(style ShapeStyle, points []mgl32.Vec2) error {
	if len(points) < 3 {
		return core.ResourceErrorf("polygon needs at least 3 points, got %d", len(points))
	}
	if style.stroke {
		return gb.strokeOutline(points, style.width, true)
	}

	base := uint32(len(gb.vertices))
	for _, p := range points {
		gb.vertices = append(gb.vertices, Vertex{Position: p, Color: gb.color})
	}
	for i := 1; i < len(points)-1; i++ {
		gb.indices = append(gb.indices, base, base+uint32(i), base+uint32(i+1))
	}
	return nil
}

// Polyline adds an open stroked line through the points.
func (gb *GeometryBuilder) Polyline(strokeWidth float32, points []mgl32.Vec2) error {
	if len(points) < 2 {
		return core.ResourceErrorf("polyline needs at least 2 points, got %d", len(points))
	}
	return gb.strokeOutline(points, strokeWidth, false)
}

// strokeOutline expands an outline into a quad strip of the given width,
// offsetting each point along its miter normal.
func (gb *GeometryBuilder) strokeOutline(points []mgl32.Vec2, width float32, closed bool) error {
	if width <= 0 {
		return core.ResourceErrorf("stroke width must be positive, got %f", width)
	}

	n := len(points)
	half := width / 2
	base := uint32(len(gb.vertices))

	for i := 0; i < n; i++ {
		normal := miterNormal(points, i, closed)
		outer := points[i].Add(normal.Mul(half))
		inner := points[i].Sub(normal.Mul(half))
		gb.vertices = append(gb.vertices,
			Vertex{Position: outer, Color: gb.color},
			Vertex{Position: inner, Color: gb.color},
		)
	}

	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % n
		o0, i0 := base+uint32(2*i), base+uint32(2*i+1)
		o1, i1 := base+uint32(2*j), base+uint32(2*j+1)
		gb.indices = append(gb.indices, o0, o1, i1, i1, i0, o0)
	}
	return nil
}

// miterNormal returns the averaged edge normal at point i, scaled so the
// stroke keeps its width through the corner.
func miterNormal(points []mgl32.Vec2, i int, closed bool) mgl32.Vec2 {
	n := len(points)

	edgeNormal := func(from, to mgl32.Vec2) mgl32.Vec2 {
		d := to.Sub(from)
		length := d.Len()
		if length == 0 {
			return mgl32.Vec2{0, 0}
		}
		return mgl32.Vec2{-d.Y() / length, d.X() / length}
	}

	var prev, next mgl32.Vec2
	hasPrev := closed || i > 0
	hasNext := closed || i < n-1
	if hasPrev {
		prev = edgeNormal(points[(i-1+n)%n], points[i])
	}
	if hasNext {
		next = edgeNormal(points[i], points[(i+1)%n])
	}

	switch {
	case hasPrev && hasNext:
		miter := prev.Add(next)
		length := miter.Len()
		if length < 1e-6 {
			// Degenerate corner (edges fold back); fall back to one edge.
			return next
		}
		miter = miter.Mul(1 / length)
		// Scale so the perpendicular distance stays width/2.
		dot := miter.Dot(next)
		if dot < 0.1 {
			dot = 0.1
		}
		return miter.Mul(1 / dot)
	case hasPrev:
		return prev
	default:
		return next
	}
}

// segmentsFor derives the flat-segment count for a radius from the
// flattening tolerance.
func segmentsFor(radius, tolerance float32) int {
	if tolerance >= radius {
		return 8
	}
	step := 2 * m.Acos(1-float64(tolerance)/float64(radius))
	segments := int(m.Ceil(2 * m.Pi / step))
	if segments < 8 {
		segments = 8
	}
	if segments > 256 {
		segments = 256
	}
	return segments
}
