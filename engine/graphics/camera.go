package graphics

import "github.com/go-gl/mathgl/mgl32"

// Camera computes the projection from logical 2D coordinates to
// normalized device coordinates. The logical design resolution is fixed
// at construction; the physical window size follows resize events.
//
// Screen scaling (letterboxing/pillarboxing) applies only to the screen
// target. Canvases project over their own dimensions with a full
// viewport.
type Camera struct {
	logicalWidth  int32
	logicalHeight int32
	windowWidth   int32
	windowHeight  int32
}

func NewCamera(logicalWidth, logicalHeight, windowWidth, windowHeight int32) *Camera {
	return &Camera{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		windowWidth:   windowWidth,
		windowHeight:  windowHeight,
	}
}

func (c *Camera) LogicalSize() (int32, int32) {
	return c.logicalWidth, c.logicalHeight
}

func (c *Camera) WindowSize() (int32, int32) {
	return c.windowWidth, c.windowHeight
}

// SetWindowSize records the physical window size after a resize event.
func (c *Camera) SetWindowSize(width, height int32) {
	c.windowWidth = width
	c.windowHeight = height
}

// Projection returns the orthographic matrix mapping logical coordinates
// (origin top-left, Y down) to NDC.
func (c *Camera) Projection() mgl32.Mat4 {
	return ortho2D(float32(c.logicalWidth), float32(c.logicalHeight))
}

// CanvasProjection returns the matrix for an off-screen target of the
// given dimensions.
func (c *Camera) CanvasProjection(width, height int32) mgl32.Mat4 {
	return ortho2D(float32(width), float32(height))
}

// ScreenScale returns the uniform scale factor applied when presenting
// the logical resolution inside the current window.
func (c *Camera) ScreenScale() float32 {
	if c.windowWidth <= 0 || c.windowHeight <= 0 || c.logicalWidth <= 0 || c.logicalHeight <= 0 {
		return 1
	}
	sx := float32(c.windowWidth) / float32(c.logicalWidth)
	sy := float32(c.windowHeight) / float32(c.logicalHeight)
	if sx < sy {
		return sx
	}
	return sy
}

// ScreenViewport returns the pixel rectangle of the window that the
// logical resolution maps onto, centered, preserving aspect ratio. The
// remaining window area forms the letterbox/pillarbox bands. ok is false
// when the window has zero area on either axis; drawing is suppressed
// for that frame.
func (c *Camera) ScreenViewport() (viewport [4]int32, ok bool) {
	if c.windowWidth <= 0 || c.windowHeight <= 0 {
		return [4]int32{0, 0, 0, 0}, false
	}

	scale := c.ScreenScale()
	w := int32(float32(c.logicalWidth) * scale)
	h := int32(float32(c.logicalHeight) * scale)
	x := (c.windowWidth - w) / 2
	y := (c.windowHeight - h) / 2
	return [4]int32{x, y, w, h}, true
}

// ortho2D builds the projection for a top-left origin, Y-down coordinate
// space over a width x height target.
func ortho2D(width, height float32) mgl32.Mat4 {
	if width <= 0 || height <= 0 {
		// Degenerate target; callers suppress drawing, this just has to
		// be finite.
		return mgl32.Ident4()
	}
	return mgl32.Ortho(0, width, height, 0, -1, 1)
}
