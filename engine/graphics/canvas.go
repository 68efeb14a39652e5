package graphics

import (
	"fmt"

	"github.com/google/uuid"
)

// Canvas is an off-screen render target that is itself usable as a
// texture. It owns the backing texture and a color-only framebuffer.
type Canvas struct {
	texture     *Texture
	framebuffer FramebufferHandle

	// name identifies the canvas in state-error reports.
	name string
}

// NewCanvas creates a width x height render target. The backing texture
// starts uninitialized; clear it before sampling.
func NewCanvas(device Device, width, height int32, filter FilterMode) (*Canvas, error) {
	texture, err := NewTexture(device, width, height, filter, nil)
	if err != nil {
		return nil, err
	}

	framebuffer, err := device.CreateFramebuffer(texture.Handle())
	if err != nil {
		texture.Release()
		return nil, err
	}

	return &Canvas{
		texture:     texture,
		framebuffer: framebuffer,
		name:        fmt.Sprintf("canvas-%s", uuid.New().String()),
	}, nil
}

// Texture returns the backing texture, for drawing the canvas contents
// elsewhere. The canvas keeps its own reference; callers that store
// the texture beyond the canvas lifetime must Retain it.
func (c *Canvas) Texture() *Texture {
	return c.texture
}

func (c *Canvas) Width() int32 {
	return c.texture.Width()
}

func (c *Canvas) Height() int32 {
	return c.texture.Height()
}

func (c *Canvas) Name() string {
	return c.name
}

// Release destroys the framebuffer and drops the canvas's texture
// reference.
func (c *Canvas) Release(device Device) {
	device.DestroyFramebuffer(c.framebuffer)
	c.texture.Release()
}
