package graphics

import (
	"github.com/spaghettifunk/lume/engine/core"
)

// Texture owns a GPU texture handle. Instances may be shared by many
// draw requests within and across frames; sharing is reference-counted
// so the device texture is destroyed exactly once, when the last owner
// releases it.
type Texture struct {
	device Device
	handle TextureHandle

	width  int32
	height int32
	filter FilterMode

	refs      int
	destroyed bool
}

// NewTexture uploads RGBA pixel data and returns a texture with a single
// reference. pixels must be width*height*4 bytes, or nil for an
// uninitialized texture (canvas backing).
func NewTexture(device Device, width, height int32, filter FilterMode, pixels []uint8) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, core.ResourceErrorf("texture dimensions must be positive, got %dx%d", width, height)
	}
	if pixels != nil && int32(len(pixels)) != width*height*4 {
		return nil, core.ResourceErrorf("pixel data size %d does not match %dx%d RGBA", len(pixels), width, height)
	}

	handle, err := device.CreateTexture(width, height, filter, pixels)
	if err != nil {
		return nil, err
	}

	return &Texture{
		device: device,
		handle: handle,
		width:  width,
		height: height,
		filter: filter,
		refs:   1,
	}, nil
}

func (t *Texture) Width() int32 {
	return t.width
}

func (t *Texture) Height() int32 {
	return t.height
}

func (t *Texture) Filter() FilterMode {
	return t.filter
}

func (t *Texture) Handle() TextureHandle {
	return t.handle
}

// Retain adds a reference. Each Retain must be paired with a Release.
func (t *Texture) Retain() *Texture {
	if t.destroyed {
		core.ReportStateError(core.NewStateError("Texture.Retain", "texture already destroyed"))
		return t
	}
	t.refs++
	return t
}

// Release drops a reference, destroying the device texture when the last
// one goes. Releasing a destroyed texture is a state error.
func (t *Texture) Release() {
	if t.destroyed {
		core.ReportStateError(core.NewStateError("Texture.Release", "texture already destroyed"))
		return
	}
	t.refs--
	if t.refs <= 0 {
		t.device.DestroyTexture(t.handle)
		t.destroyed = true
	}
}

// SetFilter changes the sampling filter for subsequent draws.
func (t *Texture) SetFilter(filter FilterMode) error {
	if t.destroyed {
		err := core.NewStateError("Texture.SetFilter", "texture already destroyed")
		core.ReportStateError(err)
		return err
	}
	if err := t.device.SetTextureFilter(t.handle, filter); err != nil {
		return err
	}
	t.filter = filter
	return nil
}

// setData re-uploads a pixel region. Callers go through
// Graphics.SetTextureData, which flushes first when the open batch keys
// on this texture.
func (t *Texture) setData(x, y, width, height int32, pixels []uint8) error {
	if t.destroyed {
		err := core.NewStateError("Texture.SetData", "texture already destroyed")
		core.ReportStateError(err)
		return err
	}
	if x < 0 || y < 0 || x+width > t.width || y+height > t.height {
		return core.ResourceErrorf("texture region %d,%d %dx%d out of bounds for %dx%d", x, y, width, height, t.width, t.height)
	}
	if int32(len(pixels)) != width*height*4 {
		return core.ResourceErrorf("pixel data size %d does not match %dx%d RGBA", len(pixels), width, height)
	}
	return t.device.UpdateTexture(t.handle, x, y, width, height, pixels)
}
