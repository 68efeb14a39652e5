package loaders

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/spaghettifunk/lume/engine/core"
)

// ImageData is decoded pixel data in the RGBA8 layout the GPU uploads
// expect.
type ImageData struct {
	Width  int32
	Height int32
	Pixels []uint8
}

type ImageLoader struct{}

// Load decodes a PNG, JPEG or BMP file into tightly packed RGBA pixels.
func (l *ImageLoader) Load(path string) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.ResourceErrorf("open image %s: %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, core.ResourceErrorf("decode image %s: %v", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &ImageData{
		Width:  int32(bounds.Dx()),
		Height: int32(bounds.Dy()),
		Pixels: rgba.Pix,
	}, nil
}
