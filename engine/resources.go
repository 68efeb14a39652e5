package engine

import (
	"github.com/spaghettifunk/lume/engine/graphics"
)

// LoadTexture decodes an image asset and uploads it to the GPU.
func (e *Engine) LoadTexture(relPath string, filter graphics.FilterMode) (*graphics.Texture, error) {
	img, err := e.assetManager.LoadImage(relPath)
	if err != nil {
		return nil, err
	}
	return graphics.NewTexture(e.graphics.Device(), img.Width, img.Height, filter, img.Pixels)
}

// LoadShader compiles a vertex/fragment source pair asset into a shader
// program.
func (e *Engine) LoadShader(relBasePath string) (*graphics.Shader, error) {
	src, err := e.assetManager.LoadShader(relBasePath)
	if err != nil {
		return nil, err
	}
	return graphics.NewShader(e.graphics.Device(), src.VertexSource, src.FragmentSource)
}

// LoadFont parses a .fnt asset and uploads its atlas. The returned font
// owns the atlas texture; release the font when done.
func (e *Engine) LoadFont(relPath string) (*graphics.Font, error) {
	data, err := e.assetManager.LoadBitmapFont(relPath)
	if err != nil {
		return nil, err
	}
	atlas, err := graphics.NewTexture(e.graphics.Device(), data.Atlas.Width, data.Atlas.Height, graphics.FilterNearest, data.Atlas.Pixels)
	if err != nil {
		return nil, err
	}
	font, err := graphics.NewFont(data.Descriptor, atlas)
	// NewFont retains the atlas; drop the creation reference either way.
	atlas.Release()
	if err != nil {
		return nil, err
	}
	return font, nil
}
