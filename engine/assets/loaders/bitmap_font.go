package loaders

import (
	"path/filepath"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/lume/engine/core"
)

// BitmapFontData is a parsed AngelCode .fnt descriptor plus the decoded
// glyph atlas of its first page.
type BitmapFontData struct {
	Descriptor *bmfont.Descriptor
	Atlas      *ImageData
}

type BitmapFontLoader struct{}

// Load parses a .fnt descriptor and decodes the page image referenced by
// it, resolved relative to the descriptor's directory.
func (l *BitmapFontLoader) Load(path string) (*BitmapFontData, error) {
	desc, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, core.ResourceErrorf("parse font %s: %v", path, err)
	}
	if len(desc.Pages) == 0 {
		return nil, core.ResourceErrorf("font %s references no pages", path)
	}

	page, ok := desc.Pages[0]
	if !ok {
		for _, p := range desc.Pages {
			page = p
			break
		}
	}

	var images ImageLoader
	atlas, err := images.Load(filepath.Join(filepath.Dir(path), page.File))
	if err != nil {
		return nil, err
	}

	return &BitmapFontData{
		Descriptor: desc,
		Atlas:      atlas,
	}, nil
}
