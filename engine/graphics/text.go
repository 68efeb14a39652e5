package graphics

import (
	"github.com/fzipp/bmfont"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lume/engine/core"
)

type glyph struct {
	region   Rectangle
	offset   mgl32.Vec2
	xAdvance float32
}

// Font is a bitmap font: a glyph atlas texture plus the per-glyph
// metrics parsed from an AngelCode .fnt descriptor. Only single-page
// fonts are supported.
type Font struct {
	texture    *Texture
	glyphs     map[rune]glyph
	kerning    map[bmfont.CharPair]float32
	lineHeight float32
	base       float32
}

// NewFont builds a font from a parsed descriptor and its atlas texture.
// The texture is retained for the lifetime of the font.
func NewFont(desc *bmfont.Descriptor, atlas *Texture) (*Font, error) {
	if desc == nil || atlas == nil {
		return nil, core.ResourceErrorf("font needs a descriptor and an atlas texture")
	}
	if len(desc.Pages) > 1 {
		return nil, core.ResourceErrorf("font %q has %d pages, only single-page fonts are supported",
			desc.Info.Face, len(desc.Pages))
	}

	font := &Font{
		texture:    atlas,
		glyphs:     make(map[rune]glyph, len(desc.Chars)),
		kerning:    make(map[bmfont.CharPair]float32, len(desc.Kerning)),
		lineHeight: float32(desc.Common.LineHeight),
		base:       float32(desc.Common.Base),
	}
	for r, c := range desc.Chars {
		font.glyphs[r] = glyph{
			region: Rectangle{
				X:      float32(c.X),
				Y:      float32(c.Y),
				Width:  float32(c.Width),
				Height: float32(c.Height),
			},
			offset:   mgl32.Vec2{float32(c.XOffset), float32(c.YOffset)},
			xAdvance: float32(c.XAdvance),
		}
	}
	for pair, k := range desc.Kerning {
		font.kerning[pair] = float32(k.Amount)
	}

	atlas.Retain()
	return font, nil
}

func (f *Font) Texture() *Texture {
	return f.texture
}

func (f *Font) LineHeight() float32 {
	return f.lineHeight
}

// Release drops the font's hold on its atlas texture.
func (f *Font) Release() {
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
}

// Measure returns the bounding size of the text in logical pixels.
func (f *Font) Measure(text string) mgl32.Vec2 {
	var penX, width float32
	height := f.lineHeight
	var prev rune

	for _, r := range text {
		if r == '\n' {
			if penX > width {
				width = penX
			}
			penX = 0
			height += f.lineHeight
			prev = 0
			continue
		}
		g, ok := f.glyphs[r]
		if !ok {
			prev = 0
			continue
		}
		if prev != 0 {
			penX += f.kerning[bmfont.CharPair{First: prev, Second: r}]
		}
		penX += g.xAdvance
		prev = r
	}
	if penX > width {
		width = penX
	}
	return mgl32.Vec2{width, height}
}

// DrawText draws a text block with the font, applying the transform in
// params to the block as a whole. Unknown runes are skipped; newlines
// advance the pen by the font's line height.
func (g *Graphics) DrawText(font *Font, text string, params DrawParams) error {
	if err := g.requireFrame("DrawText"); err != nil {
		return err
	}
	if font == nil || font.texture == nil {
		return core.ResourceErrorf("draw of nil or released font")
	}
	if g.suppressed {
		return nil
	}

	atlas := font.texture
	texW := float32(atlas.Width())
	texH := float32(atlas.Height())
	target, projection, viewport := g.currentTarget()
	key := batchKey{
		texture: atlas.Handle(),
		program: g.shaderProgram(),
		blend:   params.Blend,
		target:  target,
	}

	var penX, penY float32
	var prev rune
	for _, r := range text {
		if r == '\n' {
			penX = 0
			penY += font.lineHeight
			prev = 0
			continue
		}
		gl, ok := font.glyphs[r]
		if !ok {
			prev = 0
			continue
		}
		if prev != 0 {
			penX += font.kerning[bmfont.CharPair{First: prev, Second: r}]
		}

		x0 := penX + gl.offset.X()
		y0 := penY + gl.offset.Y()
		x1 := x0 + gl.region.Width
		y1 := y0 + gl.region.Height
		corners := [4]mgl32.Vec2{
			params.transform(mgl32.Vec2{x0, y0}),
			params.transform(mgl32.Vec2{x1, y0}),
			params.transform(mgl32.Vec2{x1, y1}),
			params.transform(mgl32.Vec2{x0, y1}),
		}
		uvs := [4]mgl32.Vec2{
			{gl.region.X / texW, gl.region.Y / texH},
			{(gl.region.X + gl.region.Width) / texW, gl.region.Y / texH},
			{(gl.region.X + gl.region.Width) / texW, (gl.region.Y + gl.region.Height) / texH},
			{gl.region.X / texW, (gl.region.Y + gl.region.Height) / texH},
		}
		if err := g.batch.Quad(key, projection, viewport, corners, uvs, params.Color); err != nil {
			return err
		}

		penX += gl.xAdvance
		prev = r
	}
	return nil
}
