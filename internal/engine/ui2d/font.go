package ui2d

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph  = ' '
	lastGlyph   = '~'
	atlasCols   = 16
	missingRune = '?'
)

// Font is a fixed-width bitmap font rasterized into an alpha atlas.
type Font struct {
	atlas  *image.Alpha
	glyphW int
	glyphH int
}

// NewFont rasterizes the printable ASCII range of basicfont.Face7x13.
func NewFont() *Font {
	face := basicfont.Face7x13
	gw := face.Advance
	gh := face.Height
	rows := (int(lastGlyph-firstGlyph) + atlasCols) / atlasCols

	atlas := image.NewAlpha(image.Rect(0, 0, atlasCols*gw, rows*gh))
	d := font.Drawer{Dst: atlas, Src: image.Opaque, Face: face}
	for r := firstGlyph; r <= lastGlyph; r++ {
		i := int(r - firstGlyph)
		x, y := (i%atlasCols)*gw, (i/atlasCols)*gh
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(r))
	}

	return &Font{atlas: atlas, glyphW: gw, glyphH: gh}
}

// Atlas returns the glyph atlas.
func (f *Font) Atlas() *image.Alpha {
	return f.atlas
}

// GlyphSize returns the cell size of one glyph in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.glyphW, f.glyphH
}

// GlyphUV returns the atlas texture coordinates for r. Runes outside the
// atlas map to '?'.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = missingRune
	}
	i := int(r - firstGlyph)
	b := f.atlas.Bounds()
	x, y := (i%atlasCols)*f.glyphW, (i/atlasCols)*f.glyphH
	w, h := float32(b.Dx()), float32(b.Dy())
	return float32(x) / w, float32(y) / h, float32(x+f.glyphW) / w, float32(y+f.glyphH) / h
}

// MeasureText returns the size of text drawn at scale.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > longest {
			longest = cur
		}
	}
	return float32(longest*f.glyphW) * scale, float32(lines*f.glyphH) * scale
}
