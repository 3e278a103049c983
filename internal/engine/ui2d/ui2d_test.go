package ui2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePainter struct {
	w, h   int
	texts  []string
	images []Rect
	rects  int
}

func (p *fakePainter) ScreenSize() (int, int)                         { return p.w, p.h }
func (p *fakePainter) DrawRect(x, y, w, h float32, c Color)           { p.rects++ }
func (p *fakePainter) DrawRectOutline(x, y, w, h, t float32, c Color) { p.rects++ }
func (p *fakePainter) DrawText(x, y float32, s string, k float32, c Color) {
	p.texts = append(p.texts, s)
}
func (p *fakePainter) MeasureText(s string, k float32) (float32, float32) {
	return float32(len(s) * 7), 13
}
func (p *fakePainter) DrawImage(x, y, w, h float32, tex Texture) {
	p.images = append(p.images, Rect{x, y, w, h})
}

type fakeTexture struct{ w, h int }

func (t fakeTexture) Size() (int, int) { return t.w, t.h }

func TestFontAtlas(t *testing.T) {
	f := NewFont()
	gw, gh := f.GlyphSize()
	assert.Equal(t, 7, gw)
	assert.Equal(t, 13, gh)

	b := f.Atlas().Bounds()
	assert.Equal(t, atlasCols*gw, b.Dx())

	// 'A' has ink somewhere in its cell.
	u0, v0, u1, v1 := f.GlyphUV('A')
	x0, y0 := int(u0*float32(b.Dx())), int(v0*float32(b.Dy()))
	x1, y1 := int(u1*float32(b.Dx())), int(v1*float32(b.Dy()))
	ink := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if f.Atlas().AlphaAt(x, y).A > 0 {
				ink++
			}
		}
	}
	assert.Positive(t, ink)

	// unknown runes share the '?' cell
	a0, b0, _, _ := f.GlyphUV('⛅')
	q0, r0, _, _ := f.GlyphUV('?')
	assert.Equal(t, q0, a0)
	assert.Equal(t, r0, b0)
}

func TestFontMeasureText(t *testing.T) {
	f := NewFont()
	w, h := f.MeasureText("abc\nde", 2)
	assert.Equal(t, float32(3*7*2), w)
	assert.Equal(t, float32(2*13*2), h)
}

func TestSliderMapping(t *testing.T) {
	tests := []struct {
		name     string
		v        float32
		min, max float32
		log      bool
		frac     float32
	}{
		{"linear mid", 5, 0, 10, false, 0.5},
		{"linear clamp low", -3, 0, 10, false, 0},
		{"log mid", 0.1, 0.01, 1, true, 0.5},
		{"log bottom", 0.01, 0.01, 1, true, 0},
		{"log top clamp", 9, 0.01, 1, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frac := SliderFraction(tt.v, tt.min, tt.max, tt.log)
			assert.InDelta(t, tt.frac, frac, 1e-5)
			back := SliderValue(frac, tt.min, tt.max, tt.log)
			assert.GreaterOrEqual(t, back, tt.min)
			assert.LessOrEqual(t, back, tt.max)
		})
	}
	assert.InDelta(t, 0.1, SliderValue(0.5, 0.01, 1, true), 1e-5)
}

func TestButtonClick(t *testing.T) {
	p := &fakePainter{w: 800, h: 600}
	c := NewContext(p)

	frame := func(x, y float32, down bool) bool {
		c.Input().SetMouse(x, y)
		c.Input().MouseLeftDown = down
		c.Begin()
		c.BeginWindow("w", "Title", 10, 10, 200)
		clicked := c.Button("b", "File")
		c.EndWindow()
		c.End()
		return clicked
	}

	// Button row starts below the title bar.
	by := 10 + titleBarH + padding + 5
	assert.False(t, frame(50, by, false))
	assert.True(t, frame(50, by, true))
	assert.False(t, frame(50, by, true), "holding must not click again")
	assert.False(t, frame(50, by, false))
	assert.True(t, c.WantsMouse())

	assert.False(t, frame(500, 500, true))
	assert.False(t, c.WantsMouse())
}

func TestSliderDrag(t *testing.T) {
	p := &fakePainter{w: 800, h: 600}
	c := NewContext(p)
	v := float32(0.5)

	frame := func(x float32, down bool) bool {
		c.Input().SetMouse(x, 10+titleBarH+padding+5)
		c.Input().MouseLeftDown = down
		c.Begin()
		c.BeginWindow("w", "Settings", 10, 10, 216)
		changed := c.Slider("speed", "Speed", &v, 0, 1, false)
		c.EndWindow()
		c.End()
		return changed
	}

	frame(30, false)
	// press inside the track, then drag past its right end
	assert.True(t, frame(30, true))
	assert.True(t, frame(400, true))
	assert.Equal(t, float32(1), v)
	assert.True(t, frame(0, true))
	assert.Equal(t, float32(0), v)
	assert.False(t, frame(0, false))
	assert.Contains(t, p.texts, "Speed: 0")
}

func TestIntSliderClamps(t *testing.T) {
	p := &fakePainter{w: 800, h: 600}
	c := NewContext(p)
	v := 7

	c.Begin()
	c.BeginWindow("w", "Images", 0, 0, 200)
	c.IntSlider("img", "Image", &v, 0, 2)
	c.EndWindow()
	c.End()
	assert.Equal(t, 2, v)
}

func TestCollapsingHeaderToggles(t *testing.T) {
	p := &fakePainter{w: 800, h: 600}
	c := NewContext(p)
	hy := titleBarH + padding + 5

	frame := func(down bool) bool {
		c.Input().SetMouse(20, hy)
		c.Input().MouseLeftDown = down
		c.Begin()
		c.BeginWindow("w", "Panel", 0, 0, 200)
		open := c.CollapsingHeader("settings", "Settings", true)
		c.EndWindow()
		c.End()
		return open
	}

	require.True(t, frame(false))
	assert.False(t, frame(true))
	assert.False(t, frame(false))
	assert.True(t, frame(true))
}

func TestImageKeepsAspect(t *testing.T) {
	p := &fakePainter{w: 800, h: 600}
	c := NewContext(p)

	c.Begin()
	c.BeginWindow("w", "Images", 0, 0, 400)
	c.Image(fakeTexture{720, 360}, 360)
	c.Image(fakeTexture{100, 50}, 360)
	c.EndWindow()
	c.End()

	require.Len(t, p.images, 2)
	assert.Equal(t, float32(360), p.images[0].W)
	assert.Equal(t, float32(180), p.images[0].H)
	assert.Equal(t, float32(100), p.images[1].W)
}

func TestWindowHeightFollowsContent(t *testing.T) {
	p := &fakePainter{w: 800, h: 600}
	c := NewContext(p)

	c.Begin()
	c.BeginWindow("w", "Panel", 0, 0, 200)
	c.Label("a")
	c.Label("b")
	c.EndWindow()
	c.End()

	ws := c.windows["w"]
	assert.Equal(t, titleBarH+padding+2*(13+spacing)+padding-spacing, ws.H)
}
