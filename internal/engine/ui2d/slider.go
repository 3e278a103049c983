package ui2d

import (
	"fmt"
	"math"
)

// Slider draws a float slider bound to v over [min, max] and reports whether
// the value changed. A logarithmic slider maps the track to ln(v) and needs
// 0 < min < max; otherwise it falls back to linear.
func (c *Context) Slider(id, label string, v *float32, min, max float32, logarithmic bool) bool {
	if c.currentWindow == nil {
		return false
	}
	if logarithmic && min <= 0 {
		logarithmic = false
	}
	*v = clamp(*v, min, max)

	frac, changed := c.track(id, SliderFraction(*v, min, max, logarithmic))
	if changed {
		nv := SliderValue(frac, min, max, logarithmic)
		changed = nv != *v
		*v = nv
	}
	c.sliderText(label, fmt.Sprintf("%.4g", *v))
	return changed
}

// IntSlider draws an integer slider bound to v over [min, max].
func (c *Context) IntSlider(id, label string, v *int, min, max int) bool {
	if c.currentWindow == nil || max < min {
		return false
	}
	if *v < min {
		*v = min
	}
	if *v > max {
		*v = max
	}

	var frac float32
	if max > min {
		frac = float32(*v-min) / float32(max-min)
	}
	frac, changed := c.track(id, frac)
	if changed {
		nv := min + int(math.Round(float64(frac)*float64(max-min)))
		changed = nv != *v
		*v = nv
	}
	c.sliderText(label, fmt.Sprintf("%d", *v))
	return changed
}

// track draws the slider track and handles dragging. It returns the
// fraction under the pointer while the slider is being dragged.
func (c *Context) track(id string, frac float32) (float32, bool) {
	full := c.widgetID(id)
	r := c.next(rowH)

	if c.input.MouseLeftPressed && c.input.IsMouseInRect(r) && c.activeWidget == "" {
		c.activeWidget = full
	}
	dragging := c.activeWidget == full && c.input.MouseLeftDown
	if dragging {
		usable := r.W - grabWidth
		if usable > 0 {
			frac = clamp((c.input.MouseX-r.X-grabWidth/2)/usable, 0, 1)
		}
	}

	c.painter.DrawRect(r.X, r.Y, r.W, r.H, ColorTrack)
	c.painter.DrawRectOutline(r.X, r.Y, r.W, r.H, 1, ColorPanelBorder)
	gx := r.X + frac*(r.W-grabWidth)
	grab := ColorButtonActive
	if dragging {
		grab = ColorHighlight
	}
	c.painter.DrawRect(gx, r.Y+1, grabWidth, r.H-2, grab)

	return frac, dragging
}

func (c *Context) sliderText(label, value string) {
	ws := c.currentWindow
	r := Rect{ws.X + padding, c.cursorY - rowH - spacing, ws.W - 2*padding, rowH}
	_, th := c.painter.MeasureText(value, textScale)
	c.painter.DrawText(r.X+grabWidth+4, r.Y+(r.H-th)/2, label+": "+value, textScale, ColorText)
}

// SliderFraction maps v in [min, max] to a track position in [0, 1].
func SliderFraction(v, min, max float32, logarithmic bool) float32 {
	if max <= min {
		return 0
	}
	v = clamp(v, min, max)
	if logarithmic && min > 0 {
		return float32(math.Log(float64(v/min)) / math.Log(float64(max/min)))
	}
	return (v - min) / (max - min)
}

// SliderValue maps a track position in [0, 1] back to [min, max].
func SliderValue(frac, min, max float32, logarithmic bool) float32 {
	frac = clamp(frac, 0, 1)
	if max <= min {
		return min
	}
	var v float32
	if logarithmic && min > 0 {
		v = min * float32(math.Pow(float64(max/min), float64(frac)))
	} else {
		v = min + frac*(max-min)
	}
	return clamp(v, min, max)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
