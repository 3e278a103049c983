package ui2d

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Panel theme.
var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}

	ColorPanelBg      = Color{0.07, 0.07, 0.09, 0.92}
	ColorPanelBorder  = Color{0.28, 0.28, 0.33, 1}
	ColorHeader       = Color{0.16, 0.2, 0.28, 1}
	ColorButtonNormal = Color{0.15, 0.15, 0.19, 1}
	ColorButtonHover  = Color{0.24, 0.24, 0.32, 1}
	ColorButtonActive = Color{0.12, 0.32, 0.52, 1}
	ColorTrack        = Color{0.05, 0.05, 0.07, 1}
	ColorText         = Color{0.9, 0.9, 0.9, 1}
	ColorTextDim      = Color{0.55, 0.55, 0.6, 1}
	ColorHighlight    = Color{0.26, 0.59, 0.98, 1}
)

// RGB creates a color from 8-bit RGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Lighten returns a lighter version of the color.
func (c Color) Lighten(factor float32) Color {
	return Color{
		R: c.R + (1-c.R)*factor,
		G: c.G + (1-c.G)*factor,
		B: c.B + (1-c.B)*factor,
		A: c.A,
	}
}
