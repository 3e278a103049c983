package ui2d

// Texture is an image the painter can draw.
type Texture interface {
	Size() (width, height int)
}

// Painter receives the draw commands produced by a Context. The GL Renderer
// is the production implementation.
type Painter interface {
	ScreenSize() (width, height int)
	DrawRect(x, y, w, h float32, c Color)
	DrawRectOutline(x, y, w, h, thickness float32, c Color)
	DrawText(x, y float32, text string, scale float32, c Color)
	MeasureText(text string, scale float32) (float32, float32)
	DrawImage(x, y, w, h float32, tex Texture)
}

// Rect is a simple rectangle struct.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
