package ui2d

// InputState holds the pointer state the panel reacts to.
type InputState struct {
	MouseX, MouseY float32
	MouseLeftDown  bool

	// Derived by Update.
	MouseLeftPressed  bool
	MouseLeftReleased bool
	MouseDeltaX       float32
	MouseDeltaY       float32

	prevLeft   bool
	prevX      float32
	prevY      float32
	hasPrevPos bool
}

// Update derives edges and deltas from the raw state.
// Call this once per frame after feeding events.
func (i *InputState) Update() {
	if i.hasPrevPos {
		i.MouseDeltaX = i.MouseX - i.prevX
		i.MouseDeltaY = i.MouseY - i.prevY
	}
	i.MouseLeftPressed = i.MouseLeftDown && !i.prevLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevLeft

	i.prevLeft = i.MouseLeftDown
	i.prevX, i.prevY = i.MouseX, i.MouseY
	i.hasPrevPos = true
}

// SetMouse records the pointer position.
func (i *InputState) SetMouse(x, y float32) {
	i.MouseX, i.MouseY = x, y
}

// IsMouseInRect checks if the mouse is within a rectangle.
func (i *InputState) IsMouseInRect(r Rect) bool {
	return r.Contains(i.MouseX, i.MouseY)
}
