// Package ui2d is a small immediate-mode panel toolkit. A Context turns widget
// calls into draw commands on a Painter; package glrender paints them over the
// scene.
package ui2d

const (
	padding    = float32(8)
	spacing    = float32(4)
	titleBarH  = float32(22)
	rowH       = float32(20)
	textScale  = float32(1)
	grabWidth  = float32(8)
	headerIcon = float32(14)
)

// WindowState holds state for a UI window across frames.
type WindowState struct {
	ID     string
	X, Y   float32
	W, H   float32
	Moving bool
}

// Context is the main UI context that manages layout and interaction.
type Context struct {
	painter Painter
	input   *InputState

	activeWidget string

	windows       map[string]*WindowState
	headers       map[string]bool
	currentWindow *WindowState

	// hover is true when the pointer was over a window last frame.
	hover     bool
	hoverNext bool

	cursorY float32
}

// NewContext creates a UI context drawing with p.
func NewContext(p Painter) *Context {
	return &Context{
		painter: p,
		input:   &InputState{},
		windows: make(map[string]*WindowState),
		headers: make(map[string]bool),
	}
}

// Input returns the input state for modification.
func (c *Context) Input() *InputState {
	return c.input
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.hoverNext = false
}

// End finishes the UI frame.
func (c *Context) End() {
	c.hover = c.hoverNext
	if !c.input.MouseLeftDown {
		c.activeWidget = ""
	}
}

// WantsMouse reports whether the pointer is over a panel or a widget is
// being dragged, so the scene should ignore the click.
func (c *Context) WantsMouse() bool {
	return c.hover || c.activeWidget != ""
}

// BeginWindow starts a window at (x, y) with width w. Its height follows the
// content laid out in the previous frame.
func (c *Context) BeginWindow(id, title string, x, y, w float32) {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id, X: x, Y: y, W: w, H: titleBarH}
		c.windows[id] = ws
	}
	ws.W = w
	c.currentWindow = ws

	bar := Rect{ws.X, ws.Y, ws.W, titleBarH}
	if c.input.MouseLeftPressed && bar.Contains(c.input.MouseX, c.input.MouseY) {
		ws.Moving = true
		c.activeWidget = id + "#title"
	}
	if ws.Moving {
		if c.input.MouseLeftDown {
			ws.X += c.input.MouseDeltaX
			ws.Y += c.input.MouseDeltaY
		} else {
			ws.Moving = false
		}
	}
	c.clampToScreen(ws)

	if c.input.IsMouseInRect(Rect{ws.X, ws.Y, ws.W, ws.H}) {
		c.hoverNext = true
	}

	c.painter.DrawRect(ws.X, ws.Y, ws.W, ws.H, ColorPanelBg)
	c.painter.DrawRectOutline(ws.X, ws.Y, ws.W, ws.H, 1, ColorPanelBorder)
	c.painter.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarH-1, ColorButtonNormal)
	_, th := c.painter.MeasureText(title, textScale)
	c.painter.DrawText(ws.X+padding, ws.Y+(titleBarH-th)/2, title, textScale, ColorText)

	c.cursorY = ws.Y + titleBarH + padding
}

// EndWindow ends the current window and records its height.
func (c *Context) EndWindow() {
	if ws := c.currentWindow; ws != nil {
		ws.H = c.cursorY - ws.Y + padding - spacing
	}
	c.currentWindow = nil
}

func (c *Context) clampToScreen(ws *WindowState) {
	sw, sh := c.painter.ScreenSize()
	if ws.X > float32(sw)-titleBarH {
		ws.X = float32(sw) - titleBarH
	}
	if ws.Y > float32(sh)-titleBarH {
		ws.Y = float32(sh) - titleBarH
	}
	if ws.X < 0 {
		ws.X = 0
	}
	if ws.Y < 0 {
		ws.Y = 0
	}
}

// next reserves a row of height h and returns its rectangle.
func (c *Context) next(h float32) Rect {
	ws := c.currentWindow
	r := Rect{ws.X + padding, c.cursorY, ws.W - 2*padding, h}
	c.cursorY += h + spacing
	return r
}

func (c *Context) widgetID(id string) string {
	return c.currentWindow.ID + "/" + id
}

// CollapsingHeader draws a clickable section header and reports whether the
// section is expanded.
func (c *Context) CollapsingHeader(id, label string, defaultOpen bool) bool {
	if c.currentWindow == nil {
		return false
	}
	full := c.widgetID(id)
	open, ok := c.headers[full]
	if !ok {
		open = defaultOpen
	}

	r := c.next(rowH)
	hovered := c.input.IsMouseInRect(r)
	if hovered && c.input.MouseLeftPressed && c.activeWidget == "" {
		open = !open
		c.activeWidget = full
	}
	c.headers[full] = open

	bg := ColorHeader
	if hovered {
		bg = bg.Lighten(0.1)
	}
	c.painter.DrawRect(r.X, r.Y, r.W, r.H, bg)
	marker := "+"
	if open {
		marker = "-"
	}
	_, th := c.painter.MeasureText(label, textScale)
	ty := r.Y + (r.H-th)/2
	c.painter.DrawText(r.X+4, ty, marker, textScale, ColorText)
	c.painter.DrawText(r.X+4+headerIcon, ty, label, textScale, ColorText)
	return open
}

// Button draws a full-width button and returns true if it was clicked.
func (c *Context) Button(id, label string) bool {
	if c.currentWindow == nil {
		return false
	}
	full := c.widgetID(id)
	r := c.next(rowH + 4)
	hovered := c.input.IsMouseInRect(r)

	clicked := false
	if hovered && c.input.MouseLeftPressed && c.activeWidget == "" {
		c.activeWidget = full
		clicked = true
	}

	color := ColorButtonNormal
	if c.activeWidget == full {
		color = ColorButtonActive
	} else if hovered {
		color = ColorButtonHover
	}
	c.painter.DrawRect(r.X, r.Y, r.W, r.H, color)
	c.painter.DrawRectOutline(r.X, r.Y, r.W, r.H, 1, ColorPanelBorder)
	tw, th := c.painter.MeasureText(label, textScale)
	c.painter.DrawText(r.X+(r.W-tw)/2, r.Y+(r.H-th)/2, label, textScale, ColorText)
	return clicked
}

// Label draws a line of text.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a line of text in color.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	_, th := c.painter.MeasureText(text, textScale)
	r := c.next(th)
	c.painter.DrawText(r.X, r.Y, text, textScale, color)
}

// Separator draws a horizontal rule.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	r := c.next(1)
	c.painter.DrawRect(r.X, r.Y, r.W, 1, ColorPanelBorder)
}

// Checkbox draws a checkbox bound to v and reports whether it changed.
func (c *Context) Checkbox(id, label string, v *bool) bool {
	if c.currentWindow == nil {
		return false
	}
	full := c.widgetID(id)
	r := c.next(rowH)
	box := Rect{r.X, r.Y + 2, r.H - 4, r.H - 4}
	hovered := c.input.IsMouseInRect(r)

	changed := false
	if hovered && c.input.MouseLeftPressed && c.activeWidget == "" {
		c.activeWidget = full
		*v = !*v
		changed = true
	}

	bg := ColorTrack
	if hovered {
		bg = ColorButtonHover
	}
	c.painter.DrawRect(box.X, box.Y, box.W, box.H, bg)
	c.painter.DrawRectOutline(box.X, box.Y, box.W, box.H, 1, ColorPanelBorder)
	if *v {
		c.painter.DrawRect(box.X+3, box.Y+3, box.W-6, box.H-6, ColorHighlight)
	}
	_, th := c.painter.MeasureText(label, textScale)
	c.painter.DrawText(box.X+box.W+6, r.Y+(r.H-th)/2, label, textScale, ColorText)
	return changed
}

// Image draws tex scaled to at most maxWidth, keeping its aspect ratio.
func (c *Context) Image(tex Texture, maxWidth float32) {
	if c.currentWindow == nil || tex == nil {
		return
	}
	w, h := ImageSize(tex, maxWidth)
	if w == 0 || h == 0 {
		return
	}
	r := c.next(h)
	c.painter.DrawImage(r.X, r.Y, w, h, tex)
}

// ImageSize returns the on-screen size of tex limited to maxWidth.
func ImageSize(tex Texture, maxWidth float32) (float32, float32) {
	tw, th := tex.Size()
	if tw <= 0 || th <= 0 {
		return 0, 0
	}
	w, h := float32(tw), float32(th)
	if maxWidth > 0 && w > maxWidth {
		h *= maxWidth / w
		w = maxWidth
	}
	return w, h
}
