package viewer

import (
	"fmt"
	"image"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/ennona/internal/engine/input"
	"github.com/Faultbox/ennona/internal/engine/ui2d"
)

// Panel layout.
const (
	panelX     = 10
	panelY     = 10
	panelWidth = 380
	// ImageMaxWidth is the widest an image preview is drawn.
	ImageMaxWidth = 360

	// SensitivityMin and SensitivityMax bound the sensitivity slider.
	SensitivityMin float32 = 0.0001
	SensitivityMax float32 = 0.003
	// SpeedRange is the speed slider's upper bound as a multiple of the scene scale.
	SpeedRange float32 = 25
)

// Canvas is what the settings panel paints with. glrender.Renderer
// implements it.
type Canvas interface {
	ui2d.Painter
	Begin()
	End()
	Resize(width, height int)
	UploadImage(img image.Image) (ui2d.Texture, error)
}

// PanelState is the data the settings panel shows and edits for one frame.
type PanelState struct {
	Speed       *float32
	Sensitivity *float32
	Scale       float32

	Width, Height     int
	Points, Triangles int
	PointMode         string
	File              string
	Status            string

	ShowBounds *bool
	Wireframe  *bool
}

// PanelActions are the requests the panel made this frame.
type PanelActions struct {
	OpenFile         bool
	BoundsChanged    bool
	WireframeChanged bool
}

// Interface is the settings panel: camera sliders, scene statistics and the
// registry of imported images.
type Interface struct {
	canvas  Canvas
	ui      *ui2d.Context
	printer *message.Printer

	Visible bool

	images     []ui2d.Texture
	imageIndex int
}

// NewInterface returns a visible panel painting on canvas.
func NewInterface(canvas Canvas) *Interface {
	return &Interface{
		canvas:  canvas,
		ui:      ui2d.NewContext(canvas),
		printer: message.NewPrinter(language.English),
		Visible: true,
	}
}

// AddImage uploads img and makes it the displayed image.
func (i *Interface) AddImage(img image.Image) (int, error) {
	tex, err := i.canvas.UploadImage(img)
	if err != nil {
		return 0, fmt.Errorf("register image: %w", err)
	}
	i.images = append(i.images, tex)
	i.imageIndex = len(i.images) - 1
	return i.imageIndex, nil
}

// ImageCount returns the number of registered images.
func (i *Interface) ImageCount() int { return len(i.images) }

// Image returns the registered texture at index, or nil.
func (i *Interface) Image(index int) ui2d.Texture {
	if index < 0 || index >= len(i.images) {
		return nil
	}
	return i.images[index]
}

// ImageIndex returns the displayed image index.
func (i *Interface) ImageIndex() int { return i.imageIndex }

// SetImageIndex selects the displayed image, clamped to the registry.
func (i *Interface) SetImageIndex(index int) {
	i.imageIndex = clampIndex(index, len(i.images))
}

func clampIndex(index, n int) int {
	if n == 0 || index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}

// HandleEvent feeds pointer events to the panel.
func (i *Interface) HandleEvent(e input.Event) {
	in := i.ui.Input()
	switch e.Type {
	case input.EventMouseMove:
		in.SetMouse(float32(e.MouseX), float32(e.MouseY))
	case input.EventMouseDown:
		in.SetMouse(float32(e.MouseX), float32(e.MouseY))
		if e.Button == input.ButtonLeft {
			in.MouseLeftDown = true
		}
	case input.EventMouseUp:
		in.SetMouse(float32(e.MouseX), float32(e.MouseY))
		if e.Button == input.ButtonLeft {
			in.MouseLeftDown = false
		}
	case input.EventFocusLost:
		in.MouseLeftDown = false
	}
}

// WantsMouse reports whether the pointer belongs to the panel.
func (i *Interface) WantsMouse() bool {
	return i.Visible && i.ui.WantsMouse()
}

// Build lays out the panel for this frame. The draw lists are painted later
// by DrawOverlay, inside the overlay pass.
func (i *Interface) Build(s PanelState) PanelActions {
	var act PanelActions

	i.canvas.Resize(s.Width, s.Height)
	i.canvas.Begin()
	if !i.Visible || s.Width == 0 || s.Height == 0 {
		return act
	}

	i.ui.Begin()
	defer i.ui.End()

	i.ui.BeginWindow("settings", "Settings", panelX, panelY, panelWidth)
	defer i.ui.EndWindow()

	if i.ui.CollapsingHeader("camera", "Camera", true) {
		scale := s.Scale
		if scale <= 0 {
			scale = 1
		}
		if s.Speed != nil {
			i.ui.Slider("speed", "Speed", s.Speed, scale, SpeedRange*scale, true)
		}
		if s.Sensitivity != nil {
			i.ui.Slider("sensitivity", "Sensitivity", s.Sensitivity, SensitivityMin, SensitivityMax, true)
		}
		i.ui.Label(fmt.Sprintf("Window width: %d", s.Width))
		i.ui.Label(fmt.Sprintf("Window height: %d", s.Height))
	}

	if i.ui.CollapsingHeader("scene", "Scene", true) {
		if s.File != "" {
			i.ui.Label("File: " + filepath.Base(s.File))
		}
		i.ui.Label(i.printer.Sprintf("Points: %d", s.Points))
		i.ui.Label(i.printer.Sprintf("Triangles: %d", s.Triangles))
		if s.PointMode != "" {
			i.ui.LabelColored("Point mode: "+s.PointMode, ui2d.ColorTextDim)
		}
		if s.ShowBounds != nil {
			act.BoundsChanged = i.ui.Checkbox("bounds", "Bounding box (B)", s.ShowBounds)
		}
		if s.Wireframe != nil {
			act.WireframeChanged = i.ui.Checkbox("wireframe", "Wireframe (F)", s.Wireframe)
		}
		act.OpenFile = i.ui.Button("open", "Open file")
		if s.Status != "" {
			i.ui.LabelColored(s.Status, ui2d.ColorHighlight)
		}
	}

	if len(i.images) > 0 && i.ui.CollapsingHeader("images", "Images", true) {
		i.imageIndex = clampIndex(i.imageIndex, len(i.images))
		if len(i.images) > 1 {
			i.ui.IntSlider("image", "Image", &i.imageIndex, 0, len(i.images)-1)
		}
		tex := i.images[i.imageIndex]
		w, h := tex.Size()
		i.ui.Label(fmt.Sprintf("%d x %d", w, h))
		i.ui.Image(tex, ImageMaxWidth)
	}

	return act
}

// DrawOverlay implements gpu.Overlay by painting the draw lists built by
// Build into the current target.
func (i *Interface) DrawOverlay(width, height int) {
	i.canvas.Resize(width, height)
	i.canvas.End()
}
