package camera

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/ennona/pkg/math"
)

// Action is a held camera movement.
type Action int

// Movement actions.
const (
	ActionUp Action = iota
	ActionDown
	ActionForward
	ActionBackward
	ActionLeft
	ActionRight
	ActionTurnLeft
	ActionTurnRight
	actionCount
)

// Controller tuning.
const (
	DefaultSpeed       float32 = 0.5
	DefaultSensitivity float32 = 0.000818123

	// MaxMouseDelta drops single motion events larger than this many pixels.
	MaxMouseDelta float32 = 2000
	// ScrollPerLine is the scroll accumulator change for one wheel notch.
	ScrollPerLine float32 = 100
	// ScrollStep converts accumulated scroll into speed-relative dolly distance.
	ScrollStep float32 = 0.002
	// TurnRate is the keyboard yaw rate in radians per second.
	TurnRate float32 = 1.5
)

// Controller turns held keys and mouse motion into camera motion.
//
// Held actions persist across frames until released. Mouse rotation and
// scroll are accumulated between frames and consumed by Update exactly once.
type Controller struct {
	Speed       float32 // world units per second
	Sensitivity float32 // radians per pixel per millisecond

	held     [actionCount]bool
	captured bool

	rotX, rotY float32
	scroll     float32

	lastX, lastY float32
	hasLast      bool
}

// NewController returns a controller with the given speed and sensitivity.
func NewController(speed, sensitivity float32) *Controller {
	return &Controller{Speed: speed, Sensitivity: sensitivity}
}

// SetAction marks an action as held or released.
func (c *Controller) SetAction(a Action, held bool) {
	if a < 0 || a >= actionCount {
		return
	}
	c.held[a] = held
}

// Held reports whether an action is held.
func (c *Controller) Held(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return c.held[a]
}

// ReleaseAll clears every held action, e.g. when the window loses focus.
func (c *Controller) ReleaseAll() {
	c.held = [actionCount]bool{}
}

// Captured reports whether mouse motion rotates the camera.
func (c *Controller) Captured() bool { return c.captured }

// SetCaptured enables or disables mouse look. The last known cursor position
// is forgotten so the transition cannot produce a jump.
func (c *Controller) SetCaptured(on bool) {
	c.captured = on
	c.hasLast = false
	c.rotX, c.rotY = 0, 0
}

// ToggleCapture flips mouse look and returns the new state.
func (c *Controller) ToggleCapture() bool {
	c.SetCaptured(!c.captured)
	return c.captured
}

// Recentered records a programmatic cursor warp to (x, y).
func (c *Controller) Recentered(x, y float32) {
	c.lastX, c.lastY = x, y
	c.hasLast = true
}

// ProcessCursor handles an absolute cursor position. While captured, the
// difference from the last known position is accumulated as rotation.
func (c *Controller) ProcessCursor(x, y float32) {
	if !c.captured || !c.hasLast {
		c.lastX, c.lastY = x, y
		c.hasLast = true
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	c.AddMouseDelta(dx, dy)
}

// AddMouseDelta accumulates a relative motion. Ignored unless captured, and
// dropped when non-finite or larger than MaxMouseDelta.
func (c *Controller) AddMouseDelta(dx, dy float32) {
	if !c.captured {
		return
	}
	if !math.IsFinite(dx) || !math.IsFinite(dy) {
		return
	}
	if math32.Abs(dx) > MaxMouseDelta || math32.Abs(dy) > MaxMouseDelta {
		return
	}
	c.rotX += dx
	c.rotY += dy
}

// ProcessScrollLines handles wheel notches; positive means away from the user.
func (c *Controller) ProcessScrollLines(lines float32) {
	if !math.IsFinite(lines) {
		return
	}
	c.scroll -= lines * ScrollPerLine
}

// ProcessScrollPixels handles high resolution scroll deltas in pixels.
func (c *Controller) ProcessScrollPixels(px float32) {
	if !math.IsFinite(px) {
		return
	}
	c.scroll -= px
}

// Scroll returns the pending scroll accumulator.
func (c *Controller) Scroll() float32 { return c.scroll }

// PendingRotation returns the mouse delta accumulated since the last Update.
func (c *Controller) PendingRotation() (dx, dy float32) { return c.rotX, c.rotY }

// Update integrates one frame of motion into cam.
//
// Held directions translate by Speed*dt along the view axes. Pending mouse
// motion rotates by delta*Sensitivity*dt(ms) and is then cleared, as is the
// scroll accumulator.
func (c *Controller) Update(cam *Camera, dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	secs := float32(dt.Seconds())
	step := c.Speed * secs

	var t math.Vec3
	if c.held[ActionForward] {
		t.Z += step
	}
	if c.held[ActionBackward] {
		t.Z -= step
	}
	if c.held[ActionRight] {
		t.X += step
	}
	if c.held[ActionLeft] {
		t.X -= step
	}
	if c.held[ActionUp] {
		t.Y += step
	}
	if c.held[ActionDown] {
		t.Y -= step
	}
	t.Z -= c.scroll * ScrollStep * c.Speed
	if t != (math.Vec3{}) {
		cam.View = cam.View.AppendTranslation(t)
	}

	// The clip-space flip mirrors both screen axes, so positive mouse motion
	// maps to negative view-space angles.
	ms := secs * 1000
	yaw := -c.rotX * c.Sensitivity * ms
	pitch := -c.rotY * c.Sensitivity * ms
	if c.held[ActionTurnLeft] {
		yaw += TurnRate * secs
	}
	if c.held[ActionTurnRight] {
		yaw -= TurnRate * secs
	}
	if yaw != 0 || pitch != 0 {
		q := math.QuatFromAxisAngle(math.UnitX, pitch).Mul(math.QuatFromAxisAngle(math.UnitY, yaw))
		cam.View = cam.View.AppendRotation(q)
	}

	c.rotX, c.rotY = 0, 0
	c.scroll = 0
}
