package camera

import (
	gomath "math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/ennona/pkg/math"
)

func newTestCamera() *Camera {
	c := New(1, gomath.Pi/4)
	c.SetFacing(math.Vec3{}, 10)
	return c
}

func TestForwardMotionIsAdditive(t *testing.T) {
	split := newTestCamera()
	single := newTestCamera()

	ctrl := NewController(3, DefaultSensitivity)
	ctrl.SetAction(ActionForward, true)

	ctrl.Update(split, 16*time.Millisecond)
	ctrl.Update(split, 34*time.Millisecond)
	ctrl.Update(single, 50*time.Millisecond)

	assertVecNear(t, single.Position(), split.Position(), 1e-5)
	assert.InDelta(t, 10-3*0.05, single.Position().Distance(math.Vec3{}), 1e-4)
}

func TestHeldDirections(t *testing.T) {
	tests := []struct {
		action Action
		view   math.Vec3 // translation appended in view space
	}{
		{ActionForward, math.Vec3{Z: 1}},
		{ActionBackward, math.Vec3{Z: -1}},
		{ActionRight, math.Vec3{X: 1}},
		{ActionLeft, math.Vec3{X: -1}},
		{ActionUp, math.Vec3{Y: 1}},
		{ActionDown, math.Vec3{Y: -1}},
	}

	for _, tt := range tests {
		cam := New(1, 1)
		ctrl := NewController(2, DefaultSensitivity)
		ctrl.SetAction(tt.action, true)
		ctrl.Update(cam, time.Second)

		assertVecNear(t, tt.view.Scale(2), cam.View.Translation, 1e-6)
	}
}

func TestReleaseStopsMotion(t *testing.T) {
	cam := newTestCamera()
	ctrl := NewController(1, DefaultSensitivity)

	ctrl.SetAction(ActionLeft, true)
	ctrl.Update(cam, 10*time.Millisecond)
	ctrl.SetAction(ActionLeft, false)
	before := cam.View
	ctrl.Update(cam, 10*time.Millisecond)

	assert.Equal(t, before, cam.View)
}

func TestRotationConsumedOnce(t *testing.T) {
	cam := newTestCamera()
	ctrl := NewController(1, DefaultSensitivity)
	ctrl.SetCaptured(true)

	ctrl.AddMouseDelta(40, -25)
	start := cam.View
	ctrl.Update(cam, 16*time.Millisecond)
	assert.NotEqual(t, start, cam.View, "first update should rotate")

	afterFirst := cam.View
	ctrl.Update(cam, 16*time.Millisecond)
	assert.Equal(t, afterFirst, cam.View, "second update should not rotate again")

	dx, dy := ctrl.PendingRotation()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestMouseIgnoredWhenNotCaptured(t *testing.T) {
	ctrl := NewController(1, DefaultSensitivity)
	ctrl.AddMouseDelta(10, 10)
	ctrl.ProcessCursor(100, 100)
	ctrl.ProcessCursor(150, 120)

	dx, dy := ctrl.PendingRotation()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestMouseRejectsBadDeltas(t *testing.T) {
	ctrl := NewController(1, DefaultSensitivity)
	ctrl.SetCaptured(true)

	ctrl.AddMouseDelta(float32(gomath.NaN()), 1)
	ctrl.AddMouseDelta(1, float32(gomath.Inf(-1)))
	ctrl.AddMouseDelta(MaxMouseDelta*2, 0)
	ctrl.AddMouseDelta(3, 4)

	dx, dy := ctrl.PendingRotation()
	assert.Equal(t, float32(3), dx)
	assert.Equal(t, float32(4), dy)
}

func TestCaptureToggleResetsLastPosition(t *testing.T) {
	ctrl := NewController(1, DefaultSensitivity)

	ctrl.ProcessCursor(10, 10)
	assert.True(t, ctrl.ToggleCapture())

	// First position after capture only establishes the reference point.
	ctrl.ProcessCursor(500, 400)
	dx, dy := ctrl.PendingRotation()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	ctrl.ProcessCursor(505, 398)
	dx, dy = ctrl.PendingRotation()
	assert.Equal(t, float32(5), dx)
	assert.Equal(t, float32(-2), dy)
}

func TestRecenteredAvoidsSpuriousDelta(t *testing.T) {
	ctrl := NewController(1, DefaultSensitivity)
	ctrl.SetCaptured(true)
	ctrl.ProcessCursor(100, 100)
	ctrl.ProcessCursor(130, 100)

	// The app warps the cursor back to the window center.
	ctrl.Recentered(400, 300)
	ctrl.ProcessCursor(400, 300)
	ctrl.ProcessCursor(401, 300)

	dx, _ := ctrl.PendingRotation()
	assert.Equal(t, float32(31), dx)
}

func TestScroll(t *testing.T) {
	ctrl := NewController(4, DefaultSensitivity)

	ctrl.ProcessScrollLines(1)
	assert.Equal(t, -ScrollPerLine, ctrl.Scroll())

	cam := New(1, 1)
	ctrl.Update(cam, 16*time.Millisecond)

	// One notch away from the user dollies forward.
	assert.InDelta(t, ScrollPerLine*ScrollStep*4, cam.View.Translation.Z, 1e-6)
	assert.Zero(t, ctrl.Scroll())
}

func TestTurnKeys(t *testing.T) {
	cam := New(1, 1)
	ctrl := NewController(1, DefaultSensitivity)
	ctrl.SetAction(ActionTurnLeft, true)
	ctrl.Update(cam, time.Second)

	// Turning rotates about the view's vertical axis only.
	f := cam.Forward()
	assert.InDelta(t, 0, f.Y, 1e-6)
	assert.InDelta(t, gomath.Cos(float64(TurnRate)), -f.Z, 1e-5)
}

func TestReleaseAll(t *testing.T) {
	ctrl := NewController(1, DefaultSensitivity)
	ctrl.SetAction(ActionUp, true)
	ctrl.SetAction(ActionTurnRight, true)
	ctrl.ReleaseAll()

	assert.False(t, ctrl.Held(ActionUp))
	assert.False(t, ctrl.Held(ActionTurnRight))
	assert.False(t, ctrl.Held(Action(99)))
}
