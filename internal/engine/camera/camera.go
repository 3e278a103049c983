// Package camera provides the viewer's fly camera and its input controller.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/ennona/pkg/math"
)

// Framing limits for SetFacing.
const (
	MinFacingDistance     float32 = 1e-4
	DefaultFacingDistance float32 = 1
)

// axisFlip turns the image 180 degrees about the view axis so PLY data
// authored Y-up appears upright in GL clip space.
var axisFlip = math.Diagonal(-1, -1, 1, 1)

// Camera is a perspective camera. View maps world space into view space,
// where the camera sits at the origin looking down -Z.
type Camera struct {
	Aspect float32
	FovY   float32 // radians
	ZNear  float32
	ZFar   float32
	View   math.Isometry
}

// New returns a camera at the origin looking down -Z with clip planes sized
// for DefaultFacingDistance.
func New(aspect, fovY float32) *Camera {
	c := &Camera{
		Aspect: 1,
		FovY:   fovY,
		View:   math.IsometryIdentity(),
	}
	c.Resize(aspect)
	c.setClipPlanes(DefaultFacingDistance)
	return c
}

// BuildViewProjection returns flip * projection * view.
func (c *Camera) BuildViewProjection() math.Mat4 {
	proj := math.Perspective(c.FovY, c.Aspect, c.ZNear, c.ZFar)
	return axisFlip.Mul(proj).Mul(c.View.ToMat4())
}

// Resize updates the aspect ratio. Non-positive or non-finite values are ignored.
func (c *Camera) Resize(aspect float32) {
	if aspect <= 0 || !math.IsFinite(aspect) {
		return
	}
	c.Aspect = aspect
}

// SetFacing keeps the current orientation and moves the camera distance units
// back from target along the viewing axis, then fits the clip planes to
// [distance/100, distance*100].
func (c *Camera) SetFacing(target math.Vec3, distance float32) {
	distance = sanitizeDistance(distance)
	if !target.IsFinite() {
		target = math.Vec3{}
	}

	rot := c.View.Rotation
	eye := target.Sub(c.forwardFor(rot).Scale(distance))
	c.View = math.Isometry{
		Rotation:    rot,
		Translation: rot.Rotate(eye).Neg(),
	}
	c.setClipPlanes(distance)
}

func (c *Camera) setClipPlanes(distance float32) {
	c.ZNear = distance / 100
	c.ZFar = distance * 100
}

func sanitizeDistance(d float32) float32 {
	if !math.IsFinite(d) || d <= 0 {
		return DefaultFacingDistance
	}
	return math32.Max(d, MinFacingDistance)
}

// Position returns the camera position in world space.
func (c *Camera) Position() math.Vec3 {
	return c.View.Inverse().Translation
}

// Forward returns the world space viewing direction.
func (c *Camera) Forward() math.Vec3 {
	return c.forwardFor(c.View.Rotation)
}

func (c *Camera) forwardFor(rot math.Quat) math.Vec3 {
	return rot.Conjugate().Rotate(math.Vec3{Z: -1})
}
