package render

import (
	"encoding/binary"
	stdmath "math"

	"github.com/Faultbox/ennona/pkg/math"
)

// UniformSize is the std140 size of the Frame uniform block.
const UniformSize = 80

// Uniforms mirrors the Frame uniform block shared by every stage.
type Uniforms struct {
	ViewProj math.Mat4
	// PixelSize is the height of one pixel in NDC units (2 / height).
	PixelSize float32
	// PointSize is the primitive point diameter in pixels.
	PointSize float32
	Aspect    float32
}

// NewUniforms derives the per-frame values for a target of the given size.
func NewUniforms(viewProj math.Mat4, width, height int, pointSize float32) Uniforms {
	u := Uniforms{ViewProj: viewProj, PointSize: pointSize, Aspect: 1}
	if height > 0 {
		u.PixelSize = 2 / float32(height)
		if width > 0 {
			u.Aspect = float32(width) / float32(height)
		}
	}
	return u
}

// Bytes encodes u in std140 layout.
func (u Uniforms) Bytes() []byte {
	buf := make([]byte, UniformSize)
	for i, f := range u.ViewProj {
		putFloat(buf[i*4:], f)
	}
	putFloat(buf[64:], u.PixelSize)
	putFloat(buf[68:], u.PointSize)
	putFloat(buf[72:], u.Aspect)
	return buf
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, stdmath.Float32bits(f))
}
