// Package debug provides debug visualization and capture utilities.
package debug

import "github.com/Faultbox/ennona/pkg/math"

// BoxEdgeVertexCount is the number of line endpoints in a box wireframe (12 edges × 2).
const BoxEdgeVertexCount = 24

// BoxEdges returns the 12 edges of the axis-aligned box [min, max] as line
// endpoint pairs. The box is grown by padding on every side.
func BoxEdges(min, max math.Vec3, padding float32) []math.Vec3 {
	lo := min.Min(max).Sub(math.Vec3{X: padding, Y: padding, Z: padding})
	hi := min.Max(max).Add(math.Vec3{X: padding, Y: padding, Z: padding})

	corner := func(i int) math.Vec3 {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		return c
	}

	out := make([]math.Vec3, 0, BoxEdgeVertexCount)
	for i := 0; i < 8; i++ {
		// connect each corner to the neighbours that differ in one higher bit
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				out = append(out, corner(i), corner(i|bit))
			}
		}
	}
	return out
}
