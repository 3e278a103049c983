// Package geometry holds the CPU-side point and face sets produced by importers
// and consumed by the renderer.
package geometry

import (
	"fmt"

	"github.com/Faultbox/ennona/pkg/math"
)

// Vertex is a colored position shared by points and face corners.
type Vertex struct {
	Position math.Vec3
	Color    math.Vec3 // RGB in [0, 1]
}

// PointSet is an ordered list of unconnected vertices.
type PointSet struct {
	Vertices []Vertex
}

// Len returns the number of points.
func (p PointSet) Len() int { return len(p.Vertices) }

// FaceSet is a deduplicated list of face corners plus triangle indices into it.
type FaceSet struct {
	Vertices []Vertex
	Indices  []uint32
}

// Triangles returns the number of triangles.
func (f FaceSet) Triangles() int { return len(f.Indices) / 3 }

// Validate checks the index invariants.
func (f FaceSet) Validate() error {
	if len(f.Indices)%3 != 0 {
		return fmt.Errorf("face index count %d is not a multiple of 3", len(f.Indices))
	}
	n := uint32(len(f.Vertices))
	for i, idx := range f.Indices {
		if idx >= n {
			return fmt.Errorf("face index %d at position %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Dataset is one imported geometry file split into loose points and faces.
type Dataset struct {
	Points PointSet
	Faces  FaceSet
}

// Empty reports whether the dataset has nothing to draw.
func (d Dataset) Empty() bool {
	return d.Points.Len() == 0 && len(d.Faces.Indices) == 0
}

// AllVertices returns point and face vertices in one slice.
func (d Dataset) AllVertices() []Vertex {
	out := make([]Vertex, 0, len(d.Points.Vertices)+len(d.Faces.Vertices))
	out = append(out, d.Points.Vertices...)
	return append(out, d.Faces.Vertices...)
}
