package geometry

import "github.com/Faultbox/ennona/pkg/math"

// Centroid returns the average position of vertices, accumulated in float64.
// ok is false for an empty slice.
func Centroid(vertices []Vertex) (c math.Vec3, ok bool) {
	if len(vertices) == 0 {
		return math.Vec3{}, false
	}
	var x, y, z float64
	for _, v := range vertices {
		x += float64(v.Position.X)
		y += float64(v.Position.Y)
		z += float64(v.Position.Z)
	}
	n := float64(len(vertices))
	return math.Vec3{X: float32(x / n), Y: float32(y / n), Z: float32(z / n)}, true
}

// AverageDistance returns the mean distance of vertices from center.
// ok is false for an empty slice.
func AverageDistance(center math.Vec3, vertices []Vertex) (d float32, ok bool) {
	if len(vertices) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range vertices {
		sum += float64(center.Distance(v.Position))
	}
	return float32(sum / float64(len(vertices))), true
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max math.Vec3
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// ComputeBounds returns the bounds of vertices. ok is false for an empty slice.
func ComputeBounds(vertices []Vertex) (b Bounds, ok bool) {
	if len(vertices) == 0 {
		return Bounds{}, false
	}
	b.Min, b.Max = vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		b.Min = b.Min.Min(v.Position)
		b.Max = b.Max.Max(v.Position)
	}
	return b, true
}

// Framing describes where the camera should look after a load.
type Framing struct {
	Target   math.Vec3
	Distance float32 // mean distance from Target; 0 when undefined
}

// Frame computes the framing for a dataset. Datasets with fewer than two
// vertices have no meaningful spread and report Distance 0.
func Frame(d Dataset) Framing {
	all := d.AllVertices()
	center, ok := Centroid(all)
	if !ok {
		return Framing{}
	}
	if len(all) < 2 {
		return Framing{Target: center}
	}
	dist, _ := AverageDistance(center, all)
	return Framing{Target: center, Distance: dist}
}
