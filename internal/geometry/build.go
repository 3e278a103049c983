package geometry

import "fmt"

// FanTriangulate appends the fan triangulation of one polygon to dst.
// The first corner is shared by every triangle: [a b c d] yields (a b c) (a c d).
// Polygons with fewer than three corners produce nothing.
func FanTriangulate(dst []uint32, polygon []uint32) []uint32 {
	if len(polygon) < 3 {
		return dst
	}
	first := polygon[0]
	for i := 1; i+1 < len(polygon); i++ {
		dst = append(dst, first, polygon[i], polygon[i+1])
	}
	return dst
}

// Build splits vertices into loose points and faces.
//
// Every vertex referenced by a face becomes a face vertex, added once in order of
// first reference. Vertices never referenced by a face become points, keeping
// their original order.
func Build(vertices []Vertex, faces [][]uint32) (Dataset, error) {
	remap := make(map[uint32]uint32)
	var fs FaceSet

	corners := make([]uint32, 0, 8)
	for fi, face := range faces {
		corners = corners[:0]
		for _, idx := range face {
			if int(idx) >= len(vertices) {
				return Dataset{}, fmt.Errorf("face %d references vertex %d, only %d vertices", fi, idx, len(vertices))
			}
			mapped, ok := remap[idx]
			if !ok {
				mapped = uint32(len(fs.Vertices))
				remap[idx] = mapped
				fs.Vertices = append(fs.Vertices, vertices[idx])
			}
			corners = append(corners, mapped)
		}
		fs.Indices = FanTriangulate(fs.Indices, corners)
	}

	points := make([]Vertex, 0, len(vertices)-len(remap))
	for i, v := range vertices {
		if _, used := remap[uint32(i)]; !used {
			points = append(points, v)
		}
	}

	return Dataset{Points: PointSet{Vertices: points}, Faces: fs}, nil
}
