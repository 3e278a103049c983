package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ennona/pkg/math"
)

func vtx(x, y, z float32) Vertex {
	return Vertex{Position: math.Vec3{X: x, Y: y, Z: z}, Color: math.Vec3{X: 1, Y: 1, Z: 1}}
}

func TestFanTriangulate(t *testing.T) {
	tests := []struct {
		name    string
		polygon []uint32
		want    []uint32
	}{
		{"quad", []uint32{10, 11, 12, 13}, []uint32{10, 11, 12, 10, 12, 13}},
		{"triangle", []uint32{4, 5, 6}, []uint32{4, 5, 6}},
		{"pentagon", []uint32{0, 1, 2, 3, 4}, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}},
		{"degenerate line", []uint32{1, 2}, nil},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FanTriangulate(nil, tt.polygon)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSplitsPointsAndFaces(t *testing.T) {
	vertices := []Vertex{vtx(0, 0, 0), vtx(1, 0, 0), vtx(1, 1, 0), vtx(0, 1, 0), vtx(5, 5, 5)}
	faces := [][]uint32{{3, 2, 1, 0}}

	ds, err := Build(vertices, faces)
	require.NoError(t, err)

	// Vertex 4 is not referenced by any face.
	require.Equal(t, 1, ds.Points.Len())
	assert.Equal(t, vertices[4], ds.Points.Vertices[0])

	// Face vertices are added in order of first reference.
	require.Len(t, ds.Faces.Vertices, 4)
	assert.Equal(t, vertices[3], ds.Faces.Vertices[0])
	assert.Equal(t, vertices[0], ds.Faces.Vertices[3])
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, ds.Faces.Indices)
	assert.NoError(t, ds.Faces.Validate())
}

func TestBuildDeduplicatesSharedCorners(t *testing.T) {
	vertices := []Vertex{vtx(0, 0, 0), vtx(1, 0, 0), vtx(1, 1, 0), vtx(0, 1, 0)}
	faces := [][]uint32{{0, 1, 2}, {0, 2, 3}}

	ds, err := Build(vertices, faces)
	require.NoError(t, err)

	assert.Len(t, ds.Faces.Vertices, 4)
	assert.Equal(t, 2, ds.Faces.Triangles())
	assert.Equal(t, 0, ds.Points.Len())
}

func TestBuildNoFaces(t *testing.T) {
	vertices := []Vertex{vtx(0, 0, 0), vtx(1, 2, 3)}

	ds, err := Build(vertices, nil)
	require.NoError(t, err)

	assert.Equal(t, vertices, ds.Points.Vertices)
	assert.Empty(t, ds.Faces.Indices)
	assert.False(t, ds.Empty())
}

func TestBuildRejectsOutOfRangeIndex(t *testing.T) {
	_, err := Build([]Vertex{vtx(0, 0, 0)}, [][]uint32{{0, 1, 2}})
	assert.Error(t, err)
}

func TestFaceSetValidate(t *testing.T) {
	verts := []Vertex{vtx(0, 0, 0), vtx(1, 0, 0), vtx(0, 1, 0)}

	assert.NoError(t, FaceSet{Vertices: verts, Indices: []uint32{0, 1, 2}}.Validate())
	assert.Error(t, FaceSet{Vertices: verts, Indices: []uint32{0, 1}}.Validate())
	assert.Error(t, FaceSet{Vertices: verts, Indices: []uint32{0, 1, 3}}.Validate())
}

func TestCentroidAndAverageDistance(t *testing.T) {
	vertices := []Vertex{vtx(-1, 0, 0), vtx(1, 0, 0), vtx(0, 3, 0), vtx(0, -3, 0)}

	c, ok := Centroid(vertices)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{}, c)

	d, ok := AverageDistance(c, vertices)
	require.True(t, ok)
	assert.InDelta(t, 2.0, d, 1e-6)
}

func TestCentroidEmpty(t *testing.T) {
	_, ok := Centroid(nil)
	assert.False(t, ok)
	_, ok = AverageDistance(math.Vec3{}, nil)
	assert.False(t, ok)
}

func TestComputeBounds(t *testing.T) {
	b, ok := ComputeBounds([]Vertex{vtx(1, -2, 3), vtx(-4, 5, 0), vtx(0, 0, 9)})
	require.True(t, ok)

	assert.Equal(t, math.Vec3{X: -4, Y: -2, Z: 0}, b.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 5, Z: 9}, b.Max)
	assert.Equal(t, math.Vec3{X: -1.5, Y: 1.5, Z: 4.5}, b.Center())
}

func TestFrame(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := Frame(Dataset{})
		assert.Zero(t, f.Distance)
	})

	t.Run("single point", func(t *testing.T) {
		f := Frame(Dataset{Points: PointSet{Vertices: []Vertex{vtx(2, 2, 2)}}})
		assert.Equal(t, math.Vec3{X: 2, Y: 2, Z: 2}, f.Target)
		assert.Zero(t, f.Distance)
	})

	t.Run("points and faces", func(t *testing.T) {
		ds := Dataset{
			Points: PointSet{Vertices: []Vertex{vtx(-2, 0, 0)}},
			Faces:  FaceSet{Vertices: []Vertex{vtx(2, 0, 0)}},
		}
		f := Frame(ds)
		assert.Equal(t, math.Vec3{}, f.Target)
		assert.InDelta(t, 2.0, f.Distance, 1e-6)
	})
}
