package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ennona/pkg/math"
)

func TestBoxEdges(t *testing.T) {
	min := math.Vec3{X: -1, Y: 0, Z: 2}
	max := math.Vec3{X: 3, Y: 5, Z: 4}
	edges := BoxEdges(max, min, 0)
	require.Len(t, edges, BoxEdgeVertexCount)

	for i := 0; i < len(edges); i += 2 {
		a, b := edges[i], edges[i+1]
		differ := 0
		if a.X != b.X {
			differ++
		}
		if a.Y != b.Y {
			differ++
		}
		if a.Z != b.Z {
			differ++
		}
		assert.Equal(t, 1, differ, "edge %v-%v must be axis aligned", a, b)
		for _, p := range []math.Vec3{a, b} {
			assert.Contains(t, []float32{-1, 3}, p.X)
			assert.Contains(t, []float32{0, 5}, p.Y)
			assert.Contains(t, []float32{2, 4}, p.Z)
		}
	}
}

func TestBoxEdgesPadding(t *testing.T) {
	edges := BoxEdges(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, 0.5)
	lo, hi := edges[0], edges[0]
	for _, p := range edges {
		lo, hi = lo.Min(p), hi.Max(p)
	}
	assert.Equal(t, math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, lo)
	assert.Equal(t, math.Vec3{X: 1.5, Y: 1.5, Z: 1.5}, hi)
}

func TestScreenshotCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "ennona")
	sc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	name, err := sc.Capture(img)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ennona_2026-03-01_12-30-00.000.png"), name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, _, _, _ := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestScreenshotCaptureEmpty(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "x")
	_, err := sc.Capture(image.NewRGBA(image.Rectangle{}))
	assert.Error(t, err)
}
