package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ennona/internal/config"
	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/engine/gpu/gputest"
	"github.com/Faultbox/ennona/internal/engine/input"
	"github.com/Faultbox/ennona/internal/engine/render"
	"github.com/Faultbox/ennona/internal/engine/ui2d"
	"github.com/Faultbox/ennona/pkg/math"
)

const frame = 16 * time.Millisecond

type fakeTexture struct{ w, h int }

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }

type imageDraw struct{ w, h float32 }

// fakeCanvas records what the panel paints.
type fakeCanvas struct {
	width, height int
	texts         []string
	images        []imageDraw
	ended         int
	uploadErr     error
}

func (c *fakeCanvas) ScreenSize() (int, int)                                { return c.width, c.height }
func (c *fakeCanvas) DrawRect(x, y, w, h float32, col ui2d.Color)           {}
func (c *fakeCanvas) DrawRectOutline(x, y, w, h, t float32, col ui2d.Color) {}
func (c *fakeCanvas) DrawText(x, y float32, text string, s float32, col ui2d.Color) {
	c.texts = append(c.texts, text)
}
func (c *fakeCanvas) MeasureText(text string, s float32) (float32, float32) {
	return float32(7 * len(text)), 13
}
func (c *fakeCanvas) DrawImage(x, y, w, h float32, tex ui2d.Texture) {
	c.images = append(c.images, imageDraw{w, h})
}
func (c *fakeCanvas) Begin() {
	c.texts = c.texts[:0]
	c.images = c.images[:0]
}
func (c *fakeCanvas) End()                     { c.ended++ }
func (c *fakeCanvas) Resize(width, height int) { c.width, c.height = width, height }
func (c *fakeCanvas) UploadImage(img image.Image) (ui2d.Texture, error) {
	if c.uploadErr != nil {
		return nil, c.uploadErr
	}
	b := img.Bounds()
	return &fakeTexture{b.Dx(), b.Dy()}, nil
}

func (c *fakeCanvas) drew(substr string) bool {
	for _, t := range c.texts {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// fakeWindow hands out queued events one frame at a time.
type fakeWindow struct {
	width, height int
	frames        [][]input.Event
	title         string
	captured      bool
	warps         int
}

func (w *fakeWindow) PollEvents(in *input.Input) {
	in.Reset()
	if len(w.frames) == 0 {
		return
	}
	for _, e := range w.frames[0] {
		in.Push(e)
	}
	w.frames = w.frames[1:]
}
func (w *fakeWindow) DrawableSize() (int, int) { return w.width, w.height }
func (w *fakeWindow) SetTitle(title string)    { w.title = title }
func (w *fakeWindow) SetMouseCaptured(on bool) { w.captured = on }
func (w *fakeWindow) WarpMouseCenter() (int, int) {
	w.warps++
	return w.width / 2, w.height / 2
}

func (w *fakeWindow) queue(events ...input.Event) {
	w.frames = append(w.frames, events)
}

type fakeSnapshot struct{}

func (fakeSnapshot) Snapshot() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	return img, nil
}

type fixture struct {
	app     *App
	win     *fakeWindow
	canvas  *fakeCanvas
	dev     *gputest.Device
	backend *gputest.Surface
	r       *render.FrameRenderer
	cfg     *config.Config
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Screenshots.Dir = t.TempDir()
	for _, opt := range opts {
		opt(cfg)
	}

	dev := gputest.NewDevice()
	backend := &gputest.Surface{}
	surface, err := gpu.NewSurface(backend, gpu.SurfaceConfig{Width: 800, Height: 600})
	require.NoError(t, err)
	r, err := render.New(dev, surface, render.Options{PointMode: render.PointsBillboard})
	require.NoError(t, err)

	win := &fakeWindow{width: 800, height: 600}
	canvas := &fakeCanvas{}
	app, err := NewApp(context.Background(), Options{
		Config:   cfg,
		Window:   win,
		Renderer: r,
		Canvas:   canvas,
		Snapshot: fakeSnapshot{},
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return &fixture{app: app, win: win, canvas: canvas, dev: dev, backend: backend, r: r, cfg: cfg}
}

func (f *fixture) step(t *testing.T, events ...input.Event) {
	t.Helper()
	f.win.queue(events...)
	require.NoError(t, f.app.Step(frame))
}

func keyDown(k input.Key) input.Event { return input.Event{Type: input.EventKeyDown, Key: k} }
func keyUp(k input.Key) input.Event   { return input.Event{Type: input.EventKeyUp, Key: k} }
func drop(path string) input.Event    { return input.Event{Type: input.EventDropFile, Path: path} }

func writePLY(t *testing.T, name string, points [][3]float32) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ply\nformat ascii 1.0\n")
	b.WriteString("element vertex " + strconv.Itoa(len(points)) + "\n")
	b.WriteString("property float x\nproperty float y\nproperty float z\nend_header\n")
	for _, p := range points {
		fmt.Fprintf(&b, "%g %g %g\n", p[0], p[1], p[2])
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writePNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	return path
}

var square = [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {2, 2, 0}}

func TestDropLoadsGeometryAndFramesCamera(t *testing.T) {
	f := newFixture(t)
	path := writePLY(t, "square.ply", square)

	f.step(t, drop(path))

	points, triangles := f.r.Stats()
	assert.Equal(t, 4, points)
	assert.Equal(t, 0, triangles)
	assert.Equal(t, path, f.app.File())
	assert.Contains(t, f.win.title, "square.ply")

	scale := f.app.Scale()
	assert.InDelta(t, 1.41421, scale, 1e-4)
	assert.InDelta(t, scale*SpeedPerScale, f.app.Controller().Speed, 1e-4)

	cam := f.app.Camera()
	assert.InDelta(t, scale, cam.Position().Distance(math.Vec3{X: 1, Y: 1}), 1e-3)
	assert.InDelta(t, scale/100, cam.ZNear, 1e-5)
	assert.InDelta(t, scale*100, cam.ZFar, 1e-2)
}

func TestReloadsFileOpenedByRelativePath(t *testing.T) {
	path := writePLY(t, "a.ply", square[:2])
	t.Chdir(filepath.Dir(path))

	f := newFixture(t, func(cfg *config.Config) {
		cfg.Watch.Enabled = true
		cfg.Watch.Debounce = 20 * time.Millisecond
	})
	f.step(t, drop("a.ply"))
	points, _ := f.r.Stats()
	require.Equal(t, 2, points)
	assert.True(t, filepath.IsAbs(f.app.File()))

	rewritten := writePLY(t, "a.ply", square)
	data, err := os.ReadFile(rewritten)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile("a.ply", data, 0o644))

	deadline := time.Now().Add(3 * time.Second)
	for points != 4 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		f.step(t)
		points, _ = f.r.Stats()
	}
	assert.Equal(t, 4, points, "file change should reload the dataset")
}

func TestLastImportWins(t *testing.T) {
	f := newFixture(t)
	first := writePLY(t, "first.ply", square)
	second := writePLY(t, "second.ply", square[:2])

	f.step(t, drop(first), drop(second))

	points, _ := f.r.Stats()
	assert.Equal(t, 2, points)
	assert.Equal(t, second, f.app.File())
}

func TestImportErrorKeepsScene(t *testing.T) {
	f := newFixture(t)
	path := writePLY(t, "square.ply", square)
	f.step(t, drop(path))

	f.step(t, drop(filepath.Join(t.TempDir(), "notes.txt")))

	points, _ := f.r.Stats()
	assert.Equal(t, 4, points)
	assert.Equal(t, path, f.app.File())
	assert.True(t, f.canvas.drew("unknown file extension"), "status should show the error")
}

func TestImageImportRegistersTexture(t *testing.T) {
	f := newFixture(t)
	f.step(t, drop(writePNG(t, "a.png", 64, 32)))

	ui := f.app.Interface()
	require.Equal(t, 1, ui.ImageCount())
	w, h := ui.Image(0).Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	assert.Empty(t, f.app.File(), "images do not replace geometry")
}

func TestKeyToggles(t *testing.T) {
	f := newFixture(t)

	f.step(t, keyDown(input.KeyB), keyUp(input.KeyB))
	assert.True(t, f.r.ShowBounds())

	f.step(t, keyDown(input.KeyF))
	assert.True(t, f.r.Wireframe())

	f.step(t, input.Event{Type: input.EventKeyDown, Key: input.KeyF, Repeat: true})
	assert.True(t, f.r.Wireframe(), "auto-repeat must not toggle")

	f.step(t, keyDown(input.KeyH))
	assert.False(t, f.app.Interface().Visible)

	assert.False(t, f.app.Quit())
	f.step(t, keyDown(input.KeyEscape))
	assert.True(t, f.app.Quit())
}

func TestHeldKeyMovesCamera(t *testing.T) {
	f := newFixture(t)
	before := f.app.Camera().Position()

	f.win.queue(keyDown(input.KeyW))
	require.NoError(t, f.app.Step(time.Second))
	moved := f.app.Camera().Position().Distance(before)
	assert.InDelta(t, f.cfg.Camera.Speed, moved, 1e-4)

	f.win.queue(keyUp(input.KeyW))
	require.NoError(t, f.app.Step(time.Second))
	after := f.app.Camera().Position()

	require.NoError(t, f.app.Step(time.Second))
	assert.InDelta(t, 0, f.app.Camera().Position().Distance(after), 1e-5)
}

func TestTabTogglesMouseCapture(t *testing.T) {
	f := newFixture(t)

	f.step(t, keyDown(input.KeyTab))
	assert.True(t, f.app.Controller().Captured())
	assert.True(t, f.win.captured)
	assert.Equal(t, 1, f.win.warps)

	f.step(t, input.Event{Type: input.EventMouseMove, MouseX: 420, MouseY: 300})
	assert.Equal(t, 2, f.win.warps, "motion while captured recenters the cursor")

	f.step(t, input.Event{Type: input.EventFocusLost})
	assert.False(t, f.app.Controller().Captured())
	assert.False(t, f.win.captured)
}

func TestResizeUpdatesAspectAndSurface(t *testing.T) {
	f := newFixture(t)
	fovy := f.app.Camera().FovY

	f.step(t, input.Event{Type: input.EventWindowResize, Width: 1000, Height: 500})

	assert.InDelta(t, 2, f.app.Camera().Aspect, 1e-6)
	assert.Equal(t, fovy, f.app.Camera().FovY)
	last := f.backend.Configs[len(f.backend.Configs)-1]
	assert.Equal(t, 1000, last.Width)
	assert.Equal(t, 500, last.Height)
}

func TestMinimizedSkipsFrame(t *testing.T) {
	f := newFixture(t)
	presented := len(f.backend.Presented)

	f.step(t, input.Event{Type: input.EventWindowResize, Width: 0, Height: 0})

	assert.Equal(t, presented, len(f.backend.Presented))
}

func TestScreenshotWritesPNG(t *testing.T) {
	f := newFixture(t)
	f.step(t, keyDown(input.KeyF12))

	entries, err := os.ReadDir(f.cfg.Screenshots.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))
}

func TestOutOfMemoryIsFatal(t *testing.T) {
	f := newFixture(t)
	f.dev.SubmitErr = gpu.ErrOutOfMemory

	f.win.queue()
	err := f.app.Step(frame)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gpu.ErrOutOfMemory))
}

func TestPanelShowsCountsWithSeparators(t *testing.T) {
	c := &fakeCanvas{}
	ui := NewInterface(c)
	speed, sens := float32(1), float32(0.001)

	ui.Build(PanelState{Speed: &speed, Sensitivity: &sens, Scale: 1, Width: 800, Height: 600, Points: 1234567})
	ui.DrawOverlay(800, 600)

	assert.True(t, c.drew("Points: 1,234,567"), "texts: %v", c.texts)
	assert.True(t, c.drew("Window width: 800"))
	assert.Equal(t, 1, c.ended)
}

func TestPanelClampsSlidersToRanges(t *testing.T) {
	ui := NewInterface(&fakeCanvas{})
	speed, sens := float32(1000), float32(0)

	ui.Build(PanelState{Speed: &speed, Sensitivity: &sens, Scale: 2, Width: 800, Height: 600})

	assert.Equal(t, SpeedRange*2, speed)
	assert.Equal(t, SensitivityMin, sens)
}

func TestHiddenPanelDrawsNothing(t *testing.T) {
	c := &fakeCanvas{}
	ui := NewInterface(c)
	ui.Visible = false

	ui.Build(PanelState{Width: 800, Height: 600, Points: 5})
	assert.Empty(t, c.texts)
	assert.False(t, ui.WantsMouse())
}

func TestImageRegistryClampsIndex(t *testing.T) {
	ui := NewInterface(&fakeCanvas{})
	for i := 0; i < 3; i++ {
		idx, err := ui.AddImage(image.NewRGBA(image.Rect(0, 0, 10+i, 10)))
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	ui.SetImageIndex(10)
	assert.Equal(t, 2, ui.ImageIndex())
	ui.SetImageIndex(-4)
	assert.Equal(t, 0, ui.ImageIndex())
	assert.Nil(t, ui.Image(3))
}

func TestImageUploadFailure(t *testing.T) {
	ui := NewInterface(&fakeCanvas{uploadErr: errors.New("no memory")})
	_, err := ui.AddImage(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.Error(t, err)
	assert.Equal(t, 0, ui.ImageCount())
}

func TestImagePreviewLimitedWidth(t *testing.T) {
	c := &fakeCanvas{}
	ui := NewInterface(c)
	_, err := ui.AddImage(image.NewRGBA(image.Rect(0, 0, 720, 360)))
	require.NoError(t, err)

	ui.Build(PanelState{Width: 1280, Height: 1024})

	require.Len(t, c.images, 1)
	assert.Equal(t, float32(ImageMaxWidth), c.images[0].w)
	assert.Equal(t, float32(ImageMaxWidth/2), c.images[0].h)
}

func TestPickAsync(t *testing.T) {
	out := make(chan string, 1)
	done := make(chan struct{}, 1)

	pickAsync(func() (string, error) { return "/data/scan.ply", nil }, out, done, func(err error) {
		t.Errorf("unexpected failure: %v", err)
	})
	<-done
	assert.Equal(t, "/data/scan.ply", <-out)

	pickAsync(func() (string, error) { return "", ErrPickCancelled }, out, done, func(err error) {
		t.Errorf("cancel reported as failure: %v", err)
	})
	<-done
	assert.Empty(t, out)

	failed := make(chan error, 1)
	pickAsync(func() (string, error) { return "", errors.New("no display") }, out, done, func(err error) {
		failed <- err
	})
	<-done
	assert.EqualError(t, <-failed, "no display")
}
