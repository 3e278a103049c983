// Package viewer runs the interactive loop: it turns window events into camera
// motion and imports, builds the settings panel, and renders each frame.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/config"
	"github.com/Faultbox/ennona/internal/engine/camera"
	"github.com/Faultbox/ennona/internal/engine/debug"
	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/engine/input"
	"github.com/Faultbox/ennona/internal/engine/render"
	"github.com/Faultbox/ennona/internal/geometry"
	"github.com/Faultbox/ennona/internal/importer"
	"github.com/Faultbox/ennona/internal/logger"
	"github.com/Faultbox/ennona/internal/watch"
	"github.com/Faultbox/ennona/pkg/math"
)

// SpeedPerScale sets the camera speed after a load, in scene scales per second.
const SpeedPerScale float32 = 5

// minimizedSleep throttles the loop while there is nothing to draw.
const minimizedSleep = 50 * time.Millisecond

// Window is the platform window the app drives. *window.Window implements it.
type Window interface {
	PollEvents(in *input.Input)
	DrawableSize() (int, int)
	SetTitle(title string)
	SetMouseCaptured(on bool)
	WarpMouseCenter() (int, int)
}

// Snapshotter reads back the last rendered frame.
type Snapshotter interface {
	Snapshot() (*image.RGBA, error)
}

// Options wire an App to its collaborators.
type Options struct {
	Config   *config.Config
	Window   Window
	Renderer *render.FrameRenderer
	Canvas   Canvas
	// Snapshot enables F12 screenshots when set.
	Snapshot Snapshotter
	// Picker backs the panel's "Open file" button when set.
	Picker FilePicker
}

// App holds the viewer state between frames.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	win      Window
	renderer *render.FrameRenderer
	snap     Snapshotter
	pick     FilePicker
	ui       *Interface
	in       *input.Input
	shots    *debug.ScreenshotCapture
	watcher  *watch.Watcher

	cam  *camera.Camera
	ctrl *camera.Controller

	width, height int

	// Scene state
	dataset geometry.Dataset
	file    string
	scale   float32
	status  string

	// Import requests. Only the newest one pending at the start of a frame
	// is loaded.
	pending  string
	picked   chan string
	picking  bool
	pickDone chan struct{}

	screenshotRequested bool
	quit                bool

	now func() time.Time
}

// NewApp creates the app. When watching is enabled in the config the
// watcher lives until ctx is cancelled or Close is called.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil || opts.Window == nil || opts.Renderer == nil || opts.Canvas == nil {
		return nil, errors.New("viewer: config, window, renderer and canvas are required")
	}
	cfg := opts.Config

	a := &App{
		cfg:      cfg,
		log:      logger.Named("viewer"),
		win:      opts.Window,
		renderer: opts.Renderer,
		snap:     opts.Snapshot,
		pick:     opts.Picker,
		ui:       NewInterface(opts.Canvas),
		in:       input.New(),
		shots:    debug.NewScreenshotCapture(cfg.Screenshots.Dir, "ennona"),
		ctrl:     camera.NewController(cfg.Camera.Speed, cfg.Camera.Sensitivity),
		scale:    camera.DefaultFacingDistance,
		picked:   make(chan string, 1),
		pickDone: make(chan struct{}, 1),
		now:      time.Now,
	}
	a.ui.Visible = cfg.View.ShowPanel
	a.width, a.height = opts.Window.DrawableSize()
	a.cam = camera.New(aspectOf(a.width, a.height), a.fovY())

	if cfg.Watch.Enabled {
		w, err := watch.New(ctx, cfg.Watch.Debounce)
		if err != nil {
			a.log.Warn("live reload disabled", zap.Error(err))
		} else {
			a.watcher = w
		}
	}
	return a, nil
}

func (a *App) fovY() float32 {
	return math.Radians(a.cfg.Camera.FovYDegrees)
}

func aspectOf(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// Open queues path for import at the start of the next frame. A later call
// before that frame replaces it.
func (a *App) Open(path string) {
	a.pending = path
}

// Camera returns the current camera.
func (a *App) Camera() *camera.Camera { return a.cam }

// Controller returns the camera controller.
func (a *App) Controller() *camera.Controller { return a.ctrl }

// Interface returns the settings panel.
func (a *App) Interface() *Interface { return a.ui }

// File returns the path of the loaded geometry file.
func (a *App) File() string { return a.file }

// Scale returns the mean distance of the loaded geometry from its centroid.
func (a *App) Scale() float32 { return a.scale }

// Quit reports whether the app was asked to stop.
func (a *App) Quit() bool { return a.quit }

// Run steps frames until quit is requested, ctx is cancelled or a frame
// fails fatally.
func (a *App) Run(ctx context.Context) error {
	last := a.now()
	frames := 0
	fpsTimer := last

	a.log.Info("starting main loop")
	for !a.quit {
		if ctx.Err() != nil {
			return nil
		}
		now := a.now()
		dt := now.Sub(last)
		last = now

		if err := a.Step(dt); err != nil {
			return err
		}
		if a.width == 0 || a.height == 0 {
			time.Sleep(minimizedSleep)
		}

		frames++
		if now.Sub(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frames), zap.Duration("dt", dt))
			frames = 0
			fpsTimer = now
		}
	}
	return nil
}

// Step processes one frame: events, imports, camera update, panel and render.
func (a *App) Step(dt time.Duration) error {
	a.win.PollEvents(a.in)
	moved := false
	for _, e := range a.in.Events() {
		if err := a.handleEvent(e); err != nil {
			return err
		}
		if e.Type == input.EventMouseMove {
			moved = true
		}
	}
	if moved && a.ctrl.Captured() {
		a.recenter()
	}

	a.drainRequests()
	if a.pending != "" {
		path := a.pending
		a.pending = ""
		if err := a.load(path); err != nil {
			return err
		}
	}

	a.ctrl.Update(a.cam, dt)

	act := a.ui.Build(a.panelState())
	a.applyActions(act)

	var overlay gpu.Overlay
	if a.ui.Visible {
		overlay = a.ui
	}
	if err := a.renderer.Render(a.cam, overlay); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if a.screenshotRequested {
		a.screenshotRequested = false
		a.screenshot()
	}
	return nil
}

func (a *App) handleEvent(e input.Event) error {
	a.ui.HandleEvent(e)

	switch e.Type {
	case input.EventQuit:
		a.quit = true

	case input.EventWindowResize:
		return a.resize(e.Width, e.Height)

	case input.EventFocusLost:
		a.ctrl.ReleaseAll()
		a.setCaptured(false)

	case input.EventKeyDown:
		if !e.Repeat {
			a.keyPressed(e.Key)
		}
		a.setHeld(e.Key, true)

	case input.EventKeyUp:
		a.setHeld(e.Key, false)

	case input.EventMouseMove:
		a.ctrl.ProcessCursor(float32(e.MouseX), float32(e.MouseY))

	case input.EventMouseDown:
		if e.Button == input.ButtonRight && !a.ui.WantsMouse() {
			a.setCaptured(!a.ctrl.Captured())
		}

	case input.EventMouseWheel:
		if a.ui.WantsMouse() {
			break
		}
		if e.Precise {
			a.ctrl.ProcessScrollPixels(e.Wheel)
		} else {
			a.ctrl.ProcessScrollLines(e.Wheel)
		}

	case input.EventDropFile:
		a.log.Info("file dropped", zap.String("path", e.Path))
		a.Open(e.Path)
	}
	return nil
}

var heldKeys = map[input.Key]camera.Action{
	input.KeySpace:  camera.ActionUp,
	input.KeyLShift: camera.ActionDown,
	input.KeyW:      camera.ActionForward,
	input.KeyUp:     camera.ActionForward,
	input.KeyS:      camera.ActionBackward,
	input.KeyDown:   camera.ActionBackward,
	input.KeyA:      camera.ActionLeft,
	input.KeyLeft:   camera.ActionLeft,
	input.KeyD:      camera.ActionRight,
	input.KeyRight:  camera.ActionRight,
	input.KeyQ:      camera.ActionTurnLeft,
	input.KeyE:      camera.ActionTurnRight,
}

func (a *App) setHeld(k input.Key, held bool) {
	if action, ok := heldKeys[k]; ok {
		a.ctrl.SetAction(action, held)
	}
}

func (a *App) keyPressed(k input.Key) {
	switch k {
	case input.KeyEscape:
		a.quit = true
	case input.KeyTab:
		a.setCaptured(!a.ctrl.Captured())
	case input.KeyR:
		a.resetView()
	case input.KeyB:
		a.renderer.SetShowBounds(!a.renderer.ShowBounds())
	case input.KeyF:
		a.renderer.SetWireframe(!a.renderer.Wireframe())
	case input.KeyH:
		a.ui.Visible = !a.ui.Visible
	case input.KeyF12:
		a.screenshotRequested = true
	}
}

func (a *App) setCaptured(on bool) {
	if a.ctrl.Captured() == on {
		return
	}
	a.ctrl.SetCaptured(on)
	a.win.SetMouseCaptured(on)
	if on {
		a.recenter()
	}
	a.log.Debug("mouse look", zap.Bool("captured", on))
}

func (a *App) recenter() {
	x, y := a.win.WarpMouseCenter()
	a.ctrl.Recentered(float32(x), float32(y))
}

func (a *App) resize(width, height int) error {
	a.width, a.height = width, height
	if err := a.renderer.Resize(width, height); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if width > 0 && height > 0 {
		a.cam.Resize(aspectOf(width, height))
	}
	return nil
}

// drainRequests collects paths from the file dialog and the watcher without
// blocking.
func (a *App) drainRequests() {
	for {
		select {
		case path := <-a.picked:
			a.Open(path)
		case <-a.pickDone:
			a.picking = false
		case path := <-a.changes():
			if filepath.Clean(path) == a.file {
				a.log.Info("file changed, reloading", zap.String("path", path))
				a.Open(path)
			}
		default:
			return
		}
	}
}

// changes returns the watcher channel, or nil so the select never picks it.
func (a *App) changes() <-chan string {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Changes()
}

// load imports path. Import failures are logged and leave the scene as it
// was; only GPU memory exhaustion is returned.
func (a *App) load(path string) error {
	res, err := importer.File(path)
	if err != nil {
		a.fail("import failed", path, err)
		return nil
	}

	switch r := res.(type) {
	case *importer.GeometryImport:
		if err := a.renderer.Import(r.Dataset); err != nil {
			if errors.Is(err, gpu.ErrOutOfMemory) {
				return fmt.Errorf("import %s: %w", path, err)
			}
			a.fail("upload failed", path, err)
			return nil
		}
		a.showDataset(r)

	case *importer.ImageImport:
		idx, err := a.ui.AddImage(r.Image)
		if err != nil {
			a.fail("image upload failed", path, err)
			return nil
		}
		b := r.Image.Bounds()
		a.log.Info("image loaded",
			zap.String("path", path),
			zap.String("format", r.Format),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
			zap.Int("index", idx),
		)
		a.status = ""
	}
	return nil
}

func (a *App) fail(msg, path string, err error) {
	a.log.Error(msg, zap.String("path", path), zap.Error(err))
	a.status = err.Error()
}

func (a *App) showDataset(r *importer.GeometryImport) {
	a.dataset = r.Dataset
	// the watcher reports absolute paths
	a.file = r.Path
	if abs, err := filepath.Abs(r.Path); err == nil {
		a.file = abs
	}
	a.status = ""
	a.resetView()

	a.win.SetTitle(fmt.Sprintf("%s - %s", a.cfg.Window.Title, filepath.Base(r.Path)))
	if a.watcher != nil {
		if err := a.watcher.Watch(a.file); err != nil {
			a.log.Warn("cannot watch file", zap.String("path", a.file), zap.Error(err))
		}
	}

	points, triangles := a.renderer.Stats()
	a.log.Info("geometry loaded",
		zap.String("path", r.Path),
		zap.Int("points", points),
		zap.Int("triangles", triangles),
		zap.Float32("scale", a.scale),
	)
	if len(r.Ignored) > 0 {
		a.log.Warn("ignored PLY properties", zap.Strings("properties", r.Ignored))
	}
}

// resetView recreates the camera facing the dataset centroid from its mean
// point distance and scales the speed to match.
func (a *App) resetView() {
	f := geometry.Frame(a.dataset)
	a.scale = f.Distance
	if a.scale <= 0 {
		a.scale = camera.DefaultFacingDistance
	}
	a.cam = camera.New(aspectOf(a.width, a.height), a.fovY())
	a.cam.SetFacing(f.Target, a.scale)
	a.ctrl.Speed = a.scale * SpeedPerScale
}

func (a *App) panelState() PanelState {
	points, triangles := a.renderer.Stats()
	bounds := a.renderer.ShowBounds()
	wire := a.renderer.Wireframe()
	return PanelState{
		Speed:       &a.ctrl.Speed,
		Sensitivity: &a.ctrl.Sensitivity,
		Scale:       a.scale,
		Width:       a.width,
		Height:      a.height,
		Points:      points,
		Triangles:   triangles,
		PointMode:   a.renderer.PointMode().String(),
		File:        a.file,
		Status:      a.status,
		ShowBounds:  &bounds,
		Wireframe:   &wire,
	}
}

func (a *App) applyActions(act PanelActions) {
	if act.BoundsChanged {
		a.renderer.SetShowBounds(!a.renderer.ShowBounds())
	}
	if act.WireframeChanged {
		a.renderer.SetWireframe(!a.renderer.Wireframe())
	}
	if act.OpenFile && a.pick != nil && !a.picking {
		a.picking = true
		pickAsync(a.pick, a.picked, a.pickDone, func(err error) {
			a.log.Error("file dialog failed", zap.Error(err))
		})
	}
}

func (a *App) screenshot() {
	if a.snap == nil {
		return
	}
	img, err := a.snap.Snapshot()
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.shots.Capture(img)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.status = "Saved " + path
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close stops background work. The renderer and window belong to the caller.
func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing watcher", zap.Error(err))
		}
	}
}
