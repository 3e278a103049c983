package glgpu

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/engine/framebuffer"
	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/logger"
)

// Drawable is the window the surface presents to.
type Drawable interface {
	DrawableSize() (width, height int)
	SetVSync(on bool) error
	SwapBuffers()
}

// Frame is an acquired offscreen image.
type Frame struct {
	fb *framebuffer.Framebuffer
}

// Size implements gpu.Frame.
func (f *Frame) Size() (int, int) { return f.fb.Size() }

// Surface renders frames offscreen and blits them to the window on Present.
// It implements gpu.SurfaceBackend.
type Surface struct {
	win Drawable
	fb  *framebuffer.Framebuffer
	cfg gpu.SurfaceConfig
	log *zap.Logger
}

// NewSurface returns an unconfigured surface for win.
func NewSurface(win Drawable) *Surface {
	return &Surface{win: win, log: logger.Named("surface")}
}

// Configure implements gpu.SurfaceBackend.
func (s *Surface) Configure(cfg gpu.SurfaceConfig) error {
	if s.fb == nil {
		fb, err := framebuffer.New(cfg.Width, cfg.Height)
		if err != nil {
			return fmt.Errorf("%w: %v", gpu.ErrSurfaceLost, err)
		}
		s.fb = fb
	} else {
		s.fb.Resize(cfg.Width, cfg.Height)
	}
	if cfg.VSync != s.cfg.VSync || s.cfg.Width == 0 {
		if err := s.win.SetVSync(cfg.VSync); err != nil {
			s.log.Warn("vsync not applied", zap.Bool("vsync", cfg.VSync), zap.Error(err))
		}
	}
	s.cfg = cfg
	s.log.Debug("configured", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	return glError("configure surface")
}

// CurrentSize implements gpu.SizeReporter.
func (s *Surface) CurrentSize() (int, int) { return s.win.DrawableSize() }

// Acquire implements gpu.SurfaceBackend. The frame is outdated when the
// window's drawable size no longer matches the configuration.
func (s *Surface) Acquire() (gpu.Frame, error) {
	if s.fb == nil {
		return nil, gpu.ErrSurfaceLost
	}
	w, h := s.win.DrawableSize()
	if w == 0 || h == 0 {
		return nil, gpu.ErrTimeout
	}
	if w != s.cfg.Width || h != s.cfg.Height {
		return nil, fmt.Errorf("%w: drawable %dx%d, configured %dx%d", gpu.ErrSurfaceOutdated, w, h, s.cfg.Width, s.cfg.Height)
	}
	if !s.fb.Complete() {
		return nil, gpu.ErrSurfaceLost
	}
	return &Frame{fb: s.fb}, nil
}

// Present implements gpu.SurfaceBackend.
func (s *Surface) Present(f gpu.Frame) error {
	frame, ok := f.(*Frame)
	if !ok {
		return fmt.Errorf("present: foreign frame %T", f)
	}
	w, h := s.win.DrawableSize()
	frame.fb.BlitToDefault(w, h)
	s.win.SwapBuffers()
	return glError("present")
}

// Snapshot returns the last rendered frame.
func (s *Surface) Snapshot() (*image.RGBA, error) {
	if s.fb == nil {
		return nil, fmt.Errorf("snapshot: %w", gpu.ErrSurfaceLost)
	}
	return s.fb.ReadRGBA(), nil
}

// Destroy releases the offscreen target.
func (s *Surface) Destroy() {
	if s.fb != nil {
		s.fb.Destroy()
		s.fb = nil
	}
}
