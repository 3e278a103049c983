package gpu

import "fmt"

// SurfaceConfig is the presentable surface configuration.
type SurfaceConfig struct {
	Width  int
	Height int
	VSync  bool
}

// Frame is one acquired presentable image.
type Frame interface {
	Size() (width, height int)
}

// SurfaceBackend is implemented by the graphics backend.
type SurfaceBackend interface {
	Configure(cfg SurfaceConfig) error
	Acquire() (Frame, error)
	Present(f Frame) error
}

// SizeReporter is implemented by backends that know the current drawable
// size of the window they present to.
type SizeReporter interface {
	CurrentSize() (width, height int)
}

// Surface owns the surface configuration and reconfigures the backend when
// the window size changes.
type Surface struct {
	backend SurfaceBackend
	cfg     SurfaceConfig
}

// NewSurface configures backend with cfg.
func NewSurface(backend SurfaceBackend, cfg SurfaceConfig) (*Surface, error) {
	s := &Surface{backend: backend, cfg: cfg}
	if err := s.Reconfigure(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the current configuration.
func (s *Surface) Config() SurfaceConfig { return s.cfg }

// Resize updates the configured size. Repeating the current size is a no-op,
// so both resize and scale-change events may call it. A zero dimension
// (minimized window) is stored without reconfiguring.
func (s *Surface) Resize(width, height int) (bool, error) {
	if width < 0 || height < 0 {
		return false, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if width == s.cfg.Width && height == s.cfg.Height {
		return false, nil
	}
	s.cfg.Width, s.cfg.Height = width, height
	if width == 0 || height == 0 {
		return true, nil
	}
	return true, s.Reconfigure()
}

// Reconfigure reapplies the current configuration to the backend.
func (s *Surface) Reconfigure() error {
	if s.cfg.Width == 0 || s.cfg.Height == 0 {
		return nil
	}
	if err := s.backend.Configure(s.cfg); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", s.cfg.Width, s.cfg.Height, err)
	}
	return nil
}

// Recover reconfigures the backend after a lost or outdated frame. When the
// backend reports the window's current size the surface adopts it first, so
// recovery does not wait for the resize event.
func (s *Surface) Recover() error {
	if sr, ok := s.backend.(SizeReporter); ok {
		if w, h := sr.CurrentSize(); w >= 0 && h >= 0 {
			s.cfg.Width, s.cfg.Height = w, h
		}
	}
	return s.Reconfigure()
}

// Acquire returns the next frame. A minimized surface yields ErrTimeout.
func (s *Surface) Acquire() (Frame, error) {
	if s.cfg.Width == 0 || s.cfg.Height == 0 {
		return nil, ErrTimeout
	}
	return s.backend.Acquire()
}

// Present shows f.
func (s *Surface) Present(f Frame) error {
	return s.backend.Present(f)
}
