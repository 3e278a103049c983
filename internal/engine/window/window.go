// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/engine/input"
	"github.com/Faultbox/ennona/internal/logger"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps SDL2 window and OpenGL context.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

// New creates a new window with an OpenGL 4.3 core context.
// It must be called from the locked main thread.
func New(cfg Config) (*Window, error) {
	w := &Window{
		config: cfg,
		log:    logger.Named("window"),
	}

	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Compute shaders and storage buffers need 4.3.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	sdl.EventState(sdl.DROPFILE, sdl.ENABLE)

	dw, dh := w.DrawableSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drawable_width", dw),
		zap.Int("drawable_height", dh),
		zap.Bool("fullscreen", cfg.Fullscreen),
	)

	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// SwapBuffers swaps the OpenGL buffers.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// SetVSync enables or disables synchronizing swaps to the display.
func (w *Window) SetVSync(on bool) error {
	interval := 0
	if on {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		return fmt.Errorf("swap interval %d: %w", interval, err)
	}
	return nil
}

// Size returns the window size in screen coordinates.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// DrawableSize returns the size of the GL drawable in pixels. It differs from
// Size on high DPI displays and is zero while minimized.
func (w *Window) DrawableSize() (int, int) {
	if w.sdlWindow.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return 0, 0
	}
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// SetMouseCaptured hides the cursor and confines it to the window.
func (w *Window) SetMouseCaptured(on bool) {
	if on {
		sdl.ShowCursor(sdl.DISABLE)
	} else {
		sdl.ShowCursor(sdl.ENABLE)
	}
	w.sdlWindow.SetGrab(on)
}

// WarpMouseCenter moves the cursor to the window center and returns the new
// position in drawable pixels, the space PollEvents reports positions in.
func (w *Window) WarpMouseCenter() (int, int) {
	width, height := w.Size()
	x, y := width/2, height/2
	w.sdlWindow.WarpMouseInWindow(int32(x), int32(y))
	sx, sy := w.pixelScale()
	return int(float32(x) * sx), int(float32(y) * sy)
}

// PollEvents drains the SDL queue into in. Mouse positions are reported in
// drawable pixels.
func (w *Window) PollEvents(in *input.Input) {
	in.Reset()

	sx, sy := w.pixelScale()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED,
				sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
				dw, dh := w.DrawableSize()
				in.Push(input.Event{Type: input.EventWindowResize, Width: dw, Height: dh})
				sx, sy = w.pixelScale()
			case sdl.WINDOWEVENT_FOCUS_LOST:
				in.Push(input.Event{Type: input.EventFocusLost})
			case sdl.WINDOWEVENT_CLOSE:
				in.Push(input.Event{Type: input.EventQuit})
			}

		case *sdl.KeyboardEvent:
			key := translateKey(e.Keysym.Scancode)
			if key == input.KeyUnknown {
				continue
			}
			typ := input.EventKeyDown
			if e.Type == sdl.KEYUP {
				typ = input.EventKeyUp
			}
			in.Push(input.Event{Type: typ, Key: key, Repeat: e.Repeat != 0})

		case *sdl.MouseMotionEvent:
			in.Push(input.Event{
				Type:   input.EventMouseMove,
				MouseX: int(float32(e.X) * sx),
				MouseY: int(float32(e.Y) * sy),
				DeltaX: float32(e.XRel),
				DeltaY: float32(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			typ := input.EventMouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				typ = input.EventMouseUp
			}
			in.Push(input.Event{
				Type:   typ,
				MouseX: int(float32(e.X) * sx),
				MouseY: int(float32(e.Y) * sy),
				Button: e.Button,
			})

		case *sdl.MouseWheelEvent:
			lines := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				lines = -lines
			}
			in.Push(input.Event{Type: input.EventMouseWheel, Wheel: lines})

		case *sdl.DropEvent:
			if e.Type == sdl.DROPFILE && e.File != "" {
				in.Push(input.Event{Type: input.EventDropFile, Path: e.File})
			}
		}
	}
}

// pixelScale is the ratio of drawable pixels to window coordinates.
func (w *Window) pixelScale() (float32, float32) {
	ww, wh := w.Size()
	dw, dh := w.DrawableSize()
	if ww <= 0 || wh <= 0 || dw <= 0 || dh <= 0 {
		return 1, 1
	}
	return float32(dw) / float32(ww), float32(dh) / float32(wh)
}

var scancodes = map[sdl.Scancode]input.Key{
	sdl.SCANCODE_W:      input.KeyW,
	sdl.SCANCODE_A:      input.KeyA,
	sdl.SCANCODE_S:      input.KeyS,
	sdl.SCANCODE_D:      input.KeyD,
	sdl.SCANCODE_Q:      input.KeyQ,
	sdl.SCANCODE_E:      input.KeyE,
	sdl.SCANCODE_UP:     input.KeyUp,
	sdl.SCANCODE_DOWN:   input.KeyDown,
	sdl.SCANCODE_LEFT:   input.KeyLeft,
	sdl.SCANCODE_RIGHT:  input.KeyRight,
	sdl.SCANCODE_SPACE:  input.KeySpace,
	sdl.SCANCODE_LSHIFT: input.KeyLShift,
	sdl.SCANCODE_TAB:    input.KeyTab,
	sdl.SCANCODE_ESCAPE: input.KeyEscape,
	sdl.SCANCODE_B:      input.KeyB,
	sdl.SCANCODE_F:      input.KeyF,
	sdl.SCANCODE_H:      input.KeyH,
	sdl.SCANCODE_R:      input.KeyR,
	sdl.SCANCODE_F12:    input.KeyF12,
}

func translateKey(sc sdl.Scancode) input.Key {
	if k, ok := scancodes[sc]; ok {
		return k
	}
	return input.KeyUnknown
}
