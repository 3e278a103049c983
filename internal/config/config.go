// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Point rendering modes.
const (
	PointModeBillboard = "billboard" // compute-expanded triangles
	PointModePrimitive = "primitive" // GL point primitives
)

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Camera      CameraConfig     `yaml:"camera"`
	Points      PointsConfig     `yaml:"points"`
	View        ViewConfig       `yaml:"view"`
	Watch       WatchConfig      `yaml:"watch"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds the initial camera and controller parameters.
type CameraConfig struct {
	FovYDegrees float32 `yaml:"fovy_degrees"`
	Speed       float32 `yaml:"speed"`
	Sensitivity float32 `yaml:"sensitivity"`
}

// PointsConfig selects how points are rasterized.
type PointsConfig struct {
	Mode          string  `yaml:"mode"`
	PrimitiveSize float32 `yaml:"primitive_size"` // pixels, primitive mode only
}

// ViewConfig holds overlay toggles.
type ViewConfig struct {
	ShowBounds bool `yaml:"show_bounds"`
	ShowPanel  bool `yaml:"show_panel"`
	Wireframe  bool `yaml:"wireframe"` // faces drawn as outlines
}

// WatchConfig controls reloading of the loaded file when it changes on disk.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "⛅ Ennona",
			Width:  800,
			Height: 600,
			VSync:  true,
		},
		Camera: CameraConfig{
			FovYDegrees: 45,
			Speed:       0.5,
			Sensitivity: 0.000818123,
		},
		Points: PointsConfig{
			Mode:          PointModeBillboard,
			PrimitiveSize: 2,
		},
		View: ViewConfig{
			ShowPanel: true,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Screenshots: ScreenshotConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FovYDegrees <= 0 || c.Camera.FovYDegrees >= 180 {
		return fmt.Errorf("camera fovy must be in (0, 180), got %v", c.Camera.FovYDegrees)
	}
	if c.Camera.Speed <= 0 || c.Camera.Sensitivity <= 0 {
		return fmt.Errorf("camera speed and sensitivity must be positive")
	}
	switch c.Points.Mode {
	case PointModeBillboard, PointModePrimitive:
	default:
		return fmt.Errorf("unknown point mode %q", c.Points.Mode)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %v", c.Watch.Debounce)
	}
	return nil
}
