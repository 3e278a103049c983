package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWindowed    = flag.Bool("windowed", false, "Run in windowed mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
	flagNoVSync     = flag.Bool("no-vsync", false, "Disable vertical sync")
	flagPointMode   = flag.String("point-mode", "", "Point rendering mode: billboard or primitive")
	flagWatch       = flag.Bool("watch", false, "Reload the loaded file when it changes")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file")
	flagWriteConfig = flag.Bool("write-config", false, "Write the effective config to the user config dir")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// InputFile returns the optional positional file argument.
func InputFile() string {
	return flag.Arg(0)
}

// WriteConfig reports whether --write-config was given.
func WriteConfig() bool {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.View.ShowBounds = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagNoVSync {
		cfg.Window.VSync = false
	}
	if *flagPointMode != "" {
		cfg.Points.Mode = *flagPointMode
	}
	if *flagWatch {
		cfg.Watch.Enabled = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
