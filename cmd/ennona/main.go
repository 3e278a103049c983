// Package main is the entry point for the ennona point cloud viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/config"
	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/engine/gpu/glgpu"
	"github.com/Faultbox/ennona/internal/engine/render"
	"github.com/Faultbox/ennona/internal/engine/ui2d/glrender"
	"github.com/Faultbox/ennona/internal/engine/window"
	"github.com/Faultbox/ennona/internal/importer"
	"github.com/Faultbox/ennona/internal/logger"
	"github.com/Faultbox/ennona/internal/viewer"
)

func init() {
	// SDL and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Ennona ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.WriteConfig() {
		if path, err := cfg.Save(); err != nil {
			logger.Warn("failed to write config", zap.Error(err))
		} else {
			logger.Info("config written", zap.String("path", path))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, config.InputFile()); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(ctx context.Context, cfg *config.Config, file string) error {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// GL entry points are loaded here, after the context exists.
	dev, err := glgpu.NewDevice()
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	backend := glgpu.NewSurface(win)
	defer backend.Destroy()

	width, height := win.DrawableSize()
	surface, err := gpu.NewSurface(backend, gpu.SurfaceConfig{Width: width, Height: height, VSync: cfg.Window.VSync})
	if err != nil {
		return fmt.Errorf("failed to create surface: %w", err)
	}

	renderer, err := render.New(dev, surface, render.Options{
		PointMode:  pointMode(cfg.Points.Mode),
		PointSize:  cfg.Points.PrimitiveSize,
		ShowBounds: cfg.View.ShowBounds,
		Wireframe:  cfg.View.Wireframe,
	})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer renderer.Destroy()

	canvas, err := glrender.New(width, height)
	if err != nil {
		return fmt.Errorf("failed to create panel renderer: %w", err)
	}
	defer canvas.Close()

	app, err := viewer.NewApp(ctx, viewer.Options{
		Config:   cfg,
		Window:   win,
		Renderer: renderer,
		Canvas:   canvas,
		Snapshot: backend,
		Picker:   pickFile,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	if file != "" {
		app.Open(file)
	}
	return app.Run(ctx)
}

func pointMode(mode string) render.PointMode {
	if mode == config.PointModePrimitive {
		return render.PointsPrimitive
	}
	return render.PointsBillboard
}

// pickFile shows the native file dialog filtered to importable files.
func pickFile() (string, error) {
	exts := make([]string, 0, len(importer.Extensions()))
	for _, e := range importer.Extensions() {
		exts = append(exts, strings.TrimPrefix(e, "."))
	}
	path, err := dialog.File().
		Filter("Geometry and images", exts...).
		Filter("All Files", "*").
		Title("Open file").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", viewer.ErrPickCancelled
	}
	return path, err
}
