// Package render draws the loaded point and face sets. A FrameRenderer owns
// the shared uniform buffer and one stage per kind of geometry; each stage
// owns its own pipelines and buffers.
package render

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/engine/camera"
	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/geometry"
	"github.com/Faultbox/ennona/internal/logger"
)

// Options configure a FrameRenderer.
type Options struct {
	PointMode  PointMode
	PointSize  float32 // primitive mode diameter in pixels
	ShowBounds bool
	Wireframe  bool
}

// FrameRenderer records and submits one frame at a time.
type FrameRenderer struct {
	dev     gpu.Device
	surface *gpu.Surface
	opts    Options
	log     *zap.Logger

	uniform gpu.Buffer
	points  *PointStage
	faces   *FaceStage
	bounds  *BoundsStage
}

// New creates the uniform buffer and the stages.
func New(dev gpu.Device, surface *gpu.Surface, opts Options) (*FrameRenderer, error) {
	r := &FrameRenderer{
		dev:     dev,
		surface: surface,
		opts:    opts,
		log:     logger.Named("render"),
	}

	var err error
	r.uniform, err = dev.CreateBuffer(gpu.BufferDesc{
		Label: "frame uniforms",
		Usage: gpu.BufferUniform | gpu.BufferCopyDst,
		Size:  UniformSize,
	})
	if err != nil {
		return nil, fmt.Errorf("uniform buffer: %w", err)
	}
	if r.points, err = NewPointStage(dev, r.uniform, opts.PointMode, r.log); err != nil {
		return nil, fmt.Errorf("point stage: %w", err)
	}
	if r.faces, err = NewFaceStage(dev, r.uniform, r.log); err != nil {
		return nil, fmt.Errorf("face stage: %w", err)
	}
	if r.bounds, err = NewBoundsStage(dev, r.uniform); err != nil {
		return nil, fmt.Errorf("bounds stage: %w", err)
	}
	r.faces.SetWireframe(opts.Wireframe)
	r.bounds.Enabled = opts.ShowBounds

	r.log.Info("renderer ready", zap.Stringer("point_mode", r.points.Mode()))
	return r, nil
}

// Import replaces every stage's geometry. It must be called between frames.
// All new buffers are created before any stage switches over, so a failed
// import leaves the previous geometry in place.
func (r *FrameRenderer) Import(d geometry.Dataset) error {
	steps := []struct {
		name  string
		stage func() (*staged, error)
	}{
		{"points", func() (*staged, error) { return r.points.prepare(d.Points.Vertices) }},
		{"faces", func() (*staged, error) { return r.faces.prepare(d.Faces) }},
		{"bounds", func() (*staged, error) { return r.bounds.prepare(d.AllVertices()) }},
	}

	ready := make([]*staged, 0, len(steps))
	for _, step := range steps {
		st, err := step.stage()
		if err != nil {
			for _, s := range ready {
				s.discard()
			}
			return fmt.Errorf("import %s: %w", step.name, err)
		}
		ready = append(ready, st)
	}
	for _, st := range ready {
		st.apply()
	}
	return nil
}

// Stats returns the number of points and triangles on the GPU.
func (r *FrameRenderer) Stats() (points, triangles int) {
	return r.points.Count(), r.faces.Triangles()
}

// PointMode returns the effective point mode.
func (r *FrameRenderer) PointMode() PointMode { return r.points.Mode() }

// SetShowBounds toggles the bounding box.
func (r *FrameRenderer) SetShowBounds(on bool) { r.bounds.Enabled = on }

// ShowBounds reports whether the bounding box is drawn.
func (r *FrameRenderer) ShowBounds() bool { return r.bounds.Enabled }

// SetWireframe toggles outlined faces.
func (r *FrameRenderer) SetWireframe(on bool) { r.faces.SetWireframe(on) }

// Wireframe reports whether faces are outlined.
func (r *FrameRenderer) Wireframe() bool { return r.faces.Wireframe() }

// Resize reconfigures the surface when the size changed.
func (r *FrameRenderer) Resize(width, height int) error {
	changed, err := r.surface.Resize(width, height)
	if changed {
		r.log.Debug("surface resized", zap.Int("width", width), zap.Int("height", height))
	}
	return err
}

// Render draws one frame: compute expansion, scene pass, overlay pass,
// submit and present. A nil overlay skips the overlay pass.
//
// Lost or outdated surfaces are reconfigured and the acquire retried once.
// Timeouts skip the frame. Out-of-memory is returned to the caller as fatal.
func (r *FrameRenderer) Render(cam *camera.Camera, overlay gpu.Overlay) error {
	frame, err := r.acquire()
	if err != nil {
		if errors.Is(err, gpu.ErrTimeout) {
			r.log.Debug("frame skipped", zap.Error(err))
			return nil
		}
		return err
	}

	// after acquire, since recovery may have picked up a new size
	cfg := r.surface.Config()
	u := NewUniforms(cam.BuildViewProjection(), cfg.Width, cfg.Height, r.opts.PointSize)
	if err := r.dev.WriteBuffer(r.uniform, 0, u.Bytes()); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}

	if err := r.dev.Submit(r.record(frame, overlay)); err != nil {
		return r.classify("submit", err)
	}
	if err := r.surface.Present(frame); err != nil {
		return r.classify("present", err)
	}
	return nil
}

func (r *FrameRenderer) record(frame gpu.Frame, overlay gpu.Overlay) *gpu.CommandBuffer {
	enc := gpu.NewEncoder("frame")

	if r.points.NeedsCompute() {
		cp := enc.BeginComputePass("point expansion")
		r.points.Compute(cp)
		cp.End()
		enc.Barrier(gpu.BarrierVertexAttrib | gpu.BarrierStorage)
	}

	rp := enc.BeginRenderPass(gpu.BeginRenderPass{
		Label:    "scene",
		Frame:    frame,
		Load:     gpu.LoadClear,
		Clear:    gpu.Black,
		UseDepth: true,
	})
	r.points.Render(rp)
	r.faces.Render(rp)
	r.bounds.Render(rp)
	rp.End()

	if overlay != nil {
		op := enc.BeginRenderPass(gpu.BeginRenderPass{Label: "overlay", Frame: frame, Load: gpu.LoadPreserve})
		op.DrawOverlay(overlay)
		op.End()
	}
	return enc.Finish()
}

func (r *FrameRenderer) acquire() (gpu.Frame, error) {
	frame, err := r.surface.Acquire()
	if err == nil || !recoverable(err) {
		return frame, err
	}

	r.log.Warn("surface needs reconfiguring", zap.Error(err))
	if err := r.surface.Recover(); err != nil {
		if recoverable(err) {
			return nil, fmt.Errorf("%w: %v", gpu.ErrTimeout, err)
		}
		return nil, err
	}
	frame, err = r.surface.Acquire()
	if err != nil && recoverable(err) {
		// give up on this frame; the next one starts over
		r.log.Warn("surface still unusable after reconfigure", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", gpu.ErrTimeout, err)
	}
	return frame, err
}

// classify turns recoverable surface errors after acquire into a dropped
// frame and passes everything else through.
func (r *FrameRenderer) classify(op string, err error) error {
	if recoverable(err) {
		r.log.Warn("frame dropped", zap.String("op", op), zap.Error(err))
		if rerr := r.surface.Recover(); rerr != nil && errors.Is(rerr, gpu.ErrOutOfMemory) {
			return rerr
		}
		return nil
	}
	if errors.Is(err, gpu.ErrTimeout) {
		r.log.Debug("frame skipped", zap.String("op", op), zap.Error(err))
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func recoverable(err error) bool {
	return errors.Is(err, gpu.ErrSurfaceLost) || errors.Is(err, gpu.ErrSurfaceOutdated)
}

// Destroy releases the GPU resources.
func (r *FrameRenderer) Destroy() {
	r.points.Destroy()
	r.faces.Destroy()
	r.bounds.Destroy()
	r.dev.DestroyBuffer(r.uniform)
}
