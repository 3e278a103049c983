package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/geometry"
)

// WorkGroupSize is the local size of the point expansion shader.
const WorkGroupSize = 64

// PointMode selects how points are rasterized.
type PointMode int

// Point modes.
const (
	// PointsBillboard expands each point into a screen-facing triangle on
	// the GPU before drawing.
	PointsBillboard PointMode = iota
	// PointsPrimitive draws GL point primitives.
	PointsPrimitive
)

func (m PointMode) String() string {
	if m == PointsPrimitive {
		return "primitive"
	}
	return "billboard"
}

// WorkGroups returns the number of expansion work groups for n points.
func WorkGroups(n int) uint32 {
	return uint32((n + WorkGroupSize - 1) / WorkGroupSize)
}

// PointStage owns the point buffers and the pipelines that draw them.
type PointStage struct {
	dev     gpu.Device
	uniform gpu.Buffer
	mode    PointMode
	log     *zap.Logger

	expand    gpu.ComputePipeline
	draw      gpu.RenderPipeline
	points    gpu.Buffer
	triangles gpu.Buffer // billboard mode only
	count     int
}

// NewPointStage creates the pipelines for mode with single dummy vertex
// buffers. Billboard mode falls back to primitives without compute support.
func NewPointStage(dev gpu.Device, uniform gpu.Buffer, mode PointMode, log *zap.Logger) (*PointStage, error) {
	if mode == PointsBillboard && !dev.Limits().Compute {
		log.Warn("compute unavailable, drawing points as primitives")
		mode = PointsPrimitive
	}
	s := &PointStage{dev: dev, uniform: uniform, mode: mode, log: log}

	var err error
	switch mode {
	case PointsBillboard:
		s.expand, err = dev.CreateComputePipeline(gpu.ComputePipelineDesc{
			Label:  "point expander",
			Source: mustShader("points.comp"),
		})
		if err != nil {
			return nil, err
		}
		s.draw, err = dev.CreateRenderPipeline(gpu.RenderPipelineDesc{
			Label:     "point billboards",
			Vertex:    mustShader("billboard.vert"),
			Fragment:  mustShader("color.frag"),
			Layout:    billboardLayout(),
			Topology:  gpu.TriangleList,
			DepthTest: true,
		})
	default:
		s.draw, err = dev.CreateRenderPipeline(gpu.RenderPipelineDesc{
			Label:            "point primitives",
			Vertex:           mustShader("geometry.vert"),
			Fragment:         mustShader("color.frag"),
			Layout:           geometryLayout(),
			Topology:         gpu.PointList,
			DepthTest:        true,
			ProgramPointSize: true,
		})
	}
	if err != nil {
		return nil, err
	}

	st, err := s.stage(dummyVertex, dummyVertex, 0)
	if err != nil {
		return nil, err
	}
	st.apply()
	return s, nil
}

// Mode returns the effective point mode.
func (s *PointStage) Mode() PointMode { return s.mode }

// Count returns the number of points imported.
func (s *PointStage) Count() int { return s.count }

// prepare creates the buffers for points without touching the ones in use.
// In billboard mode the triangle buffer is sized to 3·N vertices here, so
// the next dispatch never writes past it.
func (s *PointStage) prepare(points []geometry.Vertex) (*staged, error) {
	if len(points) == 0 {
		return s.stage(dummyVertex, dummyVertex, 0)
	}
	if lim := s.dev.Limits(); s.mode == PointsBillboard && lim.MaxWorkGroupCountX > 0 && int(WorkGroups(len(points))) > lim.MaxWorkGroupCountX {
		return nil, fmt.Errorf("import %d points: needs %d work groups, device allows %d", len(points), WorkGroups(len(points)), lim.MaxWorkGroupCountX)
	}

	data := EncodeVertices(points)
	var tri []byte
	if s.mode == PointsBillboard {
		tri = make([]byte, 3*len(data))
	}
	return s.stage(data, tri, len(points))
}

func (s *PointStage) stage(points, triangles []byte, count int) (*staged, error) {
	st := &staged{dev: s.dev}
	usage := gpu.BufferVertex | gpu.BufferStorage | gpu.BufferCopyDst
	pb, err := st.create(gpu.BufferDesc{Label: "point vertices", Usage: usage, Contents: points})
	if err != nil {
		return nil, fmt.Errorf("point buffer: %w", err)
	}

	var tb gpu.Buffer
	if s.mode == PointsBillboard {
		tb, err = st.create(gpu.BufferDesc{Label: "point triangles", Usage: gpu.BufferVertex | gpu.BufferStorage, Contents: triangles})
		if err != nil {
			st.discard()
			return nil, fmt.Errorf("triangle buffer: %w", err)
		}
	}

	st.apply = func() {
		s.release()
		s.points, s.triangles, s.count = pb, tb, count
		if count > 0 {
			s.log.Debug("points imported", zap.Int("points", count), zap.Stringer("mode", s.mode))
		}
	}
	return st, nil
}

func (s *PointStage) release() {
	if s.points != nil {
		s.dev.DestroyBuffer(s.points)
		s.points = nil
	}
	if s.triangles != nil {
		s.dev.DestroyBuffer(s.triangles)
		s.triangles = nil
	}
}

// NeedsCompute reports whether Compute records any work this frame.
func (s *PointStage) NeedsCompute() bool {
	return s.mode == PointsBillboard && s.count > 0
}

// Compute records the expansion dispatch.
func (s *PointStage) Compute(pass *gpu.ComputePass) {
	if !s.NeedsCompute() {
		return
	}
	pass.SetPipeline(s.expand)
	pass.BindUniform(0, s.uniform)
	pass.BindStorage(1, s.points)
	pass.BindStorage(2, s.triangles)
	pass.Dispatch(WorkGroups(s.count), 1, 1)
}

// Render records the point draw.
func (s *PointStage) Render(pass *gpu.RenderPass) {
	if s.count == 0 {
		return
	}
	pass.SetPipeline(s.draw)
	pass.BindUniform(0, s.uniform)
	if s.mode == PointsBillboard {
		pass.SetVertexBuffer(0, s.triangles)
		pass.Draw(uint32(3*s.count), 0)
		return
	}
	pass.SetVertexBuffer(0, s.points)
	pass.Draw(uint32(s.count), 0)
}

// Destroy releases the buffers.
func (s *PointStage) Destroy() {
	s.release()
}
