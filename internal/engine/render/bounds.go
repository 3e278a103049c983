package render

import (
	"fmt"

	"github.com/Faultbox/ennona/internal/engine/debug"
	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/geometry"
	"github.com/Faultbox/ennona/pkg/math"
)

var boundsColor = math.Vec3{X: 1, Y: 0.8, Z: 0.2}

// BoundsStage draws the axis-aligned box around the loaded geometry.
type BoundsStage struct {
	dev     gpu.Device
	uniform gpu.Buffer

	draw    gpu.RenderPipeline
	lines   gpu.Buffer
	visible bool // geometry loaded
	Enabled bool
}

// NewBoundsStage creates the line pipeline.
func NewBoundsStage(dev gpu.Device, uniform gpu.Buffer) (*BoundsStage, error) {
	draw, err := dev.CreateRenderPipeline(gpu.RenderPipelineDesc{
		Label:     "bounds",
		Vertex:    mustShader("geometry.vert"),
		Fragment:  mustShader("color.frag"),
		Layout:    geometryLayout(),
		Topology:  gpu.LineList,
		DepthTest: true,
	})
	if err != nil {
		return nil, err
	}
	return &BoundsStage{dev: dev, uniform: uniform, draw: draw}, nil
}

// prepare builds the box for vertices without touching the one in use. An
// empty set hides the box.
func (s *BoundsStage) prepare(vertices []geometry.Vertex) (*staged, error) {
	st := &staged{dev: s.dev}
	b, ok := geometry.ComputeBounds(vertices)
	if !ok {
		st.apply = func() {
			s.Destroy()
			s.visible = false
		}
		return st, nil
	}

	edges := debug.BoxEdges(b.Min, b.Max, 0)
	lines := make([]geometry.Vertex, len(edges))
	for i, p := range edges {
		lines[i] = geometry.Vertex{Position: p, Color: boundsColor}
	}

	buf, err := st.create(gpu.BufferDesc{Label: "bounds lines", Usage: gpu.BufferVertex, Contents: EncodeVertices(lines)})
	if err != nil {
		return nil, fmt.Errorf("bounds buffer: %w", err)
	}
	st.apply = func() {
		s.Destroy()
		s.lines = buf
		s.visible = true
	}
	return st, nil
}

// Render records the line draw when enabled.
func (s *BoundsStage) Render(pass *gpu.RenderPass) {
	if !s.Enabled || !s.visible {
		return
	}
	pass.SetPipeline(s.draw)
	pass.BindUniform(0, s.uniform)
	pass.SetVertexBuffer(0, s.lines)
	pass.Draw(debug.BoxEdgeVertexCount, 0)
}

// Destroy releases the line buffer.
func (s *BoundsStage) Destroy() {
	if s.lines != nil {
		s.dev.DestroyBuffer(s.lines)
		s.lines = nil
	}
}
