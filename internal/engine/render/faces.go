package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/geometry"
)

// FaceStage owns the indexed triangle buffers.
type FaceStage struct {
	dev     gpu.Device
	uniform gpu.Buffer
	log     *zap.Logger

	fill      gpu.RenderPipeline
	outline   gpu.RenderPipeline
	wireframe bool

	vertices gpu.Buffer
	indices  gpu.Buffer
	count    int // indices
}

// NewFaceStage creates the face pipelines and dummy buffers.
func NewFaceStage(dev gpu.Device, uniform gpu.Buffer, log *zap.Logger) (*FaceStage, error) {
	s := &FaceStage{dev: dev, uniform: uniform, log: log}

	desc := gpu.RenderPipelineDesc{
		Label:     "faces",
		Vertex:    mustShader("geometry.vert"),
		Fragment:  mustShader("color.frag"),
		Layout:    geometryLayout(),
		Topology:  gpu.TriangleList,
		DepthTest: true,
	}
	var err error
	if s.fill, err = dev.CreateRenderPipeline(desc); err != nil {
		return nil, err
	}
	desc.Label = "faces wireframe"
	desc.PolygonMode = gpu.PolygonLine
	if s.outline, err = dev.CreateRenderPipeline(desc); err != nil {
		return nil, err
	}

	st, err := s.stage(dummyVertex, EncodeIndices([]uint32{0}), 0)
	if err != nil {
		return nil, err
	}
	st.apply()
	return s, nil
}

// SetWireframe selects outlined triangles.
func (s *FaceStage) SetWireframe(on bool) { s.wireframe = on }

// Wireframe reports whether triangles are outlined.
func (s *FaceStage) Wireframe() bool { return s.wireframe }

// Triangles returns the number of triangles imported.
func (s *FaceStage) Triangles() int { return s.count / 3 }

// prepare validates faces and creates their buffers without touching the
// ones in use.
func (s *FaceStage) prepare(faces geometry.FaceSet) (*staged, error) {
	if err := faces.Validate(); err != nil {
		return nil, err
	}
	if len(faces.Indices) == 0 {
		return s.stage(dummyVertex, EncodeIndices([]uint32{0}), 0)
	}
	st, err := s.stage(EncodeVertices(faces.Vertices), EncodeIndices(faces.Indices), len(faces.Indices))
	if err != nil {
		return nil, err
	}
	apply := st.apply
	st.apply = func() {
		apply()
		s.log.Debug("faces imported", zap.Int("vertices", len(faces.Vertices)), zap.Int("triangles", s.Triangles()))
	}
	return st, nil
}

func (s *FaceStage) stage(vertices, indices []byte, count int) (*staged, error) {
	st := &staged{dev: s.dev}
	vb, err := st.create(gpu.BufferDesc{Label: "face vertices", Usage: gpu.BufferVertex, Contents: vertices})
	if err != nil {
		return nil, fmt.Errorf("face vertex buffer: %w", err)
	}
	ib, err := st.create(gpu.BufferDesc{Label: "face indices", Usage: gpu.BufferIndex, Contents: indices})
	if err != nil {
		st.discard()
		return nil, fmt.Errorf("face index buffer: %w", err)
	}
	st.apply = func() {
		s.Destroy()
		s.vertices, s.indices, s.count = vb, ib, count
	}
	return st, nil
}

// Render records the indexed draw.
func (s *FaceStage) Render(pass *gpu.RenderPass) {
	if s.count == 0 {
		return
	}
	if s.wireframe {
		pass.SetPipeline(s.outline)
	} else {
		pass.SetPipeline(s.fill)
	}
	pass.BindUniform(0, s.uniform)
	pass.SetVertexBuffer(0, s.vertices)
	pass.SetIndexBuffer(s.indices)
	pass.DrawIndexed(uint32(s.count))
}

// Destroy releases the buffers.
func (s *FaceStage) Destroy() {
	if s.vertices != nil {
		s.dev.DestroyBuffer(s.vertices)
		s.vertices = nil
	}
	if s.indices != nil {
		s.dev.DestroyBuffer(s.indices)
		s.indices = nil
	}
}
