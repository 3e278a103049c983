// Package gpu defines the backend-neutral device, surface and command model
// used by the renderer. Work is recorded into a CommandBuffer by an Encoder and
// executed in order by a Device.
package gpu

import "errors"

// Surface and device errors. Backends wrap their native failures in these so
// the frame loop can classify them with errors.Is.
var (
	// ErrSurfaceLost means the presentable surface is gone and must be reconfigured.
	ErrSurfaceLost = errors.New("gpu: surface lost")
	// ErrSurfaceOutdated means the surface no longer matches the window.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")
	// ErrOutOfMemory is fatal.
	ErrOutOfMemory = errors.New("gpu: out of memory")
	// ErrTimeout means no frame was available this time; retry next frame.
	ErrTimeout = errors.New("gpu: timeout acquiring frame")
)

// BufferUsage is a bit set of the ways a buffer will be bound.
type BufferUsage uint32

// Buffer usages.
const (
	BufferVertex BufferUsage = 1 << iota
	BufferIndex
	BufferUniform
	BufferStorage
	BufferCopyDst
)

// BufferDesc describes a buffer. When Contents is set the buffer is created
// with that data and Size is ignored.
type BufferDesc struct {
	Label    string
	Usage    BufferUsage
	Size     int
	Contents []byte
}

// Buffer is a GPU buffer handle.
type Buffer interface {
	Label() string
	Size() int
}

// VertexFormat is the type of one vertex attribute.
type VertexFormat int

// Vertex formats.
const (
	Float32x2 VertexFormat = iota + 1
	Float32x3
	Float32x4
)

// Components returns the number of float components.
func (f VertexFormat) Components() int {
	switch f {
	case Float32x2:
		return 2
	case Float32x3:
		return 3
	case Float32x4:
		return 4
	default:
		return 0
	}
}

// VertexAttribute places one shader input within a vertex.
type VertexAttribute struct {
	Location int
	Format   VertexFormat
	Offset   int
}

// VertexLayout describes one interleaved vertex buffer.
type VertexLayout struct {
	Stride     int
	Attributes []VertexAttribute
}

// Topology is the primitive assembly mode.
type Topology int

// Topologies.
const (
	TriangleList Topology = iota
	LineList
	PointList
)

// PolygonMode selects filled or outlined triangles.
type PolygonMode int

// Polygon modes.
const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// RenderPipelineDesc describes a rasterization pipeline.
type RenderPipelineDesc struct {
	Label       string
	Vertex      string // shader source
	Fragment    string // shader source
	Layout      VertexLayout
	Topology    Topology
	PolygonMode PolygonMode
	DepthTest   bool
	// ProgramPointSize lets the vertex shader set the size of point primitives.
	ProgramPointSize bool
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	Label  string
	Source string
}

// RenderPipeline is a compiled rasterization pipeline.
type RenderPipeline interface {
	Label() string
}

// ComputePipeline is a compiled compute pipeline.
type ComputePipeline interface {
	Label() string
}

// Limits are queried once when the device is created.
type Limits struct {
	Compute               bool // compute and storage buffers available
	MaxWorkGroupCountX    int
	MaxStorageBufferBytes int
}

// Device creates resources and executes recorded commands in submission order.
type Device interface {
	CreateBuffer(desc BufferDesc) (Buffer, error)
	WriteBuffer(buf Buffer, offset int, data []byte) error
	DestroyBuffer(buf Buffer)
	CreateRenderPipeline(desc RenderPipelineDesc) (RenderPipeline, error)
	CreateComputePipeline(desc ComputePipelineDesc) (ComputePipeline, error)
	Submit(cmds *CommandBuffer) error
	Limits() Limits
}
