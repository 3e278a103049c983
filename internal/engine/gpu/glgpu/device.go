// Package glgpu implements the gpu device and surface on OpenGL 4.3 core.
// All calls must be made on the thread that owns the GL context.
package glgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/engine/shader"
	"github.com/Faultbox/ennona/internal/logger"
)

type buffer struct {
	id    uint32
	label string
	size  int
	usage gpu.BufferUsage
}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() int     { return b.size }

type renderPipeline struct {
	desc    gpu.RenderPipelineDesc
	program uint32
	vao     uint32
}

func (p *renderPipeline) Label() string { return p.desc.Label }

type computePipeline struct {
	label   string
	program uint32
}

func (p *computePipeline) Label() string { return p.label }

// Device is a gpu.Device backed by the current GL context.
type Device struct {
	limits gpu.Limits
	log    *zap.Logger

	// pipeline bound by the last SetRenderPipeline, for vertex strides
	current *renderPipeline
}

// NewDevice loads GL entry points and queries the device limits once.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}

	d := &Device{log: logger.Named("gpu")}

	var groups, ssbo int32
	gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, 0, &groups)
	gl.GetIntegerv(gl.MAX_SHADER_STORAGE_BLOCK_SIZE, &ssbo)
	d.limits = gpu.Limits{
		Compute:               groups > 0 && ssbo > 0,
		MaxWorkGroupCountX:    int(groups),
		MaxStorageBufferBytes: int(ssbo),
	}

	d.log.Info("device ready",
		zap.String("vendor", gl.GoStr(gl.GetString(gl.VENDOR))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Bool("compute", d.limits.Compute),
		zap.Int("max_work_groups_x", d.limits.MaxWorkGroupCountX),
		zap.Int("max_storage_bytes", d.limits.MaxStorageBufferBytes),
	)
	return d, nil
}

// Limits implements gpu.Device.
func (d *Device) Limits() gpu.Limits { return d.limits }

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	size := desc.Size
	var data unsafe.Pointer
	if desc.Contents != nil {
		size = len(desc.Contents)
		if size > 0 {
			data = gl.Ptr(desc.Contents)
		}
	}
	if size <= 0 {
		return nil, fmt.Errorf("buffer %q: size must be positive, got %d", desc.Label, size)
	}

	b := &buffer{label: desc.Label, size: size, usage: desc.Usage}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferData(gl.COPY_WRITE_BUFFER, size, data, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	if err := glError("create buffer " + desc.Label); err != nil {
		gl.DeleteBuffers(1, &b.id)
		return nil, err
	}
	return b, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(buf gpu.Buffer, offset int, data []byte) error {
	b := buf.(*buffer)
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("buffer %q: write [%d:%d] out of range %d", b.label, offset, offset+len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return glError("write buffer " + b.label)
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(buf gpu.Buffer) {
	b := buf.(*buffer)
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// CreateRenderPipeline implements gpu.Device.
func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDesc) (gpu.RenderPipeline, error) {
	program, err := shader.CompileProgram(desc.Vertex, desc.Fragment)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}

	p := &renderPipeline{desc: desc, program: program}
	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	for _, a := range desc.Layout.Attributes {
		loc := uint32(a.Location)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribFormat(loc, int32(a.Format.Components()), gl.FLOAT, false, uint32(a.Offset))
		gl.VertexAttribBinding(loc, 0)
	}
	gl.BindVertexArray(0)

	d.log.Debug("render pipeline created", zap.String("label", desc.Label), zap.Uint32("program", program))
	return p, nil
}

// CreateComputePipeline implements gpu.Device.
func (d *Device) CreateComputePipeline(desc gpu.ComputePipelineDesc) (gpu.ComputePipeline, error) {
	if !d.limits.Compute {
		return nil, fmt.Errorf("pipeline %q: compute shaders not supported", desc.Label)
	}
	program, err := shader.CompileCompute(desc.Source)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	d.log.Debug("compute pipeline created", zap.String("label", desc.Label), zap.Uint32("program", program))
	return &computePipeline{label: desc.Label, program: program}, nil
}

// glError maps the pending GL error, if any.
func glError(op string) error {
	var first uint32
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		if first == 0 {
			first = e
		}
	}
	switch first {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("%s: %w", op, gpu.ErrOutOfMemory)
	default:
		return fmt.Errorf("%s: gl error 0x%x", op, first)
	}
}
