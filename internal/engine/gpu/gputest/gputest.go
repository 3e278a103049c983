// Package gputest provides in-memory gpu.Device and gpu.SurfaceBackend
// implementations that record what they are asked to do.
package gputest

import (
	"fmt"
	"sync"

	"github.com/Faultbox/ennona/internal/engine/gpu"
)

// Buffer is a recorded buffer. Its contents are kept in memory.
type Buffer struct {
	Desc      gpu.BufferDesc
	Data      []byte
	Destroyed bool
}

// Label implements gpu.Buffer.
func (b *Buffer) Label() string { return b.Desc.Label }

// Size implements gpu.Buffer.
func (b *Buffer) Size() int { return len(b.Data) }

// RenderPipeline is a recorded render pipeline.
type RenderPipeline struct{ Desc gpu.RenderPipelineDesc }

// Label implements gpu.RenderPipeline.
func (p *RenderPipeline) Label() string { return p.Desc.Label }

// ComputePipeline is a recorded compute pipeline.
type ComputePipeline struct{ Desc gpu.ComputePipelineDesc }

// Label implements gpu.ComputePipeline.
func (p *ComputePipeline) Label() string { return p.Desc.Label }

// Device records resources and submissions.
type Device struct {
	mu sync.Mutex

	Buffers   []*Buffer
	Render    []*RenderPipeline
	Compute   []*ComputePipeline
	Submitted []*gpu.CommandBuffer
	Caps      gpu.Limits

	// SubmitErr, when set, is returned by the next Submit and then cleared.
	SubmitErr error
	// CreateErr, when set, fails every resource creation.
	CreateErr error
	// BufferErrs fails CreateBuffer for buffers with a matching label.
	BufferErrs map[string]error
}

// NewDevice returns a device with compute support.
func NewDevice() *Device {
	return &Device{Caps: gpu.Limits{
		Compute:               true,
		MaxWorkGroupCountX:    65535,
		MaxStorageBufferBytes: 128 << 20,
	}}
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	if err := d.BufferErrs[desc.Label]; err != nil {
		return nil, err
	}
	if desc.Size < 0 {
		return nil, fmt.Errorf("buffer %q: negative size", desc.Label)
	}
	b := &Buffer{Desc: desc}
	if desc.Contents != nil {
		b.Data = append([]byte(nil), desc.Contents...)
	} else {
		b.Data = make([]byte, desc.Size)
	}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(buf gpu.Buffer, offset int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := buf.(*Buffer)
	if b.Destroyed {
		return fmt.Errorf("buffer %q: write after destroy", b.Label())
	}
	if offset < 0 || offset+len(data) > len(b.Data) {
		return fmt.Errorf("buffer %q: write [%d:%d] out of range %d", b.Label(), offset, offset+len(data), len(b.Data))
	}
	copy(b.Data[offset:], data)
	return nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(buf gpu.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf.(*Buffer).Destroyed = true
}

// CreateRenderPipeline implements gpu.Device.
func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDesc) (gpu.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	p := &RenderPipeline{Desc: desc}
	d.Render = append(d.Render, p)
	return p, nil
}

// CreateComputePipeline implements gpu.Device.
func (d *Device) CreateComputePipeline(desc gpu.ComputePipelineDesc) (gpu.ComputePipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	if !d.Caps.Compute {
		return nil, fmt.Errorf("compute pipeline %q: compute not supported", desc.Label)
	}
	p := &ComputePipeline{Desc: desc}
	d.Compute = append(d.Compute, p)
	return p, nil
}

// Submit implements gpu.Device.
func (d *Device) Submit(cmds *gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.SubmitErr; err != nil {
		d.SubmitErr = nil
		return err
	}
	d.Submitted = append(d.Submitted, cmds)
	return nil
}

// Limits implements gpu.Device.
func (d *Device) Limits() gpu.Limits { return d.Caps }

// LastSubmit returns the most recent submission, or nil.
func (d *Device) LastSubmit() *gpu.CommandBuffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Submitted) == 0 {
		return nil
	}
	return d.Submitted[len(d.Submitted)-1]
}

// Live returns the buffers that have not been destroyed.
func (d *Device) Live() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Buffer
	for _, b := range d.Buffers {
		if !b.Destroyed {
			out = append(out, b)
		}
	}
	return out
}

// Frame is a fake presentable image.
type Frame struct {
	W, H int
	Seq  int
}

// Size implements gpu.Frame.
func (f *Frame) Size() (int, int) { return f.W, f.H }

// Surface is a fake surface backend. Errors queued in AcquireErrs are
// returned by successive Acquire calls before frames are handed out.
type Surface struct {
	// Drawable, when set, reports the window size to Surface.Recover.
	Drawable func() (int, int)

	Configs     []gpu.SurfaceConfig
	AcquireErrs []error
	PresentErr  error
	Presented   []*Frame

	cfg gpu.SurfaceConfig
	seq int
}

// Configure implements gpu.SurfaceBackend.
func (s *Surface) Configure(cfg gpu.SurfaceConfig) error {
	s.Configs = append(s.Configs, cfg)
	s.cfg = cfg
	return nil
}

// CurrentSize implements gpu.SizeReporter.
func (s *Surface) CurrentSize() (int, int) {
	if s.Drawable != nil {
		return s.Drawable()
	}
	return s.cfg.Width, s.cfg.Height
}

// Acquire implements gpu.SurfaceBackend.
func (s *Surface) Acquire() (gpu.Frame, error) {
	if len(s.AcquireErrs) > 0 {
		err := s.AcquireErrs[0]
		s.AcquireErrs = s.AcquireErrs[1:]
		return nil, err
	}
	s.seq++
	return &Frame{W: s.cfg.Width, H: s.cfg.Height, Seq: s.seq}, nil
}

// Present implements gpu.SurfaceBackend.
func (s *Surface) Present(f gpu.Frame) error {
	if s.PresentErr != nil {
		return s.PresentErr
	}
	s.Presented = append(s.Presented, f.(*Frame))
	return nil
}
