package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/ennona/internal/engine/gpu"
)

// Submit implements gpu.Device by replaying the commands in order.
func (d *Device) Submit(cb *gpu.CommandBuffer) error {
	for _, cmd := range cb.Commands {
		if err := d.exec(cmd); err != nil {
			return err
		}
	}
	d.current = nil
	return glError("submit")
}

func (d *Device) exec(cmd gpu.Command) error {
	switch c := cmd.(type) {
	case gpu.BeginComputePass, gpu.EndComputePass:

	case gpu.SetComputePipeline:
		gl.UseProgram(c.Pipeline.(*computePipeline).program)

	case gpu.Dispatch:
		gl.DispatchCompute(c.X, c.Y, c.Z)

	case gpu.Barrier:
		gl.MemoryBarrier(barrierBits(c.Bits))

	case gpu.BindUniform:
		gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(c.Slot), c.Buffer.(*buffer).id)

	case gpu.BindStorage:
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(c.Slot), c.Buffer.(*buffer).id)

	case gpu.BeginRenderPass:
		f, ok := c.Frame.(*Frame)
		if !ok {
			return fmt.Errorf("render pass %q: foreign frame %T", c.Label, c.Frame)
		}
		f.fb.Bind()
		if c.Load == gpu.LoadClear {
			mask := uint32(gl.COLOR_BUFFER_BIT)
			if c.UseDepth {
				gl.DepthMask(true)
				mask |= gl.DEPTH_BUFFER_BIT
			}
			gl.ClearColor(c.Clear.R, c.Clear.G, c.Clear.B, c.Clear.A)
			gl.Clear(mask)
		}

	case gpu.SetRenderPipeline:
		p := c.Pipeline.(*renderPipeline)
		d.current = p
		gl.UseProgram(p.program)
		gl.BindVertexArray(p.vao)
		setEnabled(gl.DEPTH_TEST, p.desc.DepthTest)
		setEnabled(gl.PROGRAM_POINT_SIZE, p.desc.ProgramPointSize)
		gl.Disable(gl.CULL_FACE)
		if p.desc.PolygonMode == gpu.PolygonLine {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		} else {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}

	case gpu.SetVertexBuffer:
		if d.current == nil {
			return fmt.Errorf("vertex buffer %q bound without a pipeline", c.Buffer.Label())
		}
		stride := int32(d.current.desc.Layout.Stride)
		gl.BindVertexBuffer(uint32(c.Slot), c.Buffer.(*buffer).id, 0, stride)

	case gpu.SetIndexBuffer:
		// element array binding is VAO state
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.Buffer.(*buffer).id)

	case gpu.Draw:
		if d.current == nil {
			return fmt.Errorf("draw without a pipeline")
		}
		gl.DrawArrays(topology(d.current.desc.Topology), int32(c.FirstVertex), int32(c.VertexCount))

	case gpu.DrawIndexed:
		if d.current == nil {
			return fmt.Errorf("indexed draw without a pipeline")
		}
		gl.DrawElementsWithOffset(topology(d.current.desc.Topology), int32(c.IndexCount), gl.UNSIGNED_INT, 0)

	case gpu.DrawOverlay:
		var fbo, vp [4]int32
		gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fbo[0])
		gl.GetIntegerv(gl.VIEWPORT, &vp[0])
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		c.Overlay.DrawOverlay(int(vp[2]), int(vp[3]))
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fbo[0]))
		d.current = nil

	case gpu.EndRenderPass:
		gl.BindVertexArray(0)
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		d.current = nil

	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func setEnabled(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func barrierBits(b gpu.BarrierBits) uint32 {
	var bits uint32
	if b&gpu.BarrierVertexAttrib != 0 {
		bits |= gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT
	}
	if b&gpu.BarrierStorage != 0 {
		bits |= gl.SHADER_STORAGE_BARRIER_BIT
	}
	if b&gpu.BarrierUniform != 0 {
		bits |= gl.UNIFORM_BARRIER_BIT
	}
	return bits
}

func topology(t gpu.Topology) uint32 {
	switch t {
	case gpu.LineList:
		return gl.LINES
	case gpu.PointList:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}
