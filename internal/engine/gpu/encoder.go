package gpu

// CommandBuffer is a finished, immutable list of commands.
type CommandBuffer struct {
	Commands []Command
}

// Encoder records commands. Passes must be closed before another is opened
// and before Finish; violating that is a programming error and panics.
type Encoder struct {
	label string
	cmds  []Command
	open  bool
}

// NewEncoder starts a new recording.
func NewEncoder(label string) *Encoder {
	return &Encoder{label: label}
}

// ComputePass records compute commands.
type ComputePass struct {
	enc *Encoder
}

// RenderPass records draw commands.
type RenderPass struct {
	enc *Encoder
}

func (e *Encoder) push(c Command) {
	e.cmds = append(e.cmds, c)
}

func (e *Encoder) beginPass() {
	if e.open {
		panic("gpu: " + e.label + ": pass begun while another pass is open")
	}
	e.open = true
}

// BeginComputePass opens a compute pass.
func (e *Encoder) BeginComputePass(label string) *ComputePass {
	e.beginPass()
	e.push(BeginComputePass{Label: label})
	return &ComputePass{enc: e}
}

// BeginRenderPass opens a render pass.
func (e *Encoder) BeginRenderPass(desc BeginRenderPass) *RenderPass {
	if desc.Frame == nil {
		panic("gpu: " + e.label + ": render pass without a frame")
	}
	e.beginPass()
	e.push(desc)
	return &RenderPass{enc: e}
}

// Barrier records a memory barrier between passes.
func (e *Encoder) Barrier(bits BarrierBits) {
	if e.open {
		panic("gpu: " + e.label + ": barrier inside a pass")
	}
	e.push(Barrier{Bits: bits})
}

// Finish returns the recorded commands.
func (e *Encoder) Finish() *CommandBuffer {
	if e.open {
		panic("gpu: " + e.label + ": Finish with an open pass")
	}
	cb := &CommandBuffer{Commands: e.cmds}
	e.cmds = nil
	return cb
}

// SetPipeline selects the compute pipeline.
func (p *ComputePass) SetPipeline(pl ComputePipeline) {
	p.enc.push(SetComputePipeline{Pipeline: pl})
}

// BindUniform binds a uniform buffer.
func (p *ComputePass) BindUniform(slot int, buf Buffer) {
	p.enc.push(BindUniform{Slot: slot, Buffer: buf})
}

// BindStorage binds a storage buffer.
func (p *ComputePass) BindStorage(slot int, buf Buffer) {
	p.enc.push(BindStorage{Slot: slot, Buffer: buf})
}

// Dispatch runs x work groups.
func (p *ComputePass) Dispatch(x, y, z uint32) {
	p.enc.push(Dispatch{X: x, Y: y, Z: z})
}

// End closes the pass.
func (p *ComputePass) End() {
	p.enc.push(EndComputePass{})
	p.enc.open = false
}

// SetPipeline selects the render pipeline.
func (p *RenderPass) SetPipeline(pl RenderPipeline) {
	p.enc.push(SetRenderPipeline{Pipeline: pl})
}

// BindUniform binds a uniform buffer.
func (p *RenderPass) BindUniform(slot int, buf Buffer) {
	p.enc.push(BindUniform{Slot: slot, Buffer: buf})
}

// SetVertexBuffer binds a vertex buffer.
func (p *RenderPass) SetVertexBuffer(slot int, buf Buffer) {
	p.enc.push(SetVertexBuffer{Slot: slot, Buffer: buf})
}

// SetIndexBuffer binds the index buffer.
func (p *RenderPass) SetIndexBuffer(buf Buffer) {
	p.enc.push(SetIndexBuffer{Buffer: buf})
}

// Draw draws count vertices.
func (p *RenderPass) Draw(count, first uint32) {
	p.enc.push(Draw{VertexCount: count, FirstVertex: first})
}

// DrawIndexed draws count indices.
func (p *RenderPass) DrawIndexed(count uint32) {
	p.enc.push(DrawIndexed{IndexCount: count})
}

// DrawOverlay lets o draw into the pass target.
func (p *RenderPass) DrawOverlay(o Overlay) {
	p.enc.push(DrawOverlay{Overlay: o})
}

// End closes the pass.
func (p *RenderPass) End() {
	p.enc.push(EndRenderPass{})
	p.enc.open = false
}
