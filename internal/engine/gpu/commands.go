package gpu

// Command is one recorded GPU operation.
type Command interface {
	isCommand()
}

// LoadOp decides what a render pass does with the existing target contents.
type LoadOp int

// Load operations.
const (
	LoadClear LoadOp = iota
	LoadPreserve
)

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Black is the scene clear color.
var Black = Color{A: 1}

// BarrierBits select which later reads a Barrier makes writes visible to.
type BarrierBits uint32

// Barrier bits.
const (
	BarrierVertexAttrib BarrierBits = 1 << iota
	BarrierStorage
	BarrierUniform
)

// Overlay draws directly into the current render target.
type Overlay interface {
	DrawOverlay(width, height int)
}

type (
	// BeginComputePass opens a compute pass.
	BeginComputePass struct{ Label string }
	// SetComputePipeline selects the compute pipeline.
	SetComputePipeline struct{ Pipeline ComputePipeline }
	// Dispatch runs X*Y*Z work groups.
	Dispatch struct{ X, Y, Z uint32 }
	// EndComputePass closes the compute pass.
	EndComputePass struct{}

	// Barrier orders earlier shader writes before later reads.
	Barrier struct{ Bits BarrierBits }

	// BindUniform binds a uniform buffer to a binding slot.
	BindUniform struct {
		Slot   int
		Buffer Buffer
	}
	// BindStorage binds a storage buffer to a binding slot.
	BindStorage struct {
		Slot   int
		Buffer Buffer
	}

	// BeginRenderPass opens a render pass on a frame.
	BeginRenderPass struct {
		Label    string
		Frame    Frame
		Load     LoadOp
		Clear    Color
		UseDepth bool
	}
	// SetRenderPipeline selects the render pipeline.
	SetRenderPipeline struct{ Pipeline RenderPipeline }
	// SetVertexBuffer binds a vertex buffer to a slot.
	SetVertexBuffer struct {
		Slot   int
		Buffer Buffer
	}
	// SetIndexBuffer binds a uint32 index buffer.
	SetIndexBuffer struct{ Buffer Buffer }
	// Draw draws VertexCount vertices starting at FirstVertex.
	Draw struct{ VertexCount, FirstVertex uint32 }
	// DrawIndexed draws IndexCount indices.
	DrawIndexed struct{ IndexCount uint32 }
	// DrawOverlay hands the target to an overlay renderer.
	DrawOverlay struct{ Overlay Overlay }
	// EndRenderPass closes the render pass.
	EndRenderPass struct{}
)

func (BeginComputePass) isCommand()   {}
func (SetComputePipeline) isCommand() {}
func (Dispatch) isCommand()           {}
func (EndComputePass) isCommand()     {}
func (Barrier) isCommand()            {}
func (BindUniform) isCommand()        {}
func (BindStorage) isCommand()        {}
func (BeginRenderPass) isCommand()    {}
func (SetRenderPipeline) isCommand()  {}
func (SetVertexBuffer) isCommand()    {}
func (SetIndexBuffer) isCommand()     {}
func (Draw) isCommand()               {}
func (DrawIndexed) isCommand()        {}
func (DrawOverlay) isCommand()        {}
func (EndRenderPass) isCommand()      {}
