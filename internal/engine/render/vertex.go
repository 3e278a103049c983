package render

import (
	"encoding/binary"
	"sync"

	"github.com/Faultbox/ennona/internal/engine/gpu"
	"github.com/Faultbox/ennona/internal/geometry"
)

// VertexStride is the size of one GPU vertex: vec4 position + vec4 color.
// The same layout is used for storage buffers (std430) and vertex buffers.
const VertexStride = 32

// geometryLayout reads xyz and rgb from the padded vertex.
var geometryLayout = sync.OnceValue(func() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride: VertexStride,
		Attributes: []gpu.VertexAttribute{
			{Location: 0, Format: gpu.Float32x3, Offset: 0},
			{Location: 1, Format: gpu.Float32x3, Offset: 16},
		},
	}
})

// billboardLayout reads the clip-space positions written by the expansion
// stage, including w.
var billboardLayout = sync.OnceValue(func() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride: VertexStride,
		Attributes: []gpu.VertexAttribute{
			{Location: 0, Format: gpu.Float32x4, Offset: 0},
			{Location: 1, Format: gpu.Float32x4, Offset: 16},
		},
	}
})

// EncodeVertices packs vertices into the GPU layout with w and alpha set to 1.
func EncodeVertices(vs []geometry.Vertex) []byte {
	buf := make([]byte, len(vs)*VertexStride)
	for i, v := range vs {
		b := buf[i*VertexStride:]
		putFloat(b[0:], v.Position.X)
		putFloat(b[4:], v.Position.Y)
		putFloat(b[8:], v.Position.Z)
		putFloat(b[12:], 1)
		putFloat(b[16:], v.Color.X)
		putFloat(b[20:], v.Color.Y)
		putFloat(b[24:], v.Color.Z)
		putFloat(b[28:], 1)
	}
	return buf
}

// EncodeIndices packs uint32 indices little-endian.
func EncodeIndices(idx []uint32) []byte {
	buf := make([]byte, len(idx)*4)
	for i, v := range idx {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// dummyVertex keeps storage and vertex bindings valid while a set is empty.
var dummyVertex = EncodeVertices([]geometry.Vertex{{}})
