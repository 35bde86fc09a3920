package drape

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the byte stride of an encoded Vertex: 3 x float32.
const VertexStride = 12

// VertexLayout describes how a pipeline reads one interleaved vertex buffer.
type VertexLayout struct {
	// ArrayStride is the byte stride between consecutive vertices.
	ArrayStride uint64

	// Attributes lists the attributes inside one vertex.
	Attributes []gputypes.VertexAttribute
}

// PositionLayout is the layout of buffers produced by EncodeVertices:
// float32x3 position at location(0).
func PositionLayout() VertexLayout {
	return VertexLayout{
		ArrayStride: VertexStride,
		Attributes: []gputypes.VertexAttribute{
			{
				Format:         gputypes.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: 0,
			},
		},
	}
}

// EncodeVertices packs vertices into little-endian bytes for upload.
func EncodeVertices(vertices []Vertex) []byte {
	data := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		off := i * VertexStride
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(data[off+4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(data[off+8:], math.Float32bits(v.Position[2]))
	}
	return data
}
