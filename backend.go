package drape

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Buffer is a backend-owned GPU buffer.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64
}

// Pipeline is a backend-owned compiled pipeline state.
type Pipeline interface {
	// Label returns the debug label the pipeline was created with.
	Label() string
}

// ColorTarget is a color attachment understood by a backend.
type ColorTarget interface {
	Format() gputypes.TextureFormat
}

// DepthStencilTarget is a depth/stencil attachment understood by a backend.
type DepthStencilTarget interface {
	Format() gputypes.TextureFormat
}

// GraphicsBackend allocates the resources the renderer needs.
//
// Implementations live in backend/soft (CPU reference) and backend/wgpu
// (gogpu/wgpu HAL). Errors from any method are returned to the caller
// wrapped; nothing is retried.
type GraphicsBackend interface {
	// CreateVertexBuffer uploads data to a new vertex buffer.
	CreateVertexBuffer(label string, data []byte) (Buffer, error)

	// CreateIndexBuffer uploads indices to a new uint32 index buffer.
	CreateIndexBuffer(label string, indices []uint32) (Buffer, error)

	// CreatePipeline compiles a pipeline state.
	CreatePipeline(desc *PipelineDescriptor) (Pipeline, error)

	// DestroyBuffer releases a buffer created by this backend.
	DestroyBuffer(Buffer)

	// DestroyPipeline releases a pipeline created by this backend.
	DestroyPipeline(Pipeline)
}

// CommandStream records draw work against render targets.
//
// Submit may execute immediately or defer until the stream is finished;
// either way, bundles execute in submission order.
type CommandStream interface {
	Submit(bundle *DrawBundle) error
}

// DrawBundle is an ordered list of draws into one target pair.
// Draws run within a single render pass that loads, not clears, the
// existing color, depth and stencil contents.
type DrawBundle struct {
	Label        string
	Color        ColorTarget
	DepthStencil DepthStencilTarget
	Draws        []DrawCall
}

// DrawCall is one indexed triangle-list draw.
type DrawCall struct {
	Pipeline         Pipeline
	VertexBuffer     Buffer
	IndexBuffer      Buffer
	IndexCount       uint32
	StencilReference uint32
	Uniforms         Uniforms
}

// UniformSize is the byte size of encoded Uniforms.
// Layout: mvp (mat4x4<f32>, 64 bytes) + color (vec4<f32>, 16 bytes).
const UniformSize = 80

// Uniforms are the per-draw shader constants.
type Uniforms struct {
	MVP   mgl32.Mat4
	Color RGBA
}

// Bytes encodes the uniforms in WGSL uniform layout. mgl32 matrices are
// column-major, matching WGSL.
func (u Uniforms) Bytes() []byte {
	buf := make([]byte, UniformSize)
	for i, v := range u.MVP {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range u.Color.Array() {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}
