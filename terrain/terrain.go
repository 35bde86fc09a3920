package terrain

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
)

// ErrDestroyed is returned by Draw after Destroy.
var ErrDestroyed = errors.New("terrain: destroyed")

// Option configures a Terrain during creation.
type Option func(*options)

type options struct {
	colorFormat        gputypes.TextureFormat
	depthStencilFormat gputypes.TextureFormat
}

// WithColorFormat sets the color target format. The default is BGRA8Unorm.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.colorFormat = f
	}
}

// WithDepthStencilFormat sets the depth/stencil target format. The default
// is Depth24PlusStencil8.
func WithDepthStencilFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.depthStencilFormat = f
	}
}

// Terrain is an uploaded grid mesh with its pipeline.
type Terrain struct {
	backend    drape.GraphicsBackend
	grid       Grid
	pipeline   drape.Pipeline
	vertices   drape.Buffer
	indices    drape.Buffer
	indexCount uint32
}

// Pipeline describes the terrain pipeline: vertex colors, back faces
// culled, depth tested LessEqual and written. The stencil is left alone.
func Pipeline(colorFormat, depthStencilFormat gputypes.TextureFormat) *drape.PipelineDescriptor {
	keep := drape.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      drape.StencilOperationKeep,
		DepthFailOp: drape.StencilOperationKeep,
		PassOp:      drape.StencilOperationKeep,
	}
	return &drape.PipelineDescriptor{
		Label:   "terrain_pipeline",
		Program: drape.ProgramVertexColor,
		Vertex:  Layout(),
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		DepthStencil: drape.DepthStencilState{
			Format:            depthStencilFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		},
		ColorFormat:    colorFormat,
		ColorWriteMask: gputypes.ColorWriteMaskAll,
	}
}

// New meshes the grid and uploads it through backend.
func New(backend drape.GraphicsBackend, grid Grid, opts ...Option) (*Terrain, error) {
	if backend == nil {
		return nil, drape.ErrNilBackend
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	o := options{
		colorFormat:        gputypes.TextureFormatBGRA8Unorm,
		depthStencilFormat: gputypes.TextureFormatDepth24PlusStencil8,
	}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Terrain{backend: backend, grid: grid}
	var err error
	t.pipeline, err = backend.CreatePipeline(Pipeline(o.colorFormat, o.depthStencilFormat))
	if err != nil {
		return nil, fmt.Errorf("create terrain pipeline: %w", err)
	}

	vertices := grid.Vertices()
	t.vertices, err = backend.CreateVertexBuffer("terrain_vertices", EncodeVertices(vertices))
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("upload terrain vertices: %w", err)
	}
	indices := grid.Indices()
	t.indices, err = backend.CreateIndexBuffer("terrain_indices", indices)
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("upload terrain indices: %w", err)
	}
	t.indexCount = uint32(len(indices)) //nolint:gosec // G115: bounded by Validate

	drape.Logger().Debug("terrain: mesh uploaded",
		"size", grid.Size,
		"vertices", len(vertices),
		"indices", len(indices))
	return t, nil
}

// Grid returns the grid the terrain was built from.
func (t *Terrain) Grid() Grid {
	return t.grid
}

// IndexCount returns the number of mesh indices.
func (t *Terrain) IndexCount() uint32 {
	return t.indexCount
}

// Draw renders the mesh into color and depthStencil. It must run before the
// draping passes of the same frame.
func (t *Terrain) Draw(stream drape.CommandStream, color drape.ColorTarget, depthStencil drape.DepthStencilTarget, mvp mgl32.Mat4) error {
	if t.pipeline == nil {
		return ErrDestroyed
	}
	err := stream.Submit(&drape.DrawBundle{
		Label:        "terrain",
		Color:        color,
		DepthStencil: depthStencil,
		Draws: []drape.DrawCall{{
			Pipeline:     t.pipeline,
			VertexBuffer: t.vertices,
			IndexBuffer:  t.indices,
			IndexCount:   t.indexCount,
			Uniforms:     drape.Uniforms{MVP: mvp, Color: drape.White},
		}},
	})
	if err != nil {
		return fmt.Errorf("draw terrain: %w", err)
	}
	return nil
}

// Destroy releases the buffers and pipeline. It is safe to call more than
// once.
func (t *Terrain) Destroy() {
	if t.vertices != nil {
		t.backend.DestroyBuffer(t.vertices)
		t.vertices = nil
	}
	if t.indices != nil {
		t.backend.DestroyBuffer(t.indices)
		t.indices = nil
	}
	if t.pipeline != nil {
		t.backend.DestroyPipeline(t.pipeline)
		t.pipeline = nil
	}
}
