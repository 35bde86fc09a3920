package soft

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
	"github.com/gogpu/drape/internal/raster"
	"github.com/gogpu/gputypes"
)

func init() {
	backend.Register(backend.BackendSoft, func() (backend.Device, error) {
		return New(), nil
	})
}

// Backend is the CPU implementation of drape.GraphicsBackend.
// The zero value is not usable; call New.
type Backend struct {
	closed bool
}

// New creates a CPU backend.
func New() *Backend {
	return &Backend{}
}

var (
	_ drape.GraphicsBackend = (*Backend)(nil)
	_ backend.Device        = (*Backend)(nil)
)

type buffer struct {
	label     string
	data      []byte
	indices   []uint32
	destroyed bool
}

func (b *buffer) Size() uint64 {
	if b.indices != nil {
		return uint64(len(b.indices)) * 4
	}
	return uint64(len(b.data))
}

type pipeline struct {
	desc      drape.PipelineDescriptor
	destroyed bool
}

func (p *pipeline) Label() string { return p.desc.Label }

// Name implements backend.Device.
func (b *Backend) Name() string { return backend.BackendSoft }

// CreateVertexBuffer implements drape.GraphicsBackend.
func (b *Backend) CreateVertexBuffer(label string, data []byte) (drape.Buffer, error) {
	return &buffer{label: label, data: append([]byte(nil), data...)}, nil
}

// CreateIndexBuffer implements drape.GraphicsBackend.
func (b *Backend) CreateIndexBuffer(label string, indices []uint32) (drape.Buffer, error) {
	return &buffer{label: label, indices: append(make([]uint32, 0, len(indices)), indices...)}, nil
}

// CreatePipeline implements drape.GraphicsBackend.
func (b *Backend) CreatePipeline(desc *drape.PipelineDescriptor) (drape.Pipeline, error) {
	if desc == nil {
		return nil, errors.New("soft: nil pipeline descriptor")
	}
	if _, ok := findAttribute(desc.Vertex, 0); !ok {
		return nil, fmt.Errorf("soft: pipeline %q has no position attribute", desc.Label)
	}
	if desc.Program == drape.ProgramVertexColor {
		if _, ok := findAttribute(desc.Vertex, 1); !ok {
			return nil, fmt.Errorf("soft: pipeline %q has no color attribute", desc.Label)
		}
	}
	p := &pipeline{desc: *desc}
	p.desc.Vertex.Attributes = append([]gputypes.VertexAttribute(nil), desc.Vertex.Attributes...)
	if desc.Blend != nil {
		blend := *desc.Blend
		p.desc.Blend = &blend
	}
	drape.Logger().Debug("soft: pipeline created", "label", desc.Label, "program", desc.Program)
	return p, nil
}

// DestroyBuffer implements drape.GraphicsBackend.
func (b *Backend) DestroyBuffer(buf drape.Buffer) {
	if sb, ok := buf.(*buffer); ok {
		sb.destroyed = true
		sb.data, sb.indices = nil, nil
	}
}

// DestroyPipeline implements drape.GraphicsBackend.
func (b *Backend) DestroyPipeline(p drape.Pipeline) {
	if sp, ok := p.(*pipeline); ok {
		sp.destroyed = true
	}
}

// NewTargets implements backend.Device.
func (b *Backend) NewTargets(width, height int) (drape.ColorTarget, drape.DepthStencilTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("soft: invalid target size %dx%d", width, height)
	}
	return NewColorBuffer(width, height), NewDepthStencilBuffer(width, height), nil
}

// DestroyTargets implements backend.Device. Soft targets are garbage
// collected.
func (b *Backend) DestroyTargets(drape.ColorTarget, drape.DepthStencilTarget) {}

// NewCommandStream starts recording.
func (b *Backend) NewCommandStream() *CommandStream {
	return &CommandStream{}
}

// NewStream implements backend.Device.
func (b *Backend) NewStream() (backend.Stream, error) {
	if b.closed {
		return nil, errors.New("soft: backend closed")
	}
	return b.NewCommandStream(), nil
}

// ReadPixels implements backend.Device.
func (b *Backend) ReadPixels(target drape.ColorTarget) (*image.NRGBA, error) {
	c, ok := target.(*ColorBuffer)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrTargetMismatch, target)
	}
	return c.Image(), nil
}

// Close implements backend.Device.
func (b *Backend) Close() {
	b.closed = true
}

func findAttribute(layout drape.VertexLayout, location uint32) (gputypes.VertexAttribute, bool) {
	for _, a := range layout.Attributes {
		if a.ShaderLocation == location {
			return a, true
		}
	}
	return gputypes.VertexAttribute{}, false
}

// readFloats decodes attribute a of vertex i into dst. Missing components
// keep their value in dst.
func readFloats(data []byte, stride uint64, a gputypes.VertexAttribute, i uint32, dst []float32) bool {
	n := 0
	switch a.Format {
	case gputypes.VertexFormatFloat32x2:
		n = 2
	case gputypes.VertexFormatFloat32x3:
		n = 3
	case gputypes.VertexFormatFloat32x4:
		n = 4
	default:
		return false
	}
	off := uint64(i)*stride + a.Offset
	if off+uint64(n)*4 > uint64(len(data)) {
		return false
	}
	for k := range min(n, len(dst)) {
		dst[k] = math.Float32frombits(binary.LittleEndian.Uint32(data[off+uint64(k)*4:]))
	}
	return true
}

// execute runs one draw call against the targets and returns the number
// of triangles skipped for out-of-range indices.
func execute(color *ColorBuffer, ds *DepthStencilBuffer, dc *drape.DrawCall) (int, error) {
	p, ok := dc.Pipeline.(*pipeline)
	if !ok || p.destroyed {
		return 0, fmt.Errorf("%w: pipeline %v", ErrUnknownHandle, dc.Pipeline)
	}
	vb, ok := dc.VertexBuffer.(*buffer)
	if !ok || vb.destroyed {
		return 0, fmt.Errorf("%w: vertex buffer", ErrUnknownHandle)
	}
	ib, ok := dc.IndexBuffer.(*buffer)
	if !ok || ib.destroyed {
		return 0, fmt.Errorf("%w: index buffer", ErrUnknownHandle)
	}

	count := min(int(dc.IndexCount), len(ib.indices))
	count -= count % 3

	state := raster.StateFrom(&p.desc, dc.StencilReference)
	target := raster.Target{
		Width:   ds.width,
		Height:  ds.height,
		Depth:   ds.depth,
		Stencil: ds.stencil,
	}
	if color != nil {
		target.Color = color.pix
	}

	posAttr, _ := findAttribute(p.desc.Vertex, 0)
	colAttr, hasColor := findAttribute(p.desc.Vertex, 1)
	useVertexColor := p.desc.Program == drape.ProgramVertexColor && hasColor
	stride := p.desc.Vertex.ArrayStride
	mvp := dc.Uniforms.MVP
	fill := dc.Uniforms.Color.Array()

	skipped := 0
	var tri [3]raster.Vertex
	for i := 0; i < count; i += 3 {
		valid := true
		for k := range 3 {
			idx := ib.indices[i+k]
			var pos [3]float32
			if !readFloats(vb.data, stride, posAttr, idx, pos[:]) {
				valid = false
				break
			}
			tri[k].Clip = mvp.Mul4x1(mgl32.Vec4{pos[0], pos[1], pos[2], 1})
			tri[k].Color = fill
			if useVertexColor {
				c := [4]float32{0, 0, 0, 1}
				readFloats(vb.data, stride, colAttr, idx, c[:])
				tri[k].Color = c
			}
		}
		if !valid {
			skipped++
			continue
		}
		raster.DrawTriangle(&target, &state, tri)
	}
	return skipped, nil
}
