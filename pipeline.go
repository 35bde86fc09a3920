package drape

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// StencilOperation is the action applied to a stencil value.
type StencilOperation uint8

// Stencil operations, with WebGPU semantics.
const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationInvert
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

var stencilOperationNames = [...]string{
	"Keep", "Zero", "Replace", "Invert",
	"IncrementClamp", "DecrementClamp", "IncrementWrap", "DecrementWrap",
}

func (op StencilOperation) String() string {
	if int(op) < len(stencilOperationNames) {
		return stencilOperationNames[op]
	}
	return fmt.Sprintf("StencilOperation(%d)", uint8(op))
}

// StencilFaceState is the stencil configuration of one face orientation.
type StencilFaceState struct {
	Compare     gputypes.CompareFunction
	FailOp      StencilOperation
	DepthFailOp StencilOperation
	PassOp      StencilOperation
}

// DepthStencilState configures depth and stencil testing.
type DepthStencilState struct {
	Format            gputypes.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
	StencilFront      StencilFaceState
	StencilBack       StencilFaceState
	StencilReadMask   uint32
	StencilWriteMask  uint32
}

// Program selects the shader program of a pipeline.
type Program uint8

const (
	// ProgramUniformColor reads a float32x3 position at location(0) and
	// fills with the uniform color.
	ProgramUniformColor Program = iota

	// ProgramVertexColor reads a float32x3 position at location(0) and a
	// float32x4 color at location(1) and fills with the vertex color.
	ProgramVertexColor
)

func (p Program) String() string {
	switch p {
	case ProgramUniformColor:
		return "UniformColor"
	case ProgramVertexColor:
		return "VertexColor"
	default:
		return fmt.Sprintf("Program(%d)", uint8(p))
	}
}

// PipelineDescriptor describes a render pipeline for GraphicsBackend.
//
// It is plain data so the same descriptor compiles on every backend. All
// pipelines draw triangle lists with uint32 indices.
type PipelineDescriptor struct {
	Label        string
	Program      Program
	Vertex       VertexLayout
	Primitive    gputypes.PrimitiveState
	DepthStencil DepthStencilState
	ColorFormat  gputypes.TextureFormat

	// Blend is the color blend state. Nil replaces the destination.
	Blend *gputypes.BlendState

	ColorWriteMask gputypes.ColorWriteMask
}

// AlphaBlend is straight-alpha "over" blending:
// SrcAlpha / OneMinusSrcAlpha for color, One / OneMinusSrcAlpha for alpha.
func AlphaBlend() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// polyhedronPipeline describes pass 1.
//
// The prism is drawn with both faces, depth tested against the terrain
// without writing depth or color. Where a face is hidden by the terrain the
// stencil is decremented for front faces and incremented for back faces,
// with wraparound. The result is non-zero exactly where the visible terrain
// is inside the prism, with the camera inside or outside it.
func polyhedronPipeline(o rendererOptions) *PipelineDescriptor {
	return &PipelineDescriptor{
		Label:   o.labelPrefix + "_polyhedron_pipeline",
		Program: ProgramUniformColor,
		Vertex:  PositionLayout(),
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		DepthStencil: DepthStencilState{
			Format:            o.depthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront: StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      StencilOperationKeep,
				DepthFailOp: StencilOperationDecrementWrap,
				PassOp:      StencilOperationKeep,
			},
			StencilBack: StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      StencilOperationKeep,
				DepthFailOp: StencilOperationIncrementWrap,
				PassOp:      StencilOperationKeep,
			},
			StencilReadMask:  0xFF,
			StencilWriteMask: 0xFF,
		},
		ColorFormat:    o.colorFormat,
		ColorWriteMask: gputypes.ColorWriteMaskNone,
	}
}

// boundingBoxPipeline describes pass 2.
//
// Only back faces of the bounding-box prism are drawn so each pixel is
// covered once even with the camera inside the box. Depth is ignored.
// Pixels with a non-zero stencil receive the blended fill color and have
// their stencil reset to zero.
func boundingBoxPipeline(o rendererOptions) *PipelineDescriptor {
	blend := AlphaBlend()
	cover := StencilFaceState{
		Compare:     gputypes.CompareFunctionNotEqual,
		FailOp:      StencilOperationKeep,
		DepthFailOp: StencilOperationKeep,
		PassOp:      StencilOperationZero,
	}
	return &PipelineDescriptor{
		Label:   o.labelPrefix + "_bounding_box_pipeline",
		Program: ProgramUniformColor,
		Vertex:  PositionLayout(),
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeFront,
		},
		DepthStencil: DepthStencilState{
			Format:            o.depthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      cover,
			StencilBack:       cover,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		},
		ColorFormat:    o.colorFormat,
		Blend:          &blend,
		ColorWriteMask: gputypes.ColorWriteMaskAll,
	}
}
