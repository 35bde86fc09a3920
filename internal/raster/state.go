package raster

import (
	"cmp"

	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
)

// Color write mask bits, as defined by WebGPU.
const (
	writeRed   gputypes.ColorWriteMask = 1 << 0
	writeGreen gputypes.ColorWriteMask = 1 << 1
	writeBlue  gputypes.ColorWriteMask = 1 << 2
	writeAlpha gputypes.ColorWriteMask = 1 << 3
)

var channelMask = [4]gputypes.ColorWriteMask{writeRed, writeGreen, writeBlue, writeAlpha}

// StencilFace is the stencil configuration of one face orientation.
type StencilFace struct {
	Compare     gputypes.CompareFunction
	FailOp      drape.StencilOperation
	DepthFailOp drape.StencilOperation
	PassOp      drape.StencilOperation
}

// State is the fixed-function state of a draw.
type State struct {
	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace

	DepthCompare gputypes.CompareFunction
	DepthWrite   bool

	StencilFront     StencilFace
	StencilBack      StencilFace
	StencilReadMask  uint8
	StencilWriteMask uint8
	StencilRef       uint8

	// Blend is nil for replace.
	Blend     *gputypes.BlendState
	WriteMask gputypes.ColorWriteMask
}

// StateFrom translates a pipeline descriptor and a stencil reference.
func StateFrom(desc *drape.PipelineDescriptor, stencilRef uint32) State {
	ds := desc.DepthStencil
	return State{
		CullMode:     desc.Primitive.CullMode,
		FrontFace:    desc.Primitive.FrontFace,
		DepthCompare: ds.DepthCompare,
		DepthWrite:   ds.DepthWriteEnabled,
		StencilFront: StencilFace(ds.StencilFront),
		StencilBack:  StencilFace(ds.StencilBack),
		//nolint:gosec // G115: stencil is 8 bits wide
		StencilReadMask: uint8(ds.StencilReadMask),
		//nolint:gosec // G115: stencil is 8 bits wide
		StencilWriteMask: uint8(ds.StencilWriteMask),
		//nolint:gosec // G115: stencil is 8 bits wide
		StencilRef: uint8(stencilRef),
		Blend:      desc.Blend,
		WriteMask:  desc.ColorWriteMask,
	}
}

// passes evaluates "a fn b". Undefined functions pass.
func passes[T cmp.Ordered](fn gputypes.CompareFunction, a, b T) bool {
	switch fn {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return a < b
	case gputypes.CompareFunctionEqual:
		return a == b
	case gputypes.CompareFunctionLessEqual:
		return a <= b
	case gputypes.CompareFunctionGreater:
		return a > b
	case gputypes.CompareFunctionNotEqual:
		return a != b
	case gputypes.CompareFunctionGreaterEqual:
		return a >= b
	default:
		return true
	}
}

// applyStencil returns the value op produces from old. Only bits in mask
// are changed.
func applyStencil(op drape.StencilOperation, old, ref, mask uint8) uint8 {
	var v uint8
	switch op {
	case drape.StencilOperationZero:
		v = 0
	case drape.StencilOperationReplace:
		v = ref
	case drape.StencilOperationInvert:
		v = ^old
	case drape.StencilOperationIncrementClamp:
		v = old
		if v < 0xFF {
			v++
		}
	case drape.StencilOperationDecrementClamp:
		v = old
		if v > 0 {
			v--
		}
	case drape.StencilOperationIncrementWrap:
		v = old + 1
	case drape.StencilOperationDecrementWrap:
		v = old - 1
	default:
		return old
	}
	return (old &^ mask) | (v & mask)
}

func blendFactor(f gputypes.BlendFactor, srcAlpha float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrcAlpha:
		return srcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - srcAlpha
	default:
		return 1
	}
}

// blend combines a fragment color with the stored color.
func (s *State) blend(src, dst [4]float32) [4]float32 {
	out := src
	if s.Blend != nil {
		a := src[3]
		c, al := s.Blend.Color, s.Blend.Alpha
		for i := range 3 {
			out[i] = src[i]*blendFactor(c.SrcFactor, a) + dst[i]*blendFactor(c.DstFactor, a)
		}
		out[3] = src[3]*blendFactor(al.SrcFactor, a) + dst[3]*blendFactor(al.DstFactor, a)
	}
	for i := range 4 {
		if s.WriteMask&channelMask[i] == 0 {
			out[i] = dst[i]
			continue
		}
		out[i] = min(max(out[i], 0), 1)
	}
	return out
}
