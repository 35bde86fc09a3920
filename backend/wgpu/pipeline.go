//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// pipeline is a compiled render pipeline shared through the cache.
type pipeline struct {
	label   string
	program drape.Program
	raw     hal.RenderPipeline
	owner   *Backend

	key  uint64
	refs atomic.Int64
}

func (p *pipeline) Label() string { return p.label }

// stencilOps maps drape stencil operations to HAL ones.
var stencilOps = [...]hal.StencilOperation{
	drape.StencilOperationKeep:           hal.StencilOperationKeep,
	drape.StencilOperationZero:           hal.StencilOperationZero,
	drape.StencilOperationReplace:        hal.StencilOperationReplace,
	drape.StencilOperationInvert:         hal.StencilOperationInvert,
	drape.StencilOperationIncrementClamp: hal.StencilOperationIncrementClamp,
	drape.StencilOperationDecrementClamp: hal.StencilOperationDecrementClamp,
	drape.StencilOperationIncrementWrap:  hal.StencilOperationIncrementWrap,
	drape.StencilOperationDecrementWrap:  hal.StencilOperationDecrementWrap,
}

func halStencilOp(op drape.StencilOperation) (hal.StencilOperation, error) {
	if int(op) >= len(stencilOps) {
		return hal.StencilOperationKeep, fmt.Errorf("wgpu: unknown stencil operation %v", op)
	}
	return stencilOps[op], nil
}

func halStencilFace(f drape.StencilFaceState) (hal.StencilFaceState, error) {
	fail, err := halStencilOp(f.FailOp)
	if err != nil {
		return hal.StencilFaceState{}, err
	}
	depthFail, err := halStencilOp(f.DepthFailOp)
	if err != nil {
		return hal.StencilFaceState{}, err
	}
	pass, err := halStencilOp(f.PassOp)
	if err != nil {
		return hal.StencilFaceState{}, err
	}
	return hal.StencilFaceState{
		Compare:     f.Compare,
		FailOp:      fail,
		DepthFailOp: depthFail,
		PassOp:      pass,
	}, nil
}

// renderPipelineDescriptor translates a drape descriptor to HAL.
func (b *Backend) renderPipelineDescriptor(desc *drape.PipelineDescriptor) (*hal.RenderPipelineDescriptor, error) {
	module, ok := b.shaders[desc.Program]
	if !ok {
		return nil, fmt.Errorf("wgpu: no shader for program %s", desc.Program)
	}
	front, err := halStencilFace(desc.DepthStencil.StencilFront)
	if err != nil {
		return nil, err
	}
	back, err := halStencilFace(desc.DepthStencil.StencilBack)
	if err != nil {
		return nil, err
	}

	return &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: desc.Vertex.ArrayStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes:  desc.Vertex.Attributes,
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.ColorFormat,
					Blend:     desc.Blend,
					WriteMask: desc.ColorWriteMask,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            desc.DepthStencil.Format,
			DepthWriteEnabled: desc.DepthStencil.DepthWriteEnabled,
			DepthCompare:      desc.DepthStencil.DepthCompare,
			StencilFront:      front,
			StencilBack:       back,
			StencilReadMask:   desc.DepthStencil.StencilReadMask,
			StencilWriteMask:  desc.DepthStencil.StencilWriteMask,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Primitive: desc.Primitive,
	}, nil
}

// CreatePipeline implements drape.GraphicsBackend. Identical descriptors
// share one compiled pipeline.
func (b *Backend) CreatePipeline(desc *drape.PipelineDescriptor) (drape.Pipeline, error) {
	if desc == nil {
		return nil, errors.New("wgpu: pipeline descriptor is nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	p, err := b.pipelines.getOrCreate(desc, func(desc *drape.PipelineDescriptor) (*pipeline, error) {
		halDesc, err := b.renderPipelineDescriptor(desc)
		if err != nil {
			return nil, err
		}
		raw, err := b.device.CreateRenderPipeline(halDesc)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", desc.Label, err)
		}
		drape.Logger().Debug("wgpu: pipeline created", "label", desc.Label, "program", desc.Program)
		return &pipeline{label: desc.Label, program: desc.Program, raw: raw, owner: b}, nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DestroyPipeline implements drape.GraphicsBackend.
func (b *Backend) DestroyPipeline(p drape.Pipeline) {
	wp, ok := p.(*pipeline)
	if !ok || wp.owner != b {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.pipelines.release(wp) {
		b.device.DestroyRenderPipeline(wp.raw)
	}
}
