//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrStreamFinished is returned when a finished stream is used again.
var ErrStreamFinished = errors.New("wgpu: command stream already finished")

// CommandStream records draw bundles into one command encoder.
//
// A render pass stays open while consecutive bundles target the same
// textures. A new pass loads the existing contents, so depth written by an
// earlier terrain draw is visible to the draping passes. Per-draw uniform
// buffers and bind groups live until Finish.
type CommandStream struct {
	b       *Backend
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	color   *Texture
	depth   *Texture

	uniformBufs []hal.Buffer
	bindGroups  []hal.BindGroup
	passes      int
	finished    bool
}

var _ backend.Stream = (*CommandStream)(nil)

// NewCommandStream starts recording.
func (b *Backend) NewCommandStream() (*CommandStream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "drape_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("drape_stream"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return &CommandStream{b: b, encoder: encoder}, nil
}

// NewStream implements backend.Device.
func (b *Backend) NewStream() (backend.Stream, error) {
	return b.NewCommandStream()
}

func (s *CommandStream) targets(color drape.ColorTarget, depthStencil drape.DepthStencilTarget) (*Texture, *Texture, error) {
	c, err := s.b.textureOf(color)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.b.textureOf(depthStencil)
	if err != nil {
		return nil, nil, err
	}
	if c.width != d.width || c.height != d.height {
		return nil, nil, fmt.Errorf("wgpu: color %dx%d and depth/stencil %dx%d targets differ",
			c.width, c.height, d.width, d.height)
	}
	return c, d, nil
}

func (s *CommandStream) endPass() {
	if s.pass != nil {
		s.pass.End()
		s.pass = nil
		s.color, s.depth = nil, nil
	}
}

// beginPass opens a render pass on the targets. With a nil clear color the
// pass loads existing contents.
func (s *CommandStream) beginPass(color, depth *Texture, clear *drape.RGBA) {
	s.endPass()

	colorAttachment := hal.RenderPassColorAttachment{
		View:    color.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	depthAttachment := &hal.RenderPassDepthStencilAttachment{
		View:           depth.view,
		DepthLoadOp:    gputypes.LoadOpLoad,
		DepthStoreOp:   gputypes.StoreOpStore,
		StencilLoadOp:  gputypes.LoadOpLoad,
		StencilStoreOp: gputypes.StoreOpStore,
	}
	if clear != nil {
		colorAttachment.LoadOp = gputypes.LoadOpClear
		colorAttachment.ClearValue = gputypes.Color{
			R: float64(clear.R), G: float64(clear.G), B: float64(clear.B), A: float64(clear.A),
		}
		depthAttachment.DepthLoadOp = gputypes.LoadOpClear
		depthAttachment.DepthClearValue = 1.0
		depthAttachment.StencilLoadOp = gputypes.LoadOpClear
		depthAttachment.StencilClearValue = 0
	}

	s.passes++
	s.pass = s.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:                  fmt.Sprintf("drape_pass_%d", s.passes),
		ColorAttachments:       []hal.RenderPassColorAttachment{colorAttachment},
		DepthStencilAttachment: depthAttachment,
	})
	s.color, s.depth = color, depth
}

// Clear implements backend.Stream.
func (s *CommandStream) Clear(color drape.ColorTarget, depthStencil drape.DepthStencilTarget, c drape.RGBA) error {
	if s.finished {
		return ErrStreamFinished
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if err := s.b.checkOpen(); err != nil {
		return err
	}
	ct, dt, err := s.targets(color, depthStencil)
	if err != nil {
		return err
	}
	s.beginPass(ct, dt, &c)
	return nil
}

// Submit implements drape.CommandStream.
func (s *CommandStream) Submit(bundle *drape.DrawBundle) error {
	if s.finished {
		return ErrStreamFinished
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if err := s.b.checkOpen(); err != nil {
		return err
	}
	ct, dt, err := s.targets(bundle.Color, bundle.DepthStencil)
	if err != nil {
		return err
	}

	// Resolve every handle before recording so a bad draw leaves the pass
	// untouched.
	type resolved struct {
		pipeline *pipeline
		vertices *buffer
		indices  *buffer
	}
	draws := make([]resolved, len(bundle.Draws))
	for i := range bundle.Draws {
		dc := &bundle.Draws[i]
		p, ok := dc.Pipeline.(*pipeline)
		if !ok || p.owner != s.b {
			return fmt.Errorf("%s: draw %d: %w: pipeline", bundle.Label, i, ErrForeignHandle)
		}
		vb, ok := dc.VertexBuffer.(*buffer)
		if !ok || vb.owner != s.b || vb.raw == nil {
			return fmt.Errorf("%s: draw %d: %w: vertex buffer", bundle.Label, i, ErrForeignHandle)
		}
		ib, ok := dc.IndexBuffer.(*buffer)
		if !ok || ib.owner != s.b || ib.raw == nil {
			return fmt.Errorf("%s: draw %d: %w: index buffer", bundle.Label, i, ErrForeignHandle)
		}
		if uint64(dc.IndexCount)*4 > ib.size {
			return fmt.Errorf("%s: draw %d: index count %d exceeds buffer of %d bytes",
				bundle.Label, i, dc.IndexCount, ib.size)
		}
		draws[i] = resolved{pipeline: p, vertices: vb, indices: ib}
	}

	if s.pass == nil || s.color != ct || s.depth != dt {
		s.beginPass(ct, dt, nil)
	}

	for i := range bundle.Draws {
		dc := &bundle.Draws[i]
		bindGroup, err := s.uniformBindGroup(dc.Uniforms)
		if err != nil {
			return fmt.Errorf("%s: draw %d: %w", bundle.Label, i, err)
		}
		r := draws[i]
		s.pass.SetPipeline(r.pipeline.raw)
		s.pass.SetBindGroup(0, bindGroup, nil)
		s.pass.SetVertexBuffer(0, r.vertices.raw, 0)
		s.pass.SetIndexBuffer(r.indices.raw, gputypes.IndexFormatUint32, 0)
		s.pass.SetStencilReference(dc.StencilReference)
		s.pass.DrawIndexed(dc.IndexCount, 1, 0, 0, 0)
	}
	return nil
}

// uniformBindGroup uploads one draw's uniforms. The buffer and bind group
// are released by Finish.
func (s *CommandStream) uniformBindGroup(u drape.Uniforms) (hal.BindGroup, error) {
	buf, err := s.b.createAndUploadBuffer("drape_uniforms", u.Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	s.uniformBufs = append(s.uniformBufs, buf)

	bindGroup, err := s.b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "drape_uniform_bind",
		Layout: s.b.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: drape.UniformSize,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform bind group: %w", err)
	}
	s.bindGroups = append(s.bindGroups, bindGroup)
	return bindGroup, nil
}

// Finish implements backend.Stream: it ends the pass, submits, waits on a
// fence and frees per-draw resources.
func (s *CommandStream) Finish() error {
	if s.finished {
		return ErrStreamFinished
	}
	s.finished = true

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if err := s.b.checkOpen(); err != nil {
		return err
	}
	defer s.release()

	s.endPass()
	cmdBuf, err := s.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.b.device.FreeCommandBuffer(cmdBuf)

	return s.b.submitAndWait(cmdBuf)
}

func (s *CommandStream) release() {
	for _, bg := range s.bindGroups {
		s.b.device.DestroyBindGroup(bg)
	}
	for _, buf := range s.uniformBufs {
		s.b.device.DestroyBuffer(buf)
	}
	s.bindGroups, s.uniformBufs = nil, nil
}

// submitAndWait submits one command buffer and blocks until the GPU is done.
func (b *Backend) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return b.waitFence(fence, 1)
}

// waitFence blocks until fence reaches value or the fence timeout expires.
func (b *Backend) waitFence(fence hal.Fence, value uint64) error {
	ok, err := b.device.Wait(fence, value, b.fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w after %v", ErrFenceTimeout, b.fenceTimeout)
	}
	return nil
}
