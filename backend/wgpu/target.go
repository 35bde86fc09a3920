//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is an offscreen render target. It implements both
// drape.ColorTarget and drape.DepthStencilTarget; which one it serves
// depends on its format.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	width  uint32
	height uint32
	owner  *Backend
}

// Format implements drape.ColorTarget and drape.DepthStencilTarget.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height uint32) { return t.width, t.height }

// View returns the texture view used as a render attachment.
func (t *Texture) View() hal.TextureView { return t.view }

// WrapView adopts a view owned by the caller, typically a surface texture,
// as a render target. Destroying it with DestroyTargets is a no-op.
func (b *Backend) WrapView(view hal.TextureView, format gputypes.TextureFormat, width, height uint32) *Texture {
	return &Texture{view: view, format: format, width: width, height: height, owner: b}
}

func (b *Backend) createTexture(label string, width, height uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*Texture, error) {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s texture view: %w", label, err)
	}
	return &Texture{tex: tex, view: view, format: format, width: width, height: height, owner: b}, nil
}

// NewTargets implements backend.Device. The color target is BGRA8Unorm,
// matching the renderer's default color format, and can be read back.
func (b *Backend) NewTargets(width, height int) (drape.ColorTarget, drape.DepthStencilTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("wgpu: invalid target size %dx%d", width, height)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, nil, err
	}

	//nolint:gosec // G115: checked positive above
	w, h := uint32(width), uint32(height)
	color, err := b.createTexture("drape_color", w, h, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return nil, nil, err
	}
	depth, err := b.createTexture("drape_depth_stencil", w, h, gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureUsageRenderAttachment)
	if err != nil {
		b.destroyTexture(color)
		return nil, nil, err
	}
	return color, depth, nil
}

// DestroyTargets implements backend.Device.
func (b *Backend) DestroyTargets(color drape.ColorTarget, depthStencil drape.DepthStencilTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if t, ok := color.(*Texture); ok && t.owner == b {
		b.destroyTexture(t)
	}
	if t, ok := depthStencil.(*Texture); ok && t.owner == b {
		b.destroyTexture(t)
	}
}

// destroyTexture releases the view and texture. Wrapped views are left to
// their owner.
func (b *Backend) destroyTexture(t *Texture) {
	if t.tex == nil {
		return
	}
	if t.view != nil {
		b.device.DestroyTextureView(t.view)
		t.view = nil
	}
	b.device.DestroyTexture(t.tex)
	t.tex = nil
}

func (b *Backend) textureOf(target any) (*Texture, error) {
	t, ok := target.(*Texture)
	if !ok || t == nil || t.owner != b || t.view == nil {
		return nil, fmt.Errorf("%w: target %T", ErrForeignHandle, target)
	}
	return t, nil
}
