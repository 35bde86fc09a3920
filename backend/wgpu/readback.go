//go:build !nogpu

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the WebGPU row alignment for texture-to-buffer copies.
const copyPitchAlignment = 256

// ReadPixels implements backend.Device. It copies a BGRA8 or RGBA8 color
// target into a staging buffer and waits for the copy.
func (b *Backend) ReadPixels(target drape.ColorTarget) (*image.NRGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	t, err := b.textureOf(target)
	if err != nil {
		return nil, err
	}
	if t.tex == nil {
		return nil, fmt.Errorf("%w: wrapped view cannot be read back", ErrForeignHandle)
	}
	swap := false
	switch t.format {
	case gputypes.TextureFormatBGRA8Unorm:
		swap = true
	case gputypes.TextureFormatRGBA8Unorm:
	default:
		return nil, fmt.Errorf("wgpu: cannot read back format %v", t.format)
	}

	w, h := t.width, t.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "drape_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("drape_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "drape_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	// The copy needs the texture in a transfer-source layout; move it back
	// afterwards so the next render pass finds it as an attachment.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	if err := b.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	copyRows(img.Pix, readback, int(bytesPerRow), int(alignedBytesPerRow), int(h), swap)
	return img, nil
}

// copyRows strips per-row padding from src into dst, optionally swapping
// BGRA to RGBA.
func copyRows(dst, src []byte, rowBytes, srcStride, rows int, swapRB bool) {
	for y := range rows {
		d := dst[y*rowBytes : (y+1)*rowBytes]
		copy(d, src[y*srcStride:y*srcStride+rowBytes])
		if swapRB {
			for i := 0; i < len(d); i += 4 {
				d[i], d[i+2] = d[i+2], d[i]
			}
		}
	}
}
