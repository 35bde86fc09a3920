package soft

import (
	"image"

	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// ColorBuffer is a straight-alpha RGBA float32 color target.
type ColorBuffer struct {
	width, height int
	pix           []float32
}

// NewColorBuffer allocates a transparent black color target.
func NewColorBuffer(width, height int) *ColorBuffer {
	return &ColorBuffer{
		width:  width,
		height: height,
		pix:    make([]float32, 4*width*height),
	}
}

// Format implements drape.ColorTarget.
func (c *ColorBuffer) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Size returns the target dimensions.
func (c *ColorBuffer) Size() (width, height int) {
	return c.width, c.height
}

// Clear fills the target with col.
func (c *ColorBuffer) Clear(col drape.RGBA) {
	v := col.Array()
	for i := 0; i < len(c.pix); i += 4 {
		copy(c.pix[i:i+4], v[:])
	}
}

// At returns the color of pixel (x, y).
func (c *ColorBuffer) At(x, y int) drape.RGBA {
	i := 4 * (y*c.width + x)
	return drape.RGBA{R: c.pix[i], G: c.pix[i+1], B: c.pix[i+2], A: c.pix[i+3]}
}

// Image converts the target to an 8-bit image.
func (c *ColorBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))
	for y := range c.height {
		for x := range c.width {
			img.SetNRGBA(x, y, c.At(x, y).NRGBA())
		}
	}
	return img
}

// DownsampledImage converts the target to an image 1/factor its size.
// It is used to resolve supersampled renders. Filtering happens on
// premultiplied values so transparent pixels do not darken edges.
func (c *ColorBuffer) DownsampledImage(factor int) *image.NRGBA {
	if factor <= 1 {
		return c.Image()
	}
	src := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for y := range c.height {
		for x := range c.width {
			p := c.At(x, y)
			i := src.PixOffset(x, y)
			src.Pix[i] = clamp8(p.R * p.A)
			src.Pix[i+1] = clamp8(p.G * p.A)
			src.Pix[i+2] = clamp8(p.B * p.A)
			src.Pix[i+3] = clamp8(p.A)
		}
	}

	w, h := max(c.width/factor, 1), max(c.height/factor, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	// image.RGBA is premultiplied; draw converts it to straight alpha.
	out := image.NewNRGBA(dst.Bounds())
	draw.Draw(out, out.Bounds(), dst, image.Point{}, draw.Src)
	return out
}

func clamp8(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}

// DepthStencilBuffer is a float32 depth plane with an 8-bit stencil plane.
type DepthStencilBuffer struct {
	width, height int
	depth         []float32
	stencil       []uint8
}

// NewDepthStencilBuffer allocates a target with depth 1 and stencil 0.
func NewDepthStencilBuffer(width, height int) *DepthStencilBuffer {
	d := &DepthStencilBuffer{
		width:   width,
		height:  height,
		depth:   make([]float32, width*height),
		stencil: make([]uint8, width*height),
	}
	d.Clear(1, 0)
	return d
}

// Format implements drape.DepthStencilTarget.
func (d *DepthStencilBuffer) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatDepth24PlusStencil8
}

// Size returns the target dimensions.
func (d *DepthStencilBuffer) Size() (width, height int) {
	return d.width, d.height
}

// Clear resets every pixel.
func (d *DepthStencilBuffer) Clear(depth float32, stencil uint8) {
	for i := range d.depth {
		d.depth[i] = depth
	}
	for i := range d.stencil {
		d.stencil[i] = stencil
	}
}

// DepthAt returns the depth of pixel (x, y).
func (d *DepthStencilBuffer) DepthAt(x, y int) float32 {
	return d.depth[y*d.width+x]
}

// StencilAt returns the stencil value of pixel (x, y).
func (d *DepthStencilBuffer) StencilAt(x, y int) uint8 {
	return d.stencil[y*d.width+x]
}

// NonZeroStencil counts pixels with a non-zero stencil value.
func (d *DepthStencilBuffer) NonZeroStencil() int {
	n := 0
	for _, s := range d.stencil {
		if s != 0 {
			n++
		}
	}
	return n
}
