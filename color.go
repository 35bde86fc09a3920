package drape

import "image/color"

// RGBA is a straight-alpha color with float32 components in [0, 1].
// The bounding-box pass blends it with SrcAlpha / OneMinusSrcAlpha.
type RGBA struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black = RGBA{0, 0, 0, 1}
	White = RGBA{1, 1, 1, 1}
	Red   = RGBA{1, 0, 0, 1}
	Green = RGBA{0, 1, 0, 1}
	Blue  = RGBA{0, 0, 1, 1}
)

// RGBAFrom converts any color.Color to RGBA, undoing premultiplication.
func RGBAFrom(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// WithAlpha returns the color with its alpha replaced.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// Array returns the components as [4]float32.
func (c RGBA) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// NRGBA converts to an 8-bit straight-alpha color, clamping to [0, 1].
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func to8(v float32) uint8 {
	v = min(max(v, 0), 1)
	return uint8(v*255 + 0.5)
}
