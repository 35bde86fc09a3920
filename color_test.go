package drape

import (
	"image/color"
	"testing"
)

func TestRGBAFrom(t *testing.T) {
	tests := []struct {
		name string
		in   color.Color
		want RGBA
	}{
		{"opaque red", color.RGBA{R: 255, A: 255}, Red},
		{"transparent", color.RGBA{}, RGBA{}},
		{"premultiplied half white", color.RGBA{R: 128, G: 128, B: 128, A: 128}, RGBA{1, 1, 1, 128.0 / 255}},
		{"straight", color.NRGBA{R: 51, G: 102, B: 153, A: 255}, RGBA{0.2, 0.4, 0.6, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGBAFrom(tt.in)
			for i, c := range got.Array() {
				if d := c - tt.want.Array()[i]; d > 0.005 || d < -0.005 {
					t.Errorf("RGBAFrom() = %+v, want %+v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestRGBANRGBA(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want color.NRGBA
	}{
		{"white", White, color.NRGBA{255, 255, 255, 255}},
		{"half blue", Blue.WithAlpha(0.5), color.NRGBA{0, 0, 255, 128}},
		{"clamped", RGBA{-1, 2, 0.5, 1}, color.NRGBA{0, 255, 128, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.NRGBA(); got != tt.want {
				t.Errorf("NRGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRGBAWithAlpha(t *testing.T) {
	c := Green.WithAlpha(0.25)
	if c.A != 0.25 || c.G != 1 {
		t.Errorf("WithAlpha(0.25) = %+v", c)
	}
	if Green.A != 1 {
		t.Error("WithAlpha modified the receiver")
	}
}
