package viewer

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// upperHalf draws the top pixel in the foreground color and the bottom pixel
// in the background color of one terminal cell.
const upperHalf = "▀"

// HalfBlocks converts img into lines of half-block cells, two image rows per
// line. An odd last row is paired with black.
func HalfBlocks(img *image.NRGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.NRGBAAt(x, y)
			bottom := color.NRGBA{A: 255}
			if y+1 < b.Max.Y {
				bottom = img.NRGBAAt(x, y+1)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom)).
				Render(upperHalf))
		}
	}
	return sb.String()
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}
