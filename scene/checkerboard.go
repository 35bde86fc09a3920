package scene

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/drape"
)

// Board is a checkerboard of inset squares sharing one polygon buffer.
// Even and Odd split the squares by the parity of their cell coordinates.
type Board struct {
	Buffer *drape.PolygonBuffer
	Even   drape.PolygonBufferIndices
	Odd    drape.PolygonBufferIndices
}

// Checkerboard covers [0, extent] with square cells of side cell, each
// polygon inset from its cell border by inset. Every square gets its cell as
// x/y bounds and heights as its z range.
func Checkerboard(extent, cell, inset float32, heights drape.Range) *Board {
	b := &Board{
		Buffer: drape.NewPolygonBuffer(),
		Even:   drape.NewPolygonBufferIndices(),
		Odd:    drape.NewPolygonBufferIndices(),
	}
	if cell <= 0 {
		return b
	}
	n := int(math32.Floor(extent / cell))
	for x := range n {
		for y := range n {
			x0, y0 := float32(x)*cell, float32(y)*cell
			x1, y1 := x0+cell, y0+cell
			bounds := drape.Bounds3D{
				{Min: x0, Max: x1},
				{Min: y0, Max: y1},
				heights,
			}
			points := []drape.Point2D{
				drape.Pt(x0+inset, y0+inset),
				drape.Pt(x1-inset, y0+inset),
				drape.Pt(x1-inset, y1-inset),
				drape.Pt(x0+inset, y1-inset),
				drape.Pt(x0+inset, y0+inset),
			}
			indices := b.Buffer.Add(drape.NewPolygon(bounds, points))
			if x%2 == y%2 {
				b.Even.Extend(indices)
			} else {
				b.Odd.Extend(indices)
			}
		}
	}
	return b
}
