package drape

// Vertex is a single prism vertex.
type Vertex struct {
	Position [3]float32
}

// PrismVertices extrudes points into a vertical prism spanning [lo, hi].
// Point i produces vertex 2i at height lo and vertex 2i+1 at height hi.
func PrismVertices(points []Point2D, lo, hi float32) []Vertex {
	out := make([]Vertex, 0, 2*len(points))
	for _, p := range points {
		out = append(out,
			Vertex{Position: [3]float32{p.X, p.Y, lo}},
			Vertex{Position: [3]float32{p.X, p.Y, hi}},
		)
	}
	return out
}

// PrismIndexCount returns the number of indices PrismIndices(n) produces.
func PrismIndexCount(n int) int {
	if n <= 0 {
		return 0
	}
	return 6*n + 6*max(n-2, 0)
}

// PrismIndices triangulates the prism produced by PrismVertices for n
// points.
//
// Every point contributes one side quad (two triangles) joining it to the
// next point, wrapping at the end. Every point other than the first and the
// last also contributes one bottom and one top cap triangle, fanned from
// vertices 0 and 1. For a counter-clockwise ring the walls face outward,
// the top cap faces up and the bottom cap faces down.
//
// For a closed ring (first point repeated last) the wrap-around quad from the
// last point back to the first is degenerate. It stays in the output so the
// index layout depends on n only.
func PrismIndices(n int) []uint32 {
	out := make([]uint32, 0, PrismIndexCount(n))
	for i := range n {
		below := uint32(2 * i) //nolint:gosec // G115: point counts fit uint32
		above := below + 1
		nextBelow := uint32(2 * ((i + 1) % n)) //nolint:gosec // G115: point counts fit uint32
		nextAbove := nextBelow + 1

		out = append(out,
			below, nextBelow, above,
			nextBelow, nextAbove, above,
		)
		if i != 0 && i != n-1 {
			out = append(out,
				0, nextBelow, below,
				1, above, nextAbove,
			)
		}
	}
	return out
}
