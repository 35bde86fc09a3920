// Package terrain builds a regular height-field mesh and draws it into the
// depth buffer that drape.DrapingRenderer tests against.
//
// The grid spans [0, Size-1] on both x and y, one vertex per integer
// coordinate. Vertices are colored with a red/green gradient along x/y so
// the draped layers are easy to tell apart from the ground.
package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
)

// ErrInvalidGrid is returned for grids with fewer than two vertices per side.
var ErrInvalidGrid = errors.New("terrain: invalid grid")

// Elevation returns the terrain height at (x, y).
type Elevation func(x, y float32) float32

// Flat is the z = 0 plane.
func Flat(_, _ float32) float32 { return 0 }

// Waves is a rolling surface with heights in [-10, 10].
func Waves(x, y float32) float32 {
	return (math32.Sin(x/3) + math32.Sin(y/2)) * 5
}

// Elevations maps configuration names to elevation functions.
var Elevations = map[string]Elevation{
	"flat":  Flat,
	"waves": Waves,
}

// VertexStride is the byte stride of an encoded Vertex: float32x3 position
// followed by float32x4 color.
const VertexStride = 28

// Vertex is one terrain mesh vertex.
type Vertex struct {
	Position [3]float32
	Color    drape.RGBA
}

// Layout is the vertex layout of EncodeVertices output, matching
// drape.ProgramVertexColor.
func Layout() drape.VertexLayout {
	return drape.VertexLayout{
		ArrayStride: VertexStride,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
		},
	}
}

// EncodeVertices packs vertices into little-endian bytes for upload.
func EncodeVertices(vertices []Vertex) []byte {
	data := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		off := i * VertexStride
		for j, f := range v.Position {
			binary.LittleEndian.PutUint32(data[off+j*4:], math.Float32bits(f))
		}
		for j, f := range v.Color.Array() {
			binary.LittleEndian.PutUint32(data[off+12+j*4:], math.Float32bits(f))
		}
	}
	return data
}

// Grid is a square height field.
type Grid struct {
	// Size is the number of vertices per side.
	Size int

	// Elevation gives the vertex heights. Nil means Flat.
	Elevation Elevation
}

// Validate reports whether the grid can be meshed.
func (g Grid) Validate() error {
	if g.Size < 2 {
		return fmt.Errorf("%w: size %d, need at least 2", ErrInvalidGrid, g.Size)
	}
	if uint64(g.Size)*uint64(g.Size) > math.MaxUint32 {
		return fmt.Errorf("%w: size %d overflows uint32 indices", ErrInvalidGrid, g.Size)
	}
	return nil
}

// Extent returns the largest coordinate on either axis.
func (g Grid) Extent() float32 {
	return float32(g.Size - 1)
}

// HeightAt evaluates the elevation function.
func (g Grid) HeightAt(x, y float32) float32 {
	if g.Elevation == nil {
		return 0
	}
	return g.Elevation(x, y)
}

// HeightRange returns the lowest and highest vertex heights.
func (g Grid) HeightRange() drape.Range {
	r := drape.Range{Min: math32.Inf(1), Max: math32.Inf(-1)}
	for y := range g.Size {
		for x := range g.Size {
			z := g.HeightAt(float32(x), float32(y))
			r.Min = math32.Min(r.Min, z)
			r.Max = math32.Max(r.Max, z)
		}
	}
	return r
}

// Vertices returns Size*Size vertices in row-major order (x fastest).
func (g Grid) Vertices() []Vertex {
	maxValue := g.Extent()
	vertices := make([]Vertex, 0, g.Size*g.Size)
	for y := range g.Size {
		for x := range g.Size {
			fx, fy := float32(x), float32(y)
			u, v := fx/maxValue, fy/maxValue
			vertices = append(vertices, Vertex{
				Position: [3]float32{fx, fy, g.HeightAt(fx, fy)},
				Color:    drape.RGBA{R: u, G: v, B: 0, A: 1},
			})
		}
	}
	return vertices
}

// Indices returns two triangles per cell, counter-clockwise seen from +z.
func (g Grid) Indices() []uint32 {
	n := g.Size
	indices := make([]uint32, 0, (n-1)*(n-1)*6)
	for y := range n - 1 {
		for x := range n - 1 {
			//nolint:gosec // G115: Validate bounds Size*Size to uint32
			a := uint32(x + y*n)
			b := a + 1
			c := a + uint32(n) //nolint:gosec // G115: see above
			d := c + 1
			indices = append(indices, a, b, c, b, d, c)
		}
	}
	return indices
}
