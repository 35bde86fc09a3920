package drape

// PolygonBuffer accumulates the prism vertices of many polygons in two
// shared pools, one for polyhedra and one for bounding boxes.
//
// The pools only grow. Offsets handed out by Add stay valid for the
// lifetime of the buffer, so index sets from earlier calls can be combined
// freely with later ones.
//
// The zero value is an empty buffer ready for use.
type PolygonBuffer struct {
	polyhedron  []Vertex
	boundingBox []Vertex
}

// NewPolygonBuffer returns an empty buffer.
func NewPolygonBuffer() *PolygonBuffer {
	return &PolygonBuffer{}
}

// Add appends the polygon's vertices to the buffer and returns the index
// set that draws it.
func (b *PolygonBuffer) Add(p *Polygon) PolygonBufferIndices {
	//nolint:gosec // G115: pool sizes are bounded by uint32 index range
	polyhedronOffset := uint32(len(b.polyhedron))
	//nolint:gosec // G115: pool sizes are bounded by uint32 index range
	boundingBoxOffset := uint32(len(b.boundingBox))

	b.polyhedron = append(b.polyhedron, p.PolyhedronVertices()...)
	b.boundingBox = append(b.boundingBox, p.BoundingBoxVertices()...)

	return PolygonBufferIndices{
		polyhedron:  offsetIndices(p.PolyhedronIndices(), polyhedronOffset),
		boundingBox: offsetIndices(p.BoundingBoxIndices(), boundingBoxOffset),
	}
}

// PolyhedronVertices returns the polyhedron pool. The slice must not be
// modified.
func (b *PolygonBuffer) PolyhedronVertices() []Vertex {
	return b.polyhedron
}

// BoundingBoxVertices returns the bounding-box pool. The slice must not be
// modified.
func (b *PolygonBuffer) BoundingBoxVertices() []Vertex {
	return b.boundingBox
}

// Empty reports whether no polygon has been added.
func (b *PolygonBuffer) Empty() bool {
	return len(b.polyhedron) == 0 && len(b.boundingBox) == 0
}

func offsetIndices(indices []uint32, offset uint32) []uint32 {
	for i := range indices {
		indices[i] += offset
	}
	return indices
}

// PolygonBufferIndices selects a set of polygons from one PolygonBuffer.
//
// Index sets produced by the same buffer can be merged with Extend and
// drawn together. Pairing an index set with a buffer other than the one that
// produced it is not detected and draws garbage.
//
// The zero value is the empty set.
type PolygonBufferIndices struct {
	polyhedron  []uint32
	boundingBox []uint32
}

// NewPolygonBufferIndices returns the empty index set. Rendering it draws
// nothing and extending by it changes nothing.
func NewPolygonBufferIndices() PolygonBufferIndices {
	return PolygonBufferIndices{}
}

// Extend appends other's indices to i.
func (i *PolygonBufferIndices) Extend(other PolygonBufferIndices) {
	i.polyhedron = append(i.polyhedron, other.polyhedron...)
	i.boundingBox = append(i.boundingBox, other.boundingBox...)
}

// Clone returns an independent copy of the index set.
func (i PolygonBufferIndices) Clone() PolygonBufferIndices {
	return PolygonBufferIndices{
		polyhedron:  append([]uint32(nil), i.polyhedron...),
		boundingBox: append([]uint32(nil), i.boundingBox...),
	}
}

// PolyhedronIndices returns the polyhedron index list. The slice must not be
// modified.
func (i PolygonBufferIndices) PolyhedronIndices() []uint32 {
	return i.polyhedron
}

// BoundingBoxIndices returns the bounding-box index list. The slice must not
// be modified.
func (i PolygonBufferIndices) BoundingBoxIndices() []uint32 {
	return i.boundingBox
}

// Len returns the number of polyhedron indices.
func (i PolygonBufferIndices) Len() int {
	return len(i.polyhedron)
}

// Empty reports whether the set selects nothing.
func (i PolygonBufferIndices) Empty() bool {
	return len(i.polyhedron) == 0 && len(i.boundingBox) == 0
}
