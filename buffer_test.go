package drape

import (
	"slices"
	"testing"
)

func square(x, y, size float32) *Polygon {
	pts := []Point2D{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
	return NewPolygon(BoundsOf(pts, Range{-1, 1}), pts)
}

func triangle(x, y float32) *Polygon {
	pts := []Point2D{{x, y}, {x + 1, y}, {x, y + 1}, {x, y}}
	return NewPolygon(BoundsOf(pts, Range{-2, 2}), pts)
}

// resolve maps an index list through a vertex pool to triangle positions.
func resolve(pool []Vertex, idx []uint32) [][3]float32 {
	out := make([][3]float32, len(idx))
	for i, v := range idx {
		out[i] = pool[v].Position
	}
	return out
}

func TestPolygonBufferAddOffsets(t *testing.T) {
	buf := NewPolygonBuffer()
	a := buf.Add(square(0, 0, 1))
	b := buf.Add(triangle(5, 5))

	if got := len(buf.PolyhedronVertices()); got != 10+8 {
		t.Errorf("polyhedron pool = %d vertices, want 18", got)
	}
	if got := len(buf.BoundingBoxVertices()); got != 20 {
		t.Errorf("bounding box pool = %d vertices, want 20", got)
	}

	for _, v := range a.PolyhedronIndices() {
		if v >= 10 {
			t.Fatalf("first polygon index %d outside its range", v)
		}
	}
	for _, v := range b.PolyhedronIndices() {
		if v < 10 || v >= 18 {
			t.Fatalf("second polygon index %d outside [10, 18)", v)
		}
	}
	for _, v := range b.BoundingBoxIndices() {
		if v < 10 || v >= 20 {
			t.Fatalf("second bounding box index %d outside [10, 20)", v)
		}
	}
}

func TestPolygonBufferRoundTrip(t *testing.T) {
	p := triangle(3, 4)

	alone := NewPolygonBuffer()
	aloneIdx := alone.Add(p)

	batch := NewPolygonBuffer()
	batch.Add(square(0, 0, 2))
	batch.Add(square(10, 10, 1))
	batchIdx := batch.Add(p)

	got := resolve(batch.PolyhedronVertices(), batchIdx.PolyhedronIndices())
	want := resolve(alone.PolyhedronVertices(), aloneIdx.PolyhedronIndices())
	if !slices.Equal(got, want) {
		t.Error("polyhedron triangles differ between batched and standalone polygon")
	}

	got = resolve(batch.BoundingBoxVertices(), batchIdx.BoundingBoxIndices())
	want = resolve(alone.BoundingBoxVertices(), aloneIdx.BoundingBoxIndices())
	if !slices.Equal(got, want) {
		t.Error("bounding box triangles differ between batched and standalone polygon")
	}
}

func TestPolygonBufferIndicesIdentity(t *testing.T) {
	buf := NewPolygonBuffer()
	a := buf.Add(square(0, 0, 1))

	left := NewPolygonBufferIndices()
	left.Extend(a)
	right := a.Clone()
	right.Extend(NewPolygonBufferIndices())

	for _, got := range []PolygonBufferIndices{left, right} {
		if !slices.Equal(got.PolyhedronIndices(), a.PolyhedronIndices()) ||
			!slices.Equal(got.BoundingBoxIndices(), a.BoundingBoxIndices()) {
			t.Errorf("identity Extend changed indices: %v", got)
		}
	}

	var zero PolygonBufferIndices
	if !zero.Empty() || zero.Len() != 0 {
		t.Error("zero value should be empty")
	}
	if !NewPolygonBufferIndices().Empty() {
		t.Error("NewPolygonBufferIndices() should be empty")
	}
}

func TestPolygonBufferIndicesAssociative(t *testing.T) {
	buf := NewPolygonBuffer()
	a := buf.Add(square(0, 0, 1))
	b := buf.Add(triangle(4, 4))
	c := buf.Add(square(8, 0, 3))

	// (a + b) + c
	ab := a.Clone()
	ab.Extend(b)
	ab.Extend(c)

	// a + (b + c)
	bc := b.Clone()
	bc.Extend(c)
	abc := a.Clone()
	abc.Extend(bc)

	if !slices.Equal(ab.PolyhedronIndices(), abc.PolyhedronIndices()) {
		t.Error("Extend is not associative for polyhedron indices")
	}
	if !slices.Equal(ab.BoundingBoxIndices(), abc.BoundingBoxIndices()) {
		t.Error("Extend is not associative for bounding box indices")
	}
	wantLen := a.Len() + b.Len() + c.Len()
	if ab.Len() != wantLen {
		t.Errorf("Len() = %d, want %d", ab.Len(), wantLen)
	}
}

func TestPolygonBufferIndicesCloneIndependent(t *testing.T) {
	buf := NewPolygonBuffer()
	a := buf.Add(square(0, 0, 1))
	b := buf.Add(square(2, 0, 1))

	c := a.Clone()
	c.Extend(b)
	if a.Len() != 48 {
		t.Errorf("Extend on clone modified original: len %d", a.Len())
	}
}

func TestPolygonBufferEmpty(t *testing.T) {
	var buf PolygonBuffer
	if !buf.Empty() {
		t.Error("zero value buffer should be empty")
	}
	buf.Add(triangle(0, 0))
	if buf.Empty() {
		t.Error("buffer should not be empty after Add")
	}
}
