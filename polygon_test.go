package drape

import (
	"slices"
	"testing"
)

func TestNewPolygonCopiesPoints(t *testing.T) {
	pts := []Point2D{{0, 0}, {2, 0}, {2, 2}, {0, 0}}
	p := NewPolygon(Bounds3D{{0, 2}, {0, 2}, {-1, 1}}, pts)
	pts[1] = Point2D{99, 99}

	if got := p.Points()[1]; got != (Point2D{2, 0}) {
		t.Errorf("polygon aliased caller slice: point 1 = %v", got)
	}
}

func TestPolygonBoundingBoxVertices(t *testing.T) {
	p := NewPolygon(Bounds3D{{1, 4}, {2, 6}, {-3, 5}}, []Point2D{{1, 2}, {4, 2}, {4, 6}, {1, 2}})
	got := p.BoundingBoxVertices()
	want := []Vertex{
		{[3]float32{1, 2, -3}}, {[3]float32{1, 2, 5}},
		{[3]float32{4, 2, -3}}, {[3]float32{4, 2, 5}},
		{[3]float32{4, 6, -3}}, {[3]float32{4, 6, 5}},
		{[3]float32{1, 6, -3}}, {[3]float32{1, 6, 5}},
		{[3]float32{1, 2, -3}}, {[3]float32{1, 2, 5}},
	}
	if !slices.Equal(got, want) {
		t.Errorf("BoundingBoxVertices() =\n%v\nwant\n%v", got, want)
	}
	if !slices.Equal(p.BoundingBoxIndices(), PrismIndices(5)) {
		t.Error("BoundingBoxIndices() should be the 5-point prism")
	}
}

func TestPolygonPolyhedron(t *testing.T) {
	p := NewPolygon(Bounds3D{{0, 1}, {0, 1}, {0, 1}}, unitSquare)
	if got := len(p.PolyhedronVertices()); got != 10 {
		t.Errorf("len(PolyhedronVertices()) = %d, want 10", got)
	}
	if got := len(p.PolyhedronIndices()); got != 48 {
		t.Errorf("len(PolyhedronIndices()) = %d, want 48", got)
	}
}

func TestNewPolygonFromRings(t *testing.T) {
	exterior := Ring{{0, 0}, {10, 0}, {10, 8}, {0, 8}, {0, 0}}
	hole := Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}}
	p := NewPolygonFromRings(Range{-5, 5}, exterior, hole)

	want := Bounds3D{{0, 10}, {0, 8}, {-5, 5}}
	if p.Bounds() != want {
		t.Errorf("Bounds() = %v, want %v", p.Bounds(), want)
	}
	if p.Len() != 10 {
		t.Errorf("Len() = %d, want 10", p.Len())
	}
	if got := p.Points()[5]; got != hole[0] {
		t.Errorf("hole should follow exterior, point 5 = %v", got)
	}
}

func TestRingHelpers(t *testing.T) {
	ccw := Ring(unitSquare)
	if !ccw.IsCCW() {
		t.Error("unit square should be CCW")
	}
	if ccw.SignedArea() != 1 {
		t.Errorf("SignedArea() = %v, want 1", ccw.SignedArea())
	}
	cw := ccw.Reversed()
	if cw.IsCCW() {
		t.Error("reversed square should be CW")
	}
	if cw.SignedArea() != -1 {
		t.Errorf("reversed SignedArea() = %v, want -1", cw.SignedArea())
	}

	open := Ring{{0, 0}, {1, 0}, {1, 1}}
	closed := open.Closed()
	if len(closed) != 4 || closed[3] != open[0] {
		t.Errorf("Closed() = %v", closed)
	}
	if len(open) != 3 {
		t.Error("Closed() modified its receiver")
	}
	if got := closed.Closed(); len(got) != 4 {
		t.Errorf("Closed() on closed ring added a point: %v", got)
	}
}

func TestBoundsOf(t *testing.T) {
	got := BoundsOf([]Point2D{{3, -1}, {-2, 5}, {0, 0}}, Range{1, 2})
	want := Bounds3D{{-2, 3}, {-1, 5}, {1, 2}}
	if got != want {
		t.Errorf("BoundsOf() = %v, want %v", got, want)
	}
	if got := BoundsOf(nil, Range{1, 2}); got.Z() != (Range{1, 2}) {
		t.Errorf("BoundsOf(nil).Z() = %v", got.Z())
	}
}
