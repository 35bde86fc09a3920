package drape

// Point2D is a point in the terrain's horizontal plane.
type Point2D struct {
	X, Y float32
}

// Pt is a convenience constructor for Point2D.
func Pt(x, y float32) Point2D {
	return Point2D{X: x, Y: y}
}

// Ring is a closed sequence of points: the first and last entries are equal.
//
// Exterior rings are expected to be counter-clockwise and interior rings
// (holes) clockwise when viewed from above (+Z). The renderer never checks
// this; the helpers below exist for callers that need to normalize input.
type Ring []Point2D

// SignedArea returns the shoelace area of the ring. It is positive for a
// counter-clockwise ring. The closing point may be present or absent.
func (r Ring) SignedArea() float32 {
	n := len(r)
	if n < 3 {
		return 0
	}
	// Accumulate in float64; large coordinates lose too much in float32.
	var sum float64
	for i := range n {
		a := r[i]
		b := r[(i+1)%n]
		sum += float64(a.X)*float64(b.Y) - float64(b.X)*float64(a.Y)
	}
	return float32(sum / 2)
}

// IsCCW reports whether the ring winds counter-clockwise.
func (r Ring) IsCCW() bool {
	return r.SignedArea() > 0
}

// Reversed returns a copy of the ring with the opposite winding.
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Closed returns the ring with its first point appended when the ring is
// not already closed. A closed ring is returned unchanged.
func (r Ring) Closed() Ring {
	if len(r) == 0 || r[0] == r[len(r)-1] {
		return r
	}
	out := make(Ring, len(r), len(r)+1)
	copy(out, r)
	return append(out, r[0])
}

// Range is a closed interval [Min, Max].
type Range struct {
	Min, Max float32
}

// Span returns Max - Min.
func (r Range) Span() float32 {
	return r.Max - r.Min
}

// Bounds3D holds the extent of a polygon along x, y and z, in that order.
// The z range is the height interval the prism spans; it must enclose the
// terrain under the polygon.
type Bounds3D [3]Range

// X returns the x extent.
func (b Bounds3D) X() Range { return b[0] }

// Y returns the y extent.
func (b Bounds3D) Y() Range { return b[1] }

// Z returns the height extent.
func (b Bounds3D) Z() Range { return b[2] }

// BoundsOf computes the x/y extent of points and pairs it with the height
// range z.
func BoundsOf(points []Point2D, z Range) Bounds3D {
	if len(points) == 0 {
		return Bounds3D{{}, {}, z}
	}
	xr := Range{Min: points[0].X, Max: points[0].X}
	yr := Range{Min: points[0].Y, Max: points[0].Y}
	for _, p := range points[1:] {
		xr.Min = min(xr.Min, p.X)
		xr.Max = max(xr.Max, p.X)
		yr.Min = min(yr.Min, p.Y)
		yr.Max = max(yr.Max, p.Y)
	}
	return Bounds3D{xr, yr, z}
}
