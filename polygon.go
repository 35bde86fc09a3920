package drape

// Polygon is a flat polygon to be draped over terrain.
//
// points holds the exterior ring followed by any interior rings, each ring
// closed. bounds must enclose the points in x and y and span the terrain
// heights under the polygon in z. A Polygon is immutable once created.
type Polygon struct {
	bounds Bounds3D
	points []Point2D
}

// NewPolygon creates a polygon from its bounds and the concatenated rings.
// points is copied.
func NewPolygon(bounds Bounds3D, points []Point2D) *Polygon {
	return &Polygon{
		bounds: bounds,
		points: append([]Point2D(nil), points...),
	}
}

// NewPolygonFromRings creates a polygon from an exterior ring and optional
// holes. The x/y bounds are taken from the exterior ring; heights becomes
// the z range.
func NewPolygonFromRings(heights Range, exterior Ring, holes ...Ring) *Polygon {
	n := len(exterior)
	for _, h := range holes {
		n += len(h)
	}
	points := make([]Point2D, 0, n)
	points = append(points, exterior...)
	for _, h := range holes {
		points = append(points, h...)
	}
	return &Polygon{
		bounds: BoundsOf(exterior, heights),
		points: points,
	}
}

// Bounds returns the polygon's bounds.
func (p *Polygon) Bounds() Bounds3D {
	return p.bounds
}

// Points returns a copy of the polygon's points.
func (p *Polygon) Points() []Point2D {
	return append([]Point2D(nil), p.points...)
}

// Len returns the number of points, including every ring's closing point.
func (p *Polygon) Len() int {
	return len(p.points)
}

// boundingRing returns the closed rectangle around the polygon, wound
// counter-clockwise.
func (p *Polygon) boundingRing() []Point2D {
	x, y := p.bounds.X(), p.bounds.Y()
	return []Point2D{
		{X: x.Min, Y: y.Min},
		{X: x.Max, Y: y.Min},
		{X: x.Max, Y: y.Max},
		{X: x.Min, Y: y.Max},
		{X: x.Min, Y: y.Min},
	}
}

// PolyhedronVertices returns the prism extruded from the polygon's points.
func (p *Polygon) PolyhedronVertices() []Vertex {
	z := p.bounds.Z()
	return PrismVertices(p.points, z.Min, z.Max)
}

// PolyhedronIndices returns the triangles of the polygon's prism.
func (p *Polygon) PolyhedronIndices() []uint32 {
	return PrismIndices(len(p.points))
}

// BoundingBoxVertices returns the prism extruded from the polygon's bounding
// rectangle.
func (p *Polygon) BoundingBoxVertices() []Vertex {
	z := p.bounds.Z()
	return PrismVertices(p.boundingRing(), z.Min, z.Max)
}

// BoundingBoxIndices returns the triangles of the bounding-box prism.
func (p *Polygon) BoundingBoxIndices() []uint32 {
	return PrismIndices(5)
}
