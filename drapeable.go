package drape

// DrapeablePolygon bundles a single polygon with its own buffer and index
// set. It suits callers that draw one polygon at a time; batches should use
// PolygonBuffer directly.
type DrapeablePolygon struct {
	buffer  *PolygonBuffer
	indices PolygonBufferIndices
}

// NewDrapeablePolygon builds the buffer and index set for one polygon.
func NewDrapeablePolygon(points []Point2D, bounds Bounds3D) *DrapeablePolygon {
	buf := NewPolygonBuffer()
	idx := buf.Add(NewPolygon(bounds, points))
	return &DrapeablePolygon{buffer: buf, indices: idx}
}

// Buffer returns the polygon's buffer.
func (d *DrapeablePolygon) Buffer() *PolygonBuffer {
	return d.buffer
}

// Indices returns the polygon's index set.
func (d *DrapeablePolygon) Indices() PolygonBufferIndices {
	return d.indices
}

// Renderable uploads both the buffer and the index set.
func (d *DrapeablePolygon) Renderable(backend GraphicsBackend) (*RenderablePolygonBuffer, *RenderablePolygonIndices, error) {
	vb, err := d.buffer.Renderable(backend)
	if err != nil {
		return nil, nil, err
	}
	ib, err := d.indices.Renderable(backend)
	if err != nil {
		vb.Destroy()
		return nil, nil, err
	}
	return vb, ib, nil
}
