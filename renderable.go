package drape

import "fmt"

// RenderablePolygonBuffer is the GPU-resident copy of a PolygonBuffer.
//
// It is owned by the caller, shared read-only by any number of Render calls,
// and released with Destroy.
type RenderablePolygonBuffer struct {
	backend     GraphicsBackend
	polyhedron  Buffer
	boundingBox Buffer
}

// Renderable uploads the buffer's vertex pools through backend. Later Add
// calls are not reflected in the returned value.
func (b *PolygonBuffer) Renderable(backend GraphicsBackend) (*RenderablePolygonBuffer, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	r := &RenderablePolygonBuffer{backend: backend}

	var err error
	if len(b.polyhedron) > 0 {
		r.polyhedron, err = backend.CreateVertexBuffer("drape_polyhedron_vertices", EncodeVertices(b.polyhedron))
		if err != nil {
			return nil, fmt.Errorf("upload polyhedron vertices: %w", err)
		}
	}
	if len(b.boundingBox) > 0 {
		r.boundingBox, err = backend.CreateVertexBuffer("drape_bounding_box_vertices", EncodeVertices(b.boundingBox))
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("upload bounding box vertices: %w", err)
		}
	}

	Logger().Debug("drape: polygon buffer uploaded",
		"polyhedron_vertices", len(b.polyhedron),
		"bounding_box_vertices", len(b.boundingBox))
	return r, nil
}

// Destroy releases the GPU buffers. It is safe to call more than once.
func (r *RenderablePolygonBuffer) Destroy() {
	if r.polyhedron != nil {
		r.backend.DestroyBuffer(r.polyhedron)
		r.polyhedron = nil
	}
	if r.boundingBox != nil {
		r.backend.DestroyBuffer(r.boundingBox)
		r.boundingBox = nil
	}
}

// RenderablePolygonIndices is the GPU-resident copy of a
// PolygonBufferIndices. Ownership follows RenderablePolygonBuffer.
type RenderablePolygonIndices struct {
	backend          GraphicsBackend
	polyhedron       Buffer
	boundingBox      Buffer
	polyhedronCount  uint32
	boundingBoxCount uint32
}

// Renderable uploads the index set through backend. An empty set produces a
// renderable that draws nothing.
func (i PolygonBufferIndices) Renderable(backend GraphicsBackend) (*RenderablePolygonIndices, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	r := &RenderablePolygonIndices{backend: backend}
	if i.Empty() {
		return r, nil
	}

	var err error
	r.polyhedron, err = backend.CreateIndexBuffer("drape_polyhedron_indices", i.polyhedron)
	if err != nil {
		return nil, fmt.Errorf("upload polyhedron indices: %w", err)
	}
	r.boundingBox, err = backend.CreateIndexBuffer("drape_bounding_box_indices", i.boundingBox)
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("upload bounding box indices: %w", err)
	}
	//nolint:gosec // G115: index counts fit uint32
	r.polyhedronCount = uint32(len(i.polyhedron))
	//nolint:gosec // G115: index counts fit uint32
	r.boundingBoxCount = uint32(len(i.boundingBox))
	return r, nil
}

// PolyhedronCount returns the number of pass 1 indices.
func (r *RenderablePolygonIndices) PolyhedronCount() uint32 {
	return r.polyhedronCount
}

// BoundingBoxCount returns the number of pass 2 indices.
func (r *RenderablePolygonIndices) BoundingBoxCount() uint32 {
	return r.boundingBoxCount
}

// Destroy releases the GPU buffers. It is safe to call more than once.
func (r *RenderablePolygonIndices) Destroy() {
	if r.polyhedron != nil {
		r.backend.DestroyBuffer(r.polyhedron)
		r.polyhedron = nil
	}
	if r.boundingBox != nil {
		r.backend.DestroyBuffer(r.boundingBox)
		r.boundingBox = nil
	}
	r.polyhedronCount = 0
	r.boundingBoxCount = 0
}
