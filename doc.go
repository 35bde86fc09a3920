// Package drape renders flat polygons draped over irregular 3D terrain.
//
// # Overview
//
// drape paints 2D polygons onto a terrain surface without re-triangulating
// them against the terrain mesh. Each polygon is extruded into a vertical
// prism (the "polyhedron") spanning the terrain's height range, and a second
// prism is built from the polygon's axis-aligned bounding rectangle. Both are
// rendered with a two-pass stencil technique, so any number of polygons can
// be batched into a single pair of draw calls.
//
// # Quick Start
//
//	import "github.com/gogpu/drape"
//
//	buf := drape.NewPolygonBuffer()
//	idx := buf.Add(drape.NewPolygon(bounds, points))
//
//	vb, _ := buf.Renderable(backend)
//	ib, _ := idx.Renderable(backend)
//
//	r, _ := drape.NewDrapingRenderer(backend)
//
//	// Every frame, after drawing the terrain into the same depth buffer:
//	_ = r.Render(stream, colorTarget, depthStencil, mvp, drape.RGBA{B: 1, A: 0.5}, vb, ib)
//
// # Algorithm
//
// Pass 1 draws the polyhedron walls and caps with depth test LessEqual, no
// depth writes and no color writes. Fragments that fail the depth test (they
// lie behind the terrain) decrement the stencil for front faces and increment
// it for back faces, with wraparound. This is the z-fail ("Carmack's
// reverse") shadow-volume count: afterwards the stencil is non-zero exactly
// where the visible terrain lies inside the polyhedron, wherever the camera
// is.
//
// Pass 2 draws only the back faces of the bounding-box prism with the depth
// test disabled. Pixels whose stencil is non-zero receive the alpha-blended
// fill color and have their stencil reset to zero, so consecutive Render
// calls need no stencil clear in between.
//
// # Contracts
//
// The depth buffer must contain the terrain depth and the stencil buffer
// must be zero before the first Render call of a frame. Exterior rings must
// be counter-clockwise and interior rings clockwise; none of this is checked.
//
// Cap faces are a triangle fan from the first point of the concatenated
// rings. The stencil count makes this exact for convex rings; concave rings
// rely on the fan's winding cancellation and are not guaranteed.
//
// # Backends
//
// The renderer is written against [GraphicsBackend]. Two implementations
// ship with the module:
//   - backend/wgpu: GPU rendering through the gogpu/wgpu HAL
//   - backend/soft: a CPU reference rasterizer with full depth/stencil
//     semantics, used by tests and the demo commands
package drape
