package drape

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DrapingRenderer draws batches of polygons onto terrain with the two-pass
// stencil technique.
//
// Both pipelines are compiled once in NewDrapingRenderer. After that the
// renderer is read-only and may be used for any number of Render calls.
type DrapingRenderer struct {
	backend     GraphicsBackend
	opts        rendererOptions
	polyhedron  Pipeline
	boundingBox Pipeline
}

// NewDrapingRenderer compiles the polyhedron and bounding-box pipelines.
func NewDrapingRenderer(backend GraphicsBackend, opts ...RendererOption) (*DrapingRenderer, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	polyhedron, err := backend.CreatePipeline(polyhedronPipeline(o))
	if err != nil {
		return nil, fmt.Errorf("create polyhedron pipeline: %w", err)
	}
	boundingBox, err := backend.CreatePipeline(boundingBoxPipeline(o))
	if err != nil {
		backend.DestroyPipeline(polyhedron)
		return nil, fmt.Errorf("create bounding box pipeline: %w", err)
	}

	Logger().Info("drape: renderer created",
		"color_format", o.colorFormat,
		"depth_stencil_format", o.depthStencilFormat)

	return &DrapingRenderer{
		backend:     backend,
		opts:        o,
		polyhedron:  polyhedron,
		boundingBox: boundingBox,
	}, nil
}

// Render drapes the polygons selected by indices over the terrain already
// present in depthStencil.
//
// The depth buffer must hold the terrain depth and the stencil buffer must be
// zero. On return the stencil buffer is zero again, so polygon sets with
// different colors can be rendered back to back.
//
// buffer and indices must come from the same PolygonBuffer; a mismatch is
// not detected. An empty index set draws nothing.
func (r *DrapingRenderer) Render(
	stream CommandStream,
	color ColorTarget,
	depthStencil DepthStencilTarget,
	mvp mgl32.Mat4,
	rgba RGBA,
	buffer *RenderablePolygonBuffer,
	indices *RenderablePolygonIndices,
) error {
	if r.polyhedron == nil {
		return ErrRendererDestroyed
	}
	if buffer == nil || indices == nil {
		return ErrNilRenderable
	}
	if indices.polyhedronCount == 0 {
		return nil
	}

	uniforms := Uniforms{MVP: mvp, Color: rgba}
	bundle := &DrawBundle{
		Label:        r.opts.labelPrefix + "_render",
		Color:        color,
		DepthStencil: depthStencil,
		Draws: []DrawCall{
			{
				Pipeline:     r.polyhedron,
				VertexBuffer: buffer.polyhedron,
				IndexBuffer:  indices.polyhedron,
				IndexCount:   indices.polyhedronCount,
				Uniforms:     uniforms,
			},
			{
				Pipeline:         r.boundingBox,
				VertexBuffer:     buffer.boundingBox,
				IndexBuffer:      indices.boundingBox,
				IndexCount:       indices.boundingBoxCount,
				StencilReference: 0,
				Uniforms:         uniforms,
			},
		},
	}

	Logger().Debug("drape: render",
		"polyhedron_indices", indices.polyhedronCount,
		"bounding_box_indices", indices.boundingBoxCount)

	if err := stream.Submit(bundle); err != nil {
		return fmt.Errorf("submit draping passes: %w", err)
	}
	return nil
}

// Destroy releases both pipelines. Render fails with ErrRendererDestroyed
// afterwards.
func (r *DrapingRenderer) Destroy() {
	if r.polyhedron != nil {
		r.backend.DestroyPipeline(r.polyhedron)
		r.polyhedron = nil
	}
	if r.boundingBox != nil {
		r.backend.DestroyPipeline(r.boundingBox)
		r.boundingBox = nil
	}
}
