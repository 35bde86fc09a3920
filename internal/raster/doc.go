// Package raster is a small CPU triangle rasterizer with WebGPU depth,
// stencil and blend semantics.
//
// It exists to run drape's pipelines without a GPU: the software backend
// feeds it clip-space triangles and a State translated from a
// drape.PipelineDescriptor.
//
// Conventions follow the GL-style projection matrices produced by mgl32:
// clip-space z is in [-w, w] and is mapped to window depth (z/w + 1) / 2.
// Triangles are clipped against the near plane only. Pixels are sampled at
// their centers and covered according to the top-left rule, so two
// triangles sharing an edge never both cover a sample on it.
package raster
