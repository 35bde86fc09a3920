// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Target is the set of planes a draw writes to. All planes are row-major
// with Width*Height pixels. Color holds four float32 per pixel and may be
// nil for depth/stencil-only drawing.
type Target struct {
	Width, Height int
	Color         []float32
	Depth         []float32
	Stencil       []uint8
}

// Vertex is a clip-space vertex with a color.
type Vertex struct {
	Clip  mgl32.Vec4
	Color [4]float32
}

// screenVertex is a vertex after perspective divide and viewport transform.
// color is pre-divided by w for perspective-correct interpolation.
type screenVertex struct {
	x, y, z float32
	invW    float32
	color   [4]float32
}

// DrawTriangle rasterizes one triangle into t.
func DrawTriangle(t *Target, s *State, tri [3]Vertex) {
	var buf [4]Vertex
	poly := clipNear(tri, buf[:0])
	if len(poly) < 3 {
		return
	}

	var sv [4]screenVertex
	for i := range poly {
		sv[i] = project(t, poly[i])
	}
	for i := 1; i+1 < len(poly); i++ {
		rasterize(t, s, sv[0], sv[i], sv[i+1])
	}
}

func project(t *Target, v Vertex) screenVertex {
	invW := 1 / v.Clip[3]
	ndcX := v.Clip[0] * invW
	ndcY := v.Clip[1] * invW
	ndcZ := v.Clip[2] * invW
	sv := screenVertex{
		x:    (ndcX + 1) * 0.5 * float32(t.Width),
		y:    (1 - ndcY) * 0.5 * float32(t.Height),
		z:    (ndcZ + 1) * 0.5,
		invW: invW,
	}
	for i := range 4 {
		sv.color[i] = v.Color[i] * invW
	}
	return sv
}

// orient is twice the signed area of (a, b, p) in window space. Window y
// points down, so a counter-clockwise triangle in NDC has a negative area.
func orient(a, b *screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// edgeValue evaluates the edge function of (a, b) with the endpoints in a
// fixed order, so the two triangles sharing an edge get exactly negated
// values for every sample.
func edgeValue(a, b *screenVertex, px, py float32) float32 {
	if a.x < b.x || (a.x == b.x && a.y < b.y) {
		return orient(a, b, px, py)
	}
	return -orient(b, a, px, py)
}

// covers applies the top-left rule to a sample exactly on edge a->b of a
// positively oriented triangle.
func covers(w float32, a, b *screenVertex) bool {
	if w != 0 {
		return w > 0
	}
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx > 0)
}

func rasterize(t *Target, s *State, p0, p1, p2 screenVertex) {
	area := orient(&p0, &p1, p2.x, p2.y)
	if area == 0 || math.IsNaN(float64(area)) {
		return
	}

	front := area < 0
	if s.FrontFace != gputypes.FrontFaceCCW {
		front = !front
	}
	switch s.CullMode {
	case gputypes.CullModeFront:
		if front {
			return
		}
	case gputypes.CullModeBack:
		if !front {
			return
		}
	}
	face := &s.StencilBack
	if front {
		face = &s.StencilFront
	}

	if area < 0 {
		p1, p2 = p2, p1
		area = -area
	}
	invArea := 1 / area

	minX := pixelFloor(min(p0.x, p1.x, p2.x), t.Width)
	maxX := pixelCeil(max(p0.x, p1.x, p2.x), t.Width)
	minY := pixelFloor(min(p0.y, p1.y, p2.y), t.Height)
	maxY := pixelCeil(max(p0.y, p1.y, p2.y), t.Height)

	for py := minY; py <= maxY; py++ {
		sy := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			sx := float32(px) + 0.5

			w0 := edgeValue(&p1, &p2, sx, sy)
			if !covers(w0, &p1, &p2) {
				continue
			}
			w1 := edgeValue(&p2, &p0, sx, sy)
			if !covers(w1, &p2, &p0) {
				continue
			}
			w2 := edgeValue(&p0, &p1, sx, sy)
			if !covers(w2, &p0, &p1) {
				continue
			}

			b0, b1, b2 := w0*invArea, w1*invArea, w2*invArea
			z := b0*p0.z + b1*p1.z + b2*p2.z
			i := py*t.Width + px
			if !fragment(t, s, face, i, z) {
				continue
			}

			var c [4]float32
			invW := b0*p0.invW + b1*p1.invW + b2*p2.invW
			for k := range 4 {
				c[k] = (b0*p0.color[k] + b1*p1.color[k] + b2*p2.color[k]) / invW
			}
			dst := t.Color[4*i : 4*i+4 : 4*i+4]
			out := s.blend(c, [4]float32(dst))
			copy(dst, out[:])
		}
	}
}

// pixelFloor and pixelCeil clamp a window coordinate to [0, n-1] before
// converting, so far off-screen vertices cannot overflow int.
func pixelFloor(v float32, n int) int {
	return int(math.Floor(float64(min(max(v, 0), float32(n-1)))))
}

func pixelCeil(v float32, n int) int {
	return int(math.Ceil(float64(min(max(v, 0), float32(n-1)))))
}

// fragment runs the per-sample stencil and depth tests in WebGPU order and
// reports whether the sample's color should be written.
func fragment(t *Target, s *State, face *StencilFace, i int, z float32) bool {
	stored := t.Stencil[i]
	rm, wm := s.StencilReadMask, s.StencilWriteMask

	if !passes(face.Compare, s.StencilRef&rm, stored&rm) {
		t.Stencil[i] = applyStencil(face.FailOp, stored, s.StencilRef, wm)
		return false
	}
	if !passes(s.DepthCompare, z, t.Depth[i]) {
		t.Stencil[i] = applyStencil(face.DepthFailOp, stored, s.StencilRef, wm)
		return false
	}
	t.Stencil[i] = applyStencil(face.PassOp, stored, s.StencilRef, wm)
	if s.DepthWrite {
		t.Depth[i] = z
	}
	return t.Color != nil && s.WriteMask != gputypes.ColorWriteMaskNone
}
