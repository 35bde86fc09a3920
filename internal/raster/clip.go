// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// clipNear clips a triangle against the near plane z >= -w and appends the
// resulting convex polygon (0, 3 or 4 vertices) to out.
func clipNear(tri [3]Vertex, out []Vertex) []Vertex {
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da := nearDistance(a)
		db := nearDistance(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, intersectNear(a, b))
		}
	}
	return out
}

func nearDistance(v Vertex) float32 {
	return v.Clip[2] + v.Clip[3]
}

// intersectNear returns the point where edge (a, b) crosses the near plane.
// The endpoints are ordered first so an edge shared by two triangles yields
// the same point for both.
func intersectNear(a, b Vertex) Vertex {
	if vertexLess(b, a) {
		a, b = b, a
	}
	da, db := nearDistance(a), nearDistance(b)
	t := da / (da - db)

	var v Vertex
	for i := range 4 {
		v.Clip[i] = a.Clip[i] + t*(b.Clip[i]-a.Clip[i])
		v.Color[i] = a.Color[i] + t*(b.Color[i]-a.Color[i])
	}
	return v
}

func vertexLess(a, b Vertex) bool {
	for i := range 4 {
		if a.Clip[i] != b.Clip[i] {
			return a.Clip[i] < b.Clip[i]
		}
	}
	return false
}
