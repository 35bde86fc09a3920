// Package ingest converts GeoJSON polygons into drape polygons.
//
// Polygon, MultiPolygon, Feature, FeatureCollection and GeometryCollection
// objects are walked recursively; other geometry types are skipped with a
// warning. Coordinates are translated so the lower-left corner of the
// input's bounding box lands on the origin, and optionally scaled to fit a
// terrain extent. Ring orientation is normalized to counter-clockwise
// exteriors and clockwise holes.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/gogpu/drape"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
)

// ErrNoPolygons is returned when the input holds no usable polygon.
var ErrNoPolygons = errors.New("ingest: no polygons")

// Options controls the conversion.
type Options struct {
	// Heights is the z range of every polygon. The zero value means [0, 1],
	// to be mapped onto terrain heights by a model matrix.
	Heights drape.Range

	// Fit, when positive, scales the input uniformly so the longer side of
	// its bounding box equals Fit.
	Fit float32
}

// children is implemented by GeoJSON collections: MultiPolygon,
// GeometryCollection and FeatureCollection.
type children interface {
	Children() []geojson.Object
}

// Load reads and converts a GeoJSON file.
func Load(path string, opts Options) ([]*drape.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	polys, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return polys, nil
}

// Parse converts GeoJSON text.
func Parse(data []byte, opts Options) ([]*drape.Polygon, error) {
	obj, err := geojson.Parse(string(data), nil)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	return Convert(obj, opts)
}

// Convert converts a parsed GeoJSON object.
func Convert(obj geojson.Object, opts Options) ([]*drape.Polygon, error) {
	var polys []*geometry.Poly
	collect(obj, &polys)
	if len(polys) == 0 {
		return nil, ErrNoPolygons
	}

	heights := opts.Heights
	if heights == (drape.Range{}) {
		heights = drape.Range{Min: 0, Max: 1}
	}
	rect := obj.Rect()
	t := transform{origin: rect.Min, scale: 1}
	if opts.Fit > 0 {
		side := math.Max(rect.Max.X-rect.Min.X, rect.Max.Y-rect.Min.Y)
		if side > 0 {
			t.scale = float64(opts.Fit) / side
		}
	}

	out := make([]*drape.Polygon, 0, len(polys))
	for i, p := range polys {
		exterior := t.ring(p.Exterior)
		if len(exterior) < 4 {
			drape.Logger().Warn("ingest: dropping degenerate polygon", "index", i, "points", len(exterior))
			continue
		}
		if !exterior.IsCCW() {
			exterior = exterior.Reversed()
		}
		holes := make([]drape.Ring, 0, len(p.Holes))
		for j, h := range p.Holes {
			hole := t.ring(h)
			if len(hole) < 4 {
				drape.Logger().Warn("ingest: dropping degenerate hole", "index", i, "hole", j)
				continue
			}
			if hole.IsCCW() {
				hole = hole.Reversed()
			}
			holes = append(holes, hole)
		}
		out = append(out, drape.NewPolygonFromRings(heights, exterior, holes...))
	}
	if len(out) == 0 {
		return nil, ErrNoPolygons
	}

	drape.Logger().Debug("ingest: converted geojson",
		"polygons", len(out),
		"scale", t.scale)
	return out, nil
}

func collect(obj geojson.Object, dst *[]*geometry.Poly) {
	switch g := obj.(type) {
	case *geojson.Polygon:
		*dst = append(*dst, g.Base())
	case *geojson.Feature:
		collect(g.Base(), dst)
	case children:
		for _, child := range g.Children() {
			collect(child, dst)
		}
	default:
		drape.Logger().Warn("ingest: skipping non-polygon geometry", "type", fmt.Sprintf("%T", obj))
	}
}

type transform struct {
	origin geometry.Point
	scale  float64
}

// ring converts a GeoJSON ring into terrain space, closing it if needed.
func (t transform) ring(r geometry.Ring) drape.Ring {
	n := r.NumPoints()
	out := make(drape.Ring, 0, n+1)
	for i := range n {
		p := r.PointAt(i)
		out = append(out, drape.Pt(
			float32((p.X-t.origin.X)*t.scale),
			float32((p.Y-t.origin.Y)*t.scale),
		))
	}
	return out.Closed()
}
