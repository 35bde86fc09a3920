// Package scene assembles a terrain, draped polygon layers and an orbit
// camera from a config.Config, and renders frames with any backend.Device.
package scene

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
	"github.com/gogpu/drape/camera"
	"github.com/gogpu/drape/config"
	"github.com/gogpu/drape/ingest"
	"github.com/gogpu/drape/terrain"
	"golang.org/x/image/draw"
)

// Checkerboard layout used for the built-in layer sources.
const (
	CellSize  = 4
	CellInset = 0.5
)

// Background is the clear color of every frame.
var Background = drape.RGBA{R: 0.3, G: 0.3, B: 0.3, A: 1}

// unitHeights is the z range polygons are built with; a layer's model
// matrix stretches it over the terrain.
var unitHeights = drape.Range{Min: 0, Max: 1}

// Layer is one polygon set drawn in one color.
type Layer struct {
	Name    string
	Color   drape.RGBA
	Model   mgl32.Mat4
	Visible bool

	buffer  *drape.RenderablePolygonBuffer
	indices *drape.RenderablePolygonIndices
}

// IndexCount returns the number of pass 1 indices of the layer.
func (l *Layer) IndexCount() uint32 {
	return l.indices.PolyhedronCount()
}

// Scene owns every GPU resource of a frame except the render targets.
type Scene struct {
	Camera *camera.Orbit
	Layers []*Layer

	dev      backend.Device
	terrain  *terrain.Terrain
	renderer *drape.DrapingRenderer
	buffers  []*drape.RenderablePolygonBuffer
}

// Build uploads everything cfg describes to dev.
func Build(dev backend.Device, cfg config.Config) (_ *Scene, err error) {
	elevation, ok := terrain.Elevations[cfg.Terrain.Elevation]
	if !ok {
		return nil, fmt.Errorf("%w: unknown terrain elevation %q", config.ErrInvalid, cfg.Terrain.Elevation)
	}
	grid := terrain.Grid{Size: cfg.Terrain.Size, Elevation: elevation}
	extent := grid.Extent()

	s := &Scene{dev: dev}
	defer func() {
		if err != nil {
			s.Destroy()
		}
	}()

	if s.terrain, err = terrain.New(dev, grid); err != nil {
		return nil, err
	}
	if s.renderer, err = drape.NewDrapingRenderer(dev); err != nil {
		return nil, err
	}

	var board *Board
	var boardBuffer *drape.RenderablePolygonBuffer
	for _, lc := range cfg.Layers {
		var (
			buf *drape.RenderablePolygonBuffer
			idx drape.PolygonBufferIndices
		)
		switch lc.Source {
		case config.SourceCheckerboardEven, config.SourceCheckerboardOdd:
			if board == nil {
				board = Checkerboard(extent, CellSize, CellInset, unitHeights)
				if boardBuffer, err = s.upload(board.Buffer); err != nil {
					return nil, err
				}
			}
			buf, idx = boardBuffer, board.Even
			if lc.Source == config.SourceCheckerboardOdd {
				idx = board.Odd
			}
		default:
			polys, lerr := ingest.Load(lc.Source, ingest.Options{Heights: unitHeights, Fit: extent})
			if lerr != nil {
				return nil, fmt.Errorf("layer %s: %w", lc.Name, lerr)
			}
			pb := drape.NewPolygonBuffer()
			idx = drape.NewPolygonBufferIndices()
			for _, p := range polys {
				idx.Extend(pb.Add(p))
			}
			if buf, err = s.upload(pb); err != nil {
				return nil, err
			}
		}

		ri, ierr := idx.Renderable(dev)
		if ierr != nil {
			return nil, fmt.Errorf("layer %s: %w", lc.Name, ierr)
		}
		s.Layers = append(s.Layers, &Layer{
			Name:    lc.Name,
			Color:   drape.RGBA{R: lc.Color[0], G: lc.Color[1], B: lc.Color[2], A: lc.Color[3]},
			Model:   camera.PolygonModel(lc.MinZ, lc.MaxZ),
			Visible: true,
			buffer:  buf,
			indices: ri,
		})
	}

	s.Camera = camera.NewOrbit(mgl32.Vec3{extent / 2, extent / 2, 0}, cfg.Camera.Distance)
	s.Camera.Yaw = cfg.Camera.Yaw
	s.Camera.Pitch = cfg.Camera.Pitch

	drape.Logger().Info("scene: built",
		"backend", dev.Name(),
		"terrain", grid.Size,
		"layers", len(s.Layers))
	return s, nil
}

func (s *Scene) upload(pb *drape.PolygonBuffer) (*drape.RenderablePolygonBuffer, error) {
	buf, err := pb.Renderable(s.dev)
	if err != nil {
		return nil, err
	}
	s.buffers = append(s.buffers, buf)
	return buf, nil
}

// ToggleLayer flips the visibility of layer i. Out of range indices are
// ignored.
func (s *Scene) ToggleLayer(i int) {
	if i >= 0 && i < len(s.Layers) {
		s.Layers[i].Visible = !s.Layers[i].Visible
	}
}

// Draw records the terrain and every visible layer. The targets must have
// been cleared in the same stream.
func (s *Scene) Draw(stream drape.CommandStream, color drape.ColorTarget, depthStencil drape.DepthStencilTarget, aspect float32) error {
	mvp := s.Camera.MVP(aspect)
	if err := s.terrain.Draw(stream, color, depthStencil, mvp); err != nil {
		return err
	}
	for _, l := range s.Layers {
		if !l.Visible {
			continue
		}
		if err := s.renderer.Render(stream, color, depthStencil, mvp.Mul4(l.Model), l.Color, l.buffer, l.indices); err != nil {
			return fmt.Errorf("layer %s: %w", l.Name, err)
		}
	}
	return nil
}

// downsampler is implemented by targets that can filter themselves, such
// as soft.ColorBuffer.
type downsampler interface {
	DownsampledImage(factor int) *image.NRGBA
}

// Render draws one frame at width x height, rendering supersample times
// larger and filtering down.
func (s *Scene) Render(width, height, supersample int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: invalid image size %dx%d", width, height)
	}
	supersample = max(supersample, 1)
	w, h := width*supersample, height*supersample

	color, depth, err := s.dev.NewTargets(w, h)
	if err != nil {
		return nil, err
	}
	defer s.dev.DestroyTargets(color, depth)

	stream, err := s.dev.NewStream()
	if err != nil {
		return nil, err
	}
	if err := stream.Clear(color, depth, Background); err != nil {
		return nil, errors.Join(err, stream.Finish())
	}
	if err := s.Draw(stream, color, depth, float32(w)/float32(h)); err != nil {
		return nil, errors.Join(err, stream.Finish())
	}
	if err := stream.Finish(); err != nil {
		return nil, err
	}

	if supersample > 1 {
		if d, ok := color.(downsampler); ok {
			return d.DownsampledImage(supersample), nil
		}
	}
	img, err := s.dev.ReadPixels(color)
	if err != nil {
		return nil, err
	}
	if supersample > 1 {
		img = downsample(img, width, height)
	}
	return img, nil
}

func downsample(src *image.NRGBA, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Destroy releases all scene resources. The device is left open.
func (s *Scene) Destroy() {
	for _, l := range s.Layers {
		l.indices.Destroy()
	}
	s.Layers = nil
	for _, b := range s.buffers {
		b.Destroy()
	}
	s.buffers = nil
	if s.renderer != nil {
		s.renderer.Destroy()
		s.renderer = nil
	}
	if s.terrain != nil {
		s.terrain.Destroy()
		s.terrain = nil
	}
}
