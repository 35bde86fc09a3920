package terrain_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend/soft"
	"github.com/gogpu/drape/terrain"
)

func TestGridValidate(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{-1, true},
		{0, true},
		{1, true},
		{2, false},
		{100, false},
	}
	for _, tt := range tests {
		err := terrain.Grid{Size: tt.size}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Size %d: err = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, terrain.ErrInvalidGrid) {
			t.Errorf("Size %d: err = %v, want ErrInvalidGrid", tt.size, err)
		}
	}
}

func TestGridMesh(t *testing.T) {
	g := terrain.Grid{Size: 4, Elevation: terrain.Waves}
	vertices := g.Vertices()
	if len(vertices) != 16 {
		t.Fatalf("len(vertices) = %d, want 16", len(vertices))
	}
	indices := g.Indices()
	if len(indices) != 3*3*6 {
		t.Fatalf("len(indices) = %d, want 54", len(indices))
	}

	last := vertices[15]
	if last.Position[0] != 3 || last.Position[1] != 3 {
		t.Errorf("last vertex at %v, want (3, 3)", last.Position)
	}
	if want := terrain.Waves(3, 3); last.Position[2] != want {
		t.Errorf("last vertex height = %v, want %v", last.Position[2], want)
	}
	if last.Color != (drape.RGBA{R: 1, G: 1, B: 0, A: 1}) {
		t.Errorf("last vertex color = %+v", last.Color)
	}

	// Every triangle faces +z in the xy projection.
	for i := 0; i < len(indices); i += 3 {
		a, b, c := vertices[indices[i]].Position, vertices[indices[i+1]].Position, vertices[indices[i+2]].Position
		cross := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		if cross <= 0 {
			t.Fatalf("triangle %d is not counter-clockwise: %v %v %v", i/3, a, b, c)
		}
	}
}

func TestHeightRange(t *testing.T) {
	flat := terrain.Grid{Size: 5}.HeightRange()
	if flat.Min != 0 || flat.Max != 0 {
		t.Errorf("flat range = %+v, want [0, 0]", flat)
	}
	waves := terrain.Grid{Size: 64, Elevation: terrain.Waves}.HeightRange()
	if waves.Min < -10 || waves.Max > 10 || waves.Span() < 15 {
		t.Errorf("waves range = %+v", waves)
	}
}

func TestEncodeVertices(t *testing.T) {
	data := terrain.EncodeVertices([]terrain.Vertex{
		{Position: [3]float32{1, 2, 3}, Color: drape.RGBA{R: 0.25, G: 0.5, B: 0.75, A: 1}},
	})
	if len(data) != terrain.VertexStride {
		t.Fatalf("len = %d, want %d", len(data), terrain.VertexStride)
	}
	want := []float32{1, 2, 3, 0.25, 0.5, 0.75, 1}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}

	layout := terrain.Layout()
	if layout.ArrayStride != terrain.VertexStride || len(layout.Attributes) != 2 {
		t.Errorf("layout = %+v", layout)
	}
}

func render(t *testing.T, eye mgl32.Vec3) (*soft.ColorBuffer, *soft.DepthStencilBuffer) {
	t.Helper()
	const size = 32
	be := soft.New()
	tr, err := terrain.New(be, terrain.Grid{Size: 11}, terrain.WithColorFormat(soft.NewColorBuffer(1, 1).Format()))
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Destroy()

	color := soft.NewColorBuffer(size, size)
	depth := soft.NewDepthStencilBuffer(size, size)
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	view := mgl32.LookAtV(eye, mgl32.Vec3{5, 5, 0}, mgl32.Vec3{0, 1, 0})

	stream := be.NewCommandStream()
	if err := stream.Clear(color, depth, drape.Black); err != nil {
		t.Fatal(err)
	}
	if err := tr.Draw(stream, color, depth, proj.Mul4(view)); err != nil {
		t.Fatal(err)
	}
	if err := stream.Finish(); err != nil {
		t.Fatal(err)
	}
	return color, depth
}

func TestDrawFromAbove(t *testing.T) {
	color, depth := render(t, mgl32.Vec3{5, 5, 20})

	got := color.At(16, 16)
	if math.Abs(float64(got.R-0.5)) > 0.05 || math.Abs(float64(got.G-0.5)) > 0.05 || got.A != 1 {
		t.Errorf("center color = %+v, want about (0.5, 0.5, 0, 1)", got)
	}
	if d := depth.DepthAt(16, 16); d >= 1 {
		t.Errorf("center depth = %v, want < 1", d)
	}
	if n := depth.NonZeroStencil(); n != 0 {
		t.Errorf("terrain touched %d stencil values", n)
	}
	if c := color.At(0, 0); c != drape.Black {
		t.Errorf("corner outside the grid = %+v, want clear color", c)
	}
}

func TestDrawFromBelowIsCulled(t *testing.T) {
	color, depth := render(t, mgl32.Vec3{5, 5, -20})

	if c := color.At(16, 16); c != drape.Black {
		t.Errorf("center color = %+v, want clear color", c)
	}
	if d := depth.DepthAt(16, 16); d != 1 {
		t.Errorf("center depth = %v, want 1", d)
	}
}

func TestDestroy(t *testing.T) {
	be := soft.New()
	tr, err := terrain.New(be, terrain.Grid{Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if tr.IndexCount() != 6 {
		t.Errorf("IndexCount = %d, want 6", tr.IndexCount())
	}
	tr.Destroy()
	tr.Destroy()

	err = tr.Draw(be.NewCommandStream(), soft.NewColorBuffer(1, 1), soft.NewDepthStencilBuffer(1, 1), mgl32.Ident4())
	if !errors.Is(err, terrain.ErrDestroyed) {
		t.Errorf("Draw after Destroy = %v, want ErrDestroyed", err)
	}

	if _, err := terrain.New(nil, terrain.Grid{Size: 2}); !errors.Is(err, drape.ErrNilBackend) {
		t.Errorf("New(nil) = %v, want ErrNilBackend", err)
	}
}
