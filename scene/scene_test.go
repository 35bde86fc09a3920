package scene

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend/soft"
	"github.com/gogpu/drape/config"
)

func TestCheckerboard(t *testing.T) {
	b := Checkerboard(8, 4, 0.5, drape.Range{Min: 0, Max: 1})
	if b.Even.Empty() || b.Odd.Empty() {
		t.Fatal("expected both parities to hold squares")
	}
	if b.Even.Len() != b.Odd.Len() {
		t.Errorf("even %d and odd %d index counts differ", b.Even.Len(), b.Odd.Len())
	}

	// One square fits: it lands in the even set.
	one := Checkerboard(5, 4, 0.5, drape.Range{Min: 0, Max: 1})
	if one.Even.Empty() || !one.Odd.Empty() {
		t.Errorf("single cell: even empty=%v odd empty=%v", one.Even.Empty(), one.Odd.Empty())
	}
	if b.Even.Len() != 2*one.Even.Len() {
		t.Errorf("2x2 board even count = %d, want %d", b.Even.Len(), 2*one.Even.Len())
	}

	for _, tt := range []struct{ extent, cell float32 }{{3, 4}, {8, 0}} {
		empty := Checkerboard(tt.extent, tt.cell, 0.5, drape.Range{})
		if !empty.Buffer.Empty() || !empty.Even.Empty() {
			t.Errorf("Checkerboard(%v, %v) is not empty", tt.extent, tt.cell)
		}
	}
}

const squareGeoJSON = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "square.geojson")
	if err := os.WriteFile(path, []byte(squareGeoJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Terrain = config.Terrain{Size: 13, Elevation: "waves"}
	cfg.Camera.Distance = 20
	cfg.Layers = append(cfg.Layers, config.Layer{
		Name: "file", Color: [4]float32{1, 0, 0, 0.5}, Source: path, MinZ: -20, MaxZ: 20,
	})
	return cfg
}

func TestBuild(t *testing.T) {
	s, err := Build(soft.New(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	if len(s.Layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(s.Layers))
	}
	for _, l := range s.Layers {
		if !l.Visible || l.IndexCount() == 0 {
			t.Errorf("layer %s: visible=%v indices=%d", l.Name, l.Visible, l.IndexCount())
		}
	}
	// Both checkerboard layers share one uploaded buffer.
	if len(s.buffers) != 2 {
		t.Errorf("uploaded %d polygon buffers, want 2", len(s.buffers))
	}
	if s.Camera.Target[0] != 6 || s.Camera.Target[1] != 6 {
		t.Errorf("camera target = %v, want terrain center", s.Camera.Target)
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Terrain.Elevation = "cliffs"
	if _, err := Build(soft.New(), cfg); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("unknown elevation: err = %v, want ErrInvalid", err)
	}

	cfg = testConfig(t)
	cfg.Layers[2].Source = filepath.Join(t.TempDir(), "missing.geojson")
	if _, err := Build(soft.New(), cfg); err == nil {
		t.Error("missing GeoJSON file accepted")
	}
}

func TestRenderToggleLayers(t *testing.T) {
	s, err := Build(soft.New(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	draped, err := s.Render(32, 24, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b := draped.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Fatalf("bounds = %v, want 32x24", b)
	}

	for i := range s.Layers {
		s.ToggleLayer(i)
	}
	s.ToggleLayer(-1)
	s.ToggleLayer(len(s.Layers))
	bare, err := s.Render(32, 24, 1)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(draped.Pix, bare.Pix) {
		t.Error("hiding every layer did not change the image")
	}

	for i := range s.Layers {
		s.ToggleLayer(i)
	}
	again, err := s.Render(32, 24, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(draped.Pix, again.Pix) {
		t.Error("re-enabling the layers did not restore the image")
	}
}

func TestRenderSupersample(t *testing.T) {
	s, err := Build(soft.New(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	img, err := s.Render(20, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 20x10", b)
	}
	if _, err := s.Render(0, 10, 1); err == nil {
		t.Error("zero width accepted")
	}
}

func TestDownsample(t *testing.T) {
	s, err := Build(soft.New(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	full, err := s.Render(16, 16, 1)
	if err != nil {
		t.Fatal(err)
	}
	half := downsample(full, 8, 8)
	if b := half.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("bounds = %v, want 8x8", b)
	}
}
