// Command drapedemo renders a draped terrain scene to a PNG or WebP file.
//
// Usage:
//
//	drapedemo [-config scene.toml] [-geojson area.geojson] [-output out.png]
//
// Without -config the checkerboard scene is rendered over a wave terrain.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
	_ "github.com/gogpu/drape/backend/soft"
	_ "github.com/gogpu/drape/backend/wgpu"
	"github.com/gogpu/drape/config"
	"github.com/gogpu/drape/scene"
)

// options are the parsed command line flags.
type options struct {
	config      string
	width       int
	height      int
	supersample int
	geojson     string
	backend     string
	output      string
	verbose     bool
}

func main() {
	var o options
	flag.StringVar(&o.config, "config", "", "scene TOML file")
	flag.IntVar(&o.width, "width", 0, "image width (default from config)")
	flag.IntVar(&o.height, "height", 0, "image height (default from config)")
	flag.IntVar(&o.supersample, "supersample", 0, "supersampling factor (default from config)")
	flag.StringVar(&o.geojson, "geojson", "", "drape the polygons of this GeoJSON file instead of the configured layers")
	flag.StringVar(&o.backend, "backend", backend.BackendSoft, "rendering backend: "+strings.Join(backend.Available(), ", "))
	flag.StringVar(&o.output, "output", "drape.png", "output file (.png or .webp)")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatal(err)
	}
}

func run(o options) error {
	if o.verbose {
		drape.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.Resolve(o.config, config.Flags{
		Width:       o.width,
		Height:      o.height,
		Supersample: o.supersample,
		GeoJSON:     o.geojson,
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dev, err := backend.Open(o.backend)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	defer dev.Close()

	s, err := scene.Build(dev, cfg)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	defer s.Destroy()

	start := time.Now()
	img, err := s.Render(cfg.Width, cfg.Height, cfg.Supersample)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	elapsed := time.Since(start)

	if err := save(o.output, img); err != nil {
		return fmt.Errorf("save %s: %w", o.output, err)
	}
	log.Printf("Scene saved to %s (%dx%d, %dx supersampling, %s backend, %v)\n",
		o.output, cfg.Width, cfg.Height, cfg.Supersample, dev.Name(), elapsed.Round(time.Millisecond))
	return nil
}

func save(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f, img, filepath.Ext(path))
}

// encode writes img in the format named by a file extension.
func encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported output format %q (want .png or .webp)", ext)
	}
}
