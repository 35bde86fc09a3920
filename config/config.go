// Package config loads TOML scene descriptions for the drape commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Built-in layer sources. Any other source is a GeoJSON file path.
const (
	SourceCheckerboardEven = "checkerboard-even"
	SourceCheckerboardOdd  = "checkerboard-odd"
)

// Config is a complete scene description.
type Config struct {
	Width       int `toml:"width"`
	Height      int `toml:"height"`
	Supersample int `toml:"supersample"`

	Terrain Terrain `toml:"terrain"`
	Camera  Camera  `toml:"camera"`
	Layers  []Layer `toml:"layers"`
}

// Terrain selects the height field.
type Terrain struct {
	Size      int    `toml:"size"`
	Elevation string `toml:"elevation"`
}

// Camera places the orbit camera around the terrain center.
type Camera struct {
	Distance float32 `toml:"distance"`
	Yaw      float32 `toml:"yaw"`
	Pitch    float32 `toml:"pitch"`
}

// Layer is one draped polygon set rendered in a single color.
type Layer struct {
	Name   string     `toml:"name"`
	Color  [4]float32 `toml:"color"`
	Source string     `toml:"source"`
	MinZ   float32    `toml:"min_z"`
	MaxZ   float32    `toml:"max_z"`
}

// IsGeoJSON reports whether the layer is read from a file.
func (l Layer) IsGeoJSON() bool {
	return l.Source != SourceCheckerboardEven && l.Source != SourceCheckerboardOdd
}

// Default returns the checkerboard demo scene.
func Default() Config {
	return Config{
		Width:       800,
		Height:      600,
		Supersample: 2,
		Terrain:     Terrain{Size: 64, Elevation: "waves"},
		Camera:      Camera{Distance: 50, Yaw: 0.6, Pitch: 0.9},
		Layers: []Layer{
			{Name: "even", Color: [4]float32{0, 0, 1, 0.5}, Source: SourceCheckerboardEven, MinZ: -20, MaxZ: 20},
			{Name: "odd", Color: [4]float32{0, 1, 1, 0.5}, Source: SourceCheckerboardOdd, MinZ: -20, MaxZ: 20},
		},
	}
}

// Load reads a TOML file. Fields missing from the file keep their
// Default values; a file with [[layers]] replaces the default layers.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.Layers = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("parse at %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if cfg.Layers == nil {
		cfg.Layers = Default().Layers
	}
	return cfg, nil
}

// Validate checks value ranges. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("image size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Supersample < 1 || c.Supersample > 8 {
		errs = append(errs, fmt.Errorf("supersample %d outside [1, 8]", c.Supersample))
	}
	if c.Terrain.Size < 2 {
		errs = append(errs, fmt.Errorf("terrain size %d must be at least 2", c.Terrain.Size))
	}
	switch c.Terrain.Elevation {
	case "flat", "waves":
	default:
		errs = append(errs, fmt.Errorf("unknown terrain elevation %q", c.Terrain.Elevation))
	}
	if c.Camera.Distance <= 0 {
		errs = append(errs, fmt.Errorf("camera distance %v must be positive", c.Camera.Distance))
	}
	for i, l := range c.Layers {
		if strings.TrimSpace(l.Source) == "" {
			errs = append(errs, fmt.Errorf("layer %d (%s): empty source", i, l.Name))
		}
		if l.MinZ >= l.MaxZ {
			errs = append(errs, fmt.Errorf("layer %d (%s): min_z %v not below max_z %v", i, l.Name, l.MinZ, l.MaxZ))
		}
		for _, v := range l.Color {
			if v < 0 || v > 1 {
				errs = append(errs, fmt.Errorf("layer %d (%s): color %v outside [0, 1]", i, l.Name, l.Color))
				break
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Flags holds command-line values that override the file. Zero values
// leave the file's setting alone.
type Flags struct {
	Width       int
	Height      int
	Supersample int
	// GeoJSON replaces all layers with one layer read from this file.
	GeoJSON string
}

// Resolve loads path (or Default when path is empty), applies flags and
// validates the result.
func Resolve(path string, flags Flags) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}

	if flags.Width > 0 {
		cfg.Width = flags.Width
	}
	if flags.Height > 0 {
		cfg.Height = flags.Height
	}
	if flags.Supersample > 0 {
		cfg.Supersample = flags.Supersample
	}
	if flags.GeoJSON != "" {
		cfg.Layers = []Layer{{
			Name:   "geojson",
			Color:  [4]float32{1, 0.5, 0, 0.6},
			Source: flags.GeoJSON,
			MinZ:   -20,
			MaxZ:   20,
		}}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
