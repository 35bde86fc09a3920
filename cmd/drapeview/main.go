// Command drapeview is an interactive terminal viewer for draped scenes.
//
// Usage:
//
//	drapeview [-config scene.toml] [-geojson area.geojson]
//
// Arrow keys orbit the camera, +/- zoom, t toggles the layers and ? shows
// all key bindings.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
	_ "github.com/gogpu/drape/backend/soft"
	"github.com/gogpu/drape/config"
	"github.com/gogpu/drape/internal/viewer"
	"github.com/gogpu/drape/scene"
)

func main() {
	var (
		configFile  = flag.String("config", "", "scene TOML file")
		geojsonFile = flag.String("geojson", "", "drape the polygons of this GeoJSON file instead of the configured layers")
		logFile     = flag.String("log", "", "write debug logs to this file")
	)
	flag.Parse()

	if err := run(*configFile, *geojsonFile, *logFile); err != nil {
		log.Fatal(err)
	}
}

func run(configFile, geojsonFile, logFile string) error {
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		drape.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := config.Resolve(configFile, config.Flags{GeoJSON: geojsonFile})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dev, err := backend.Open(backend.BackendSoft)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	defer dev.Close()

	s, err := scene.Build(dev, cfg)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	defer s.Destroy()

	_, err = tea.NewProgram(viewer.New(s, title(configFile, geojsonFile)), tea.WithAltScreen()).Run()
	return err
}

// title names the scene in the viewer header.
func title(configFile, geojsonFile string) string {
	switch {
	case geojsonFile != "":
		return filepath.Base(geojsonFile)
	case configFile != "":
		return filepath.Base(configFile)
	}
	return "checkerboard"
}
