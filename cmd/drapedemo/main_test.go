package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/drape/backend"
)

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})

	tests := []struct {
		ext     string
		magic   []byte
		wantErr bool
	}{
		{".png", []byte("\x89PNG"), false},
		{".PNG", []byte("\x89PNG"), false},
		{".webp", []byte("RIFF"), false},
		{".jpg", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			var buf bytes.Buffer
			err := encode(&buf, img, tt.ext)
			if (err != nil) != tt.wantErr {
				t.Fatalf("encode(%s) err = %v, wantErr %v", tt.ext, err, tt.wantErr)
			}
			if tt.magic != nil && !bytes.HasPrefix(buf.Bytes(), tt.magic) {
				t.Errorf("output starts with %q, want %q", buf.Bytes()[:4], tt.magic)
			}
		})
	}

	var buf bytes.Buffer
	if err := encode(&buf, img, ".png"); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := decoded.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("decoded red = %#x, want 0xffff", r)
	}
}

func TestRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	err := run(options{
		width:       16,
		height:      12,
		supersample: 1,
		backend:     backend.BackendSoft,
		output:      out,
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("image size = %dx%d, want 16x12", b.Dx(), b.Dy())
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		o       options
		wantErr error
	}{
		{
			name:    "unknown backend",
			o:       options{backend: "metal", output: filepath.Join(dir, "a.png")},
			wantErr: backend.ErrBackendNotAvailable,
		},
		{
			name: "unsupported format",
			o:    options{width: 8, height: 8, supersample: 1, backend: backend.BackendSoft, output: filepath.Join(dir, "a.bmp")},
		},
		{
			name: "missing config",
			o:    options{config: filepath.Join(dir, "missing.toml"), backend: backend.BackendSoft},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.o)
			if err == nil {
				t.Fatal("run() succeeded, want an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("run() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
