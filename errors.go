package drape

import "errors"

var (
	// ErrNilBackend is returned when a nil GraphicsBackend is passed.
	ErrNilBackend = errors.New("drape: backend is nil")

	// ErrRendererDestroyed is returned by Render after Destroy.
	ErrRendererDestroyed = errors.New("drape: renderer destroyed")

	// ErrNilRenderable is returned by Render when a renderable is nil.
	ErrNilRenderable = errors.New("drape: renderable is nil")
)
