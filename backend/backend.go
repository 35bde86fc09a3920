package backend

import (
	"errors"
	"image"

	"github.com/gogpu/drape"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or could not be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendSoft is the name of the CPU reference backend.
	BackendSoft = "soft"
	// BackendWGPU is the name of the gogpu/wgpu HAL backend.
	BackendWGPU = "wgpu"
)

// Device is a drape.GraphicsBackend with offscreen targets.
type Device interface {
	drape.GraphicsBackend

	// Name returns the backend identifier.
	Name() string

	// NewTargets allocates a color and a depth/stencil target of the given
	// size. Both start cleared.
	NewTargets(width, height int) (drape.ColorTarget, drape.DepthStencilTarget, error)

	// DestroyTargets releases targets allocated by NewTargets.
	DestroyTargets(drape.ColorTarget, drape.DepthStencilTarget)

	// NewStream starts recording commands.
	NewStream() (Stream, error)

	// ReadPixels copies a color target into an image. Pending streams must
	// be finished first.
	ReadPixels(drape.ColorTarget) (*image.NRGBA, error)

	// Close releases the device. It must not be used afterwards.
	Close()
}

// Stream is a drape.CommandStream that can also clear targets.
type Stream interface {
	drape.CommandStream

	// Clear resets the color target to c, depth to 1 and stencil to 0.
	Clear(color drape.ColorTarget, depthStencil drape.DepthStencilTarget, c drape.RGBA) error

	// Finish executes everything recorded and waits for completion.
	// The stream cannot be reused.
	Finish() error
}
