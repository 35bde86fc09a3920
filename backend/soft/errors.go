package soft

import "errors"

var (
	// ErrTargetMismatch is returned when a draw's targets are not soft
	// buffers or their sizes differ.
	ErrTargetMismatch = errors.New("soft: color and depth/stencil targets do not match")

	// ErrUnknownHandle is returned when a buffer or pipeline was not created
	// by this backend or was already destroyed.
	ErrUnknownHandle = errors.New("soft: unknown or destroyed handle")

	// ErrStreamFinished is returned when a finished stream is used again.
	ErrStreamFinished = errors.New("soft: command stream already finished")
)
