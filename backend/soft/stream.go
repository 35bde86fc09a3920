package soft

import (
	"fmt"

	"github.com/gogpu/drape"
	"github.com/gogpu/drape/backend"
)

// CommandStream records clears and draw bundles and runs them in order
// on Finish.
type CommandStream struct {
	ops      []func() error
	finished bool
}

var _ backend.Stream = (*CommandStream)(nil)

func targetsOf(color drape.ColorTarget, depthStencil drape.DepthStencilTarget) (*ColorBuffer, *DepthStencilBuffer, error) {
	ds, ok := depthStencil.(*DepthStencilBuffer)
	if !ok || ds == nil {
		return nil, nil, fmt.Errorf("%w: depth/stencil target %T", ErrTargetMismatch, depthStencil)
	}
	if color == nil {
		return nil, ds, nil
	}
	c, ok := color.(*ColorBuffer)
	if !ok || c == nil {
		return nil, nil, fmt.Errorf("%w: color target %T", ErrTargetMismatch, color)
	}
	if c.width != ds.width || c.height != ds.height {
		return nil, nil, fmt.Errorf("%w: color %dx%d, depth/stencil %dx%d",
			ErrTargetMismatch, c.width, c.height, ds.width, ds.height)
	}
	return c, ds, nil
}

// Clear implements backend.Stream.
func (s *CommandStream) Clear(color drape.ColorTarget, depthStencil drape.DepthStencilTarget, c drape.RGBA) error {
	if s.finished {
		return ErrStreamFinished
	}
	cb, ds, err := targetsOf(color, depthStencil)
	if err != nil {
		return err
	}
	s.ops = append(s.ops, func() error {
		if cb != nil {
			cb.Clear(c)
		}
		ds.Clear(1, 0)
		return nil
	})
	return nil
}

// Submit implements drape.CommandStream. The bundle is copied, so the
// caller may reuse it.
func (s *CommandStream) Submit(bundle *drape.DrawBundle) error {
	if s.finished {
		return ErrStreamFinished
	}
	cb, ds, err := targetsOf(bundle.Color, bundle.DepthStencil)
	if err != nil {
		return err
	}
	label := bundle.Label
	draws := append([]drape.DrawCall(nil), bundle.Draws...)
	s.ops = append(s.ops, func() error {
		for i := range draws {
			skipped, err := execute(cb, ds, &draws[i])
			if err != nil {
				return fmt.Errorf("%s: draw %d: %w", label, i, err)
			}
			if skipped > 0 {
				drape.Logger().Warn("soft: skipped triangles with out-of-range indices",
					"bundle", label, "draw", i, "count", skipped)
			}
		}
		return nil
	})
	return nil
}

// Finish implements backend.Stream.
func (s *CommandStream) Finish() error {
	if s.finished {
		return ErrStreamFinished
	}
	s.finished = true
	ops := s.ops
	s.ops = nil
	for _, op := range ops {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}
