package overlay

import (
	"errors"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
)

// ErrInvalidArgument is returned by Render for an unusable surface, scale or
// visibility threshold.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrPhaseViolation is returned by Surface.Blit after the vector phase began.
var ErrPhaseViolation = errors.New("overlay: mask blit after vector drawing started")

// Issue records one annotation, or part of one, that was not drawn.
type Issue struct {
	ID    annotation.ID
	Layer string
	Err   error
}

func (i Issue) Error() string {
	return string(i.ID) + " (" + i.Layer + "): " + i.Err.Error()
}

func (i Issue) Unwrap() error { return i.Err }
