package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for swarm operations.
var (
	// ErrInvalidState indicates a point whose position or velocity is NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownName indicates a lookup by name (stepper, preset, metric) failed.
	ErrUnknownName = errors.New("dynamo: unknown name")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: run canceled by context")
)

// SimError records the frame at which a run failed.
type SimError struct {
	Frame   int
	Chain   int
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d (chain %d): %v", e.Frame, e.Chain, e.Wrapped)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}
