package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidThrust indicates a negative, NaN or infinite thrust command.
	ErrInvalidThrust = errors.New("dynamo: thrust must be finite and non-negative")

	// ErrThrustArity indicates a thrust command with no values or more than four.
	ErrThrustArity = errors.New("dynamo: thrust takes one to four values")

	// ErrInvalidDuration indicates a negative or non-finite advance duration.
	ErrInvalidDuration = errors.New("dynamo: duration must be finite and non-negative")

	// ErrInvalidParams indicates a physical constant outside its valid range.
	ErrInvalidParams = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidState indicates the vehicle state picked up a NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrMissingComponent indicates a nil model, integrator, contact or accumulator.
	ErrMissingComponent = errors.New("dynamo: missing simulation component")
)

// StepError wraps an error with the step that produced it.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
