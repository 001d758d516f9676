package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates parameters or an initial state that must be
	// rejected before the loop starts.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNumericDegeneracy indicates a non-finite value appeared in the state.
	ErrNumericDegeneracy = errors.New("dynamo: non-finite state")
)

// StepError wraps an error with the step at which it was detected.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
