package resonance

import (
	"errors"
	"fmt"

	"github.com/nvandessel/resonance/internal/models"
)

// Validation and runtime errors. Validation errors are wrapped with the
// violated precondition; test them with errors.Is.
var (
	// ErrInvalidDimension indicates a state vector without exactly four components.
	ErrInvalidDimension = models.ErrInvalidDimension

	// ErrInvalidCycles indicates a negative cycle count.
	ErrInvalidCycles = errors.New("cycle count must be non-negative")

	// ErrInvalidBounds indicates a bounds vector of the wrong length or with
	// negative or non-finite components.
	ErrInvalidBounds = errors.New("bounds must be 4 finite non-negative values")

	// ErrInvalidRecordInterval indicates a non-positive record interval.
	ErrInvalidRecordInterval = errors.New("record interval must be positive")

	// ErrInvalidState indicates an initial state containing NaN or Inf.
	ErrInvalidState = errors.New("state contains NaN or Inf")

	// ErrInvalidConfig indicates an engine configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNumericInstability indicates the integration produced NaN or Inf.
	ErrNumericInstability = errors.New("integration diverged (NaN or Inf)")
)

// SimulationError carries the cycle and last good state at which a run stopped.
type SimulationError struct {
	Cycle int
	State models.Vector4
	Err   error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("cycle %d (state %v): %v", e.Cycle, e.State, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
