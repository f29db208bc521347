package pipeline

import (
	"errors"
	"fmt"
)

// ErrUnknownInvestigation means no run exists for the given handle.
var ErrUnknownInvestigation = errors.New("pipeline: unknown investigation handle")

// ErrNoSeed means StartInvestigation was called with an empty seed.
var ErrNoSeed = errors.New("pipeline: seed handle is empty")

// StageFailureError marks a whole stage as having produced no usable
// data. It is the only error class that moves an investigation to the
// Failed state; everything below stage granularity degrades to notes.
type StageFailureError struct {
	// Stage is the name of the failed stage.
	Stage string

	// Reason describes what was missing.
	Reason string
}

// Error implements the error interface.
func (e *StageFailureError) Error() string {
	return fmt.Sprintf("pipeline: stage %s failed: %s", e.Stage, e.Reason)
}
