package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when an input file does not exist. All inputs are
// checked before any of them is loaded.
var ErrMissingInput = errors.New("missing input")

// ErrNotReady is reported by CheckReadiness until a run has completed.
var ErrNotReady = errors.New("pipeline has not completed a run yet")

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
