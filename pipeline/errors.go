package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the pipeline stage an error escaped from
type Stage string

const (
	StageDecode     Stage = "decode"
	StageExtraction Stage = "extraction"
	StageAnalysis   Stage = "analysis"
	StageMapping    Stage = "mapping"
	StageTimeline   Stage = "timeline"
	StageSynthesis  Stage = "synthesis"
)

// Error kinds. Degenerate-but-valid numeric input (silence, flat spectra)
// never surfaces as an error - those cases resolve to documented fallback
// constants inside the stages.
var (
	// ErrInvalidInput marks structurally invalid input: empty buffers,
	// malformed feature vectors, out-of-range values
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedConfiguration marks unknown instrument/mood options
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrInternalInvariant marks a broken timeline/ordering invariant;
	// seeing it means a bug, not bad input
	ErrInternalInvariant = errors.New("internal invariant violation")
)

// Error carries the stage, kind and offending value of a surfaced failure
type Error struct {
	Stage Stage
	Kind  error
	Value string // offending value, when one exists
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	if e.Value != "" {
		msg += fmt.Sprintf(" (%s)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches against the error kind, so errors.Is(err, ErrInvalidInput) works
// through the stage wrapper
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(stage Stage, kind error, value string, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Value: value, Err: err}
}
