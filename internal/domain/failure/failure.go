// Package failure defines the error kinds a rating run can fail with.
//
// Every kind is fatal to the run that raised it. Callers match kinds with
// errors.Is against the sentinels and pull details out with errors.As.
package failure

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Typed errors below unwrap to one of these.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrDataAcquisition = errors.New("data acquisition failed")
	ErrNumericalFit    = errors.New("numerical fit failed")
)

// Stage names a step of the rating pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageAcquisition Stage = "acquisition"
	StageIndexing    Stage = "indexing"
	StageAssembly    Stage = "matrix_assembly"
	StagePruning     Stage = "pruning"
	StageSolving     Stage = "solving"
	StageReporting   Stage = "reporting"
)

// InvalidInputError reports malformed or degenerate input to a stage.
type InvalidInputError struct {
	Reason string
}

// InvalidInput builds an InvalidInputError from a format string.
func InvalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// DataAcquisitionError wraps an error raised by a possession source.
// The wrapped error is surfaced unchanged.
type DataAcquisitionError struct {
	Source string
	Err    error
}

// DataAcquisition wraps err as a DataAcquisitionError. A nil err stays nil.
func DataAcquisition(source string, err error) error {
	if err == nil {
		return nil
	}
	var existing *DataAcquisitionError
	if errors.As(err, &existing) {
		return err
	}
	return &DataAcquisitionError{Source: source, Err: err}
}

func (e *DataAcquisitionError) Error() string {
	return fmt.Sprintf("data acquisition from %s: %v", e.Source, e.Err)
}

func (e *DataAcquisitionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDataAcquisition.
func (e *DataAcquisitionError) Is(target error) bool { return target == ErrDataAcquisition }

// NumericalFitError reports a solve that did not yield a finite solution.
type NumericalFitError struct {
	Alpha float64
	Rows  int
	Cols  int
	Err   error
}

func (e *NumericalFitError) Error() string {
	msg := fmt.Sprintf("numerical fit failed (alpha=%g rows=%d cols=%d)", e.Alpha, e.Rows, e.Cols)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NumericalFitError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNumericalFit.
func (e *NumericalFitError) Is(target error) bool { return target == ErrNumericalFit }

// StageError tags an error with the pipeline stage that raised it.
type StageError struct {
	Stage Stage
	Err   error
}

// AtStage wraps err with stage. A nil err stays nil; an error that is
// already tagged keeps its original stage.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var existing *StageError
	if errors.As(err, &existing) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded on err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
