// Package errors defines the typed errors and warnings used by the
// additive-model training pipeline.
//
// Errors fall into two groups: fatal errors that abort a training run
// (configuration problems, shape mismatches during aggregation, worker
// failures) and non-fatal warnings that are logged and skipped (malformed
// prior specs, convergence notices). All constructors return errors that
// participate in Go 1.13+ errors.Is / errors.As chains and carry stack
// traces via cockroachdb/errors.
package errors

import (
	"fmt"

	cockroach "github.com/cockroachdb/errors"

	"github.com/jaydenwhyte/aerosolve/pkg/log"
)

// Sentinel errors for errors.Is comparisons.
var (
	// ErrEmptyData indicates an operation received no data.
	ErrEmptyData = cockroach.New("empty data")
	// ErrNotFitted indicates a model was used before training.
	ErrNotFitted = cockroach.New("model is not fitted")
	// ErrInvalidConfig indicates a missing or out-of-range parameter.
	ErrInvalidConfig = cockroach.New("invalid configuration")
	// ErrShapeMismatch indicates incompatible function variants or bin
	// counts reported for the same feature key.
	ErrShapeMismatch = cockroach.New("shape mismatch")
)

// ValueError reports an invalid value passed to an operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("aerosolve: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) error {
	return cockroach.WithStack(&ValueError{Op: op, Message: message})
}

// DimensionError reports a mismatch between expected and actual sizes,
// e.g. two bags reporting splines with different bin counts.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("aerosolve: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrShapeMismatch }

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) error {
	return cockroach.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// NotFittedError reports use of an untrained model.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("aerosolve: %s.%s: model is not fitted", e.ModelName, e.Method)
}

func (e *NotFittedError) Unwrap() error { return ErrNotFitted }

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return cockroach.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// ModelError wraps a failure inside a model operation with its cause.
type ModelError struct {
	ModelName string
	Message   string
	Cause     error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("aerosolve: %s: %s: %v", e.ModelName, e.Message, e.Cause)
	}
	return fmt.Sprintf("aerosolve: %s: %s", e.ModelName, e.Message)
}

func (e *ModelError) Unwrap() error { return e.Cause }

// NewModelError creates a ModelError with an optional cause.
func NewModelError(modelName, message string, cause error) error {
	return cockroach.WithStack(&ModelError{ModelName: modelName, Message: message, Cause: cause})
}

// Warning is a non-fatal condition worth surfacing but not aborting on.
type Warning struct {
	Source  string
	Message string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("aerosolve: warning: %s: %s", w.Source, w.Message)
}

// NewWarning creates a Warning.
func NewWarning(source, message string) *Warning {
	return &Warning{Source: source, Message: message}
}

// NewConvergenceWarning creates a warning about incomplete convergence.
func NewConvergenceWarning(modelName string, iterations int, message string) *Warning {
	return &Warning{
		Source:  modelName,
		Message: fmt.Sprintf("after %d iterations: %s", iterations, message),
	}
}

// Warn logs a warning through the package logger.
func Warn(w *Warning) {
	log.GetLoggerWithName("errors").Warn(w.Message, "source", w.Source)
}

// Recover converts a panic in the enclosing function into an error.
// Use as: defer errors.Recover(&err, "Trainer.Train").
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		*err = cockroach.Newf("aerosolve: %s: recovered from panic: %v", op, r)
	}
}

// Wrap annotates err with a message, preserving the chain.
func Wrap(err error, message string) error {
	return cockroach.Wrap(err, message)
}

// Wrapf annotates err with a formatted message, preserving the chain.
func Wrapf(err error, format string, args ...interface{}) error {
	return cockroach.Wrapf(err, format, args...)
}
