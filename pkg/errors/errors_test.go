package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestValueErrorMessage(t *testing.T) {
	err := NewValueError("Params.Validate", "loss is required")
	want := "aerosolve: Params.Validate: loss is required"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Error() = %q, want it to contain %q", err.Error(), want)
	}
	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Error("errors.As should find the ValueError in the chain")
	}
}

func TestDimensionErrorUnwrapsToShapeMismatch(t *testing.T) {
	err := NewDimensionError("Spline.Aggregate", 8, 4, 0)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Error("DimensionError should unwrap to ErrShapeMismatch")
	}
	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should find the DimensionError")
	}
	if de.Expected != 8 || de.Got != 4 {
		t.Errorf("Expected/Got = %d/%d, want 8/4", de.Expected, de.Got)
	}
}

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("AdditiveModel", "Predict")
	if !errors.Is(err, ErrNotFitted) {
		t.Error("NotFittedError should unwrap to ErrNotFitted")
	}
}

func TestModelErrorPreservesCause(t *testing.T) {
	err := NewModelError("Trainer", "no features survived initialization", ErrEmptyData)
	if !errors.Is(err, ErrEmptyData) {
		t.Error("ModelError should unwrap to its cause")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	base := NewValueError("op", "bad value")
	wrapped := Wrapf(Wrap(base, "outer"), "outermost %d", 1)
	var ve *ValueError
	if !errors.As(wrapped, &ve) {
		t.Error("wrapping must preserve the original typed error")
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "Trainer.Train")
		panic("boom")
	}
	err := run()
	if err == nil {
		t.Fatal("Recover should turn the panic into an error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("recovered error %q should carry the panic value", err.Error())
	}
}

func TestConvergenceWarning(t *testing.T) {
	w := NewConvergenceWarning("Trainer", 10, "loss still decreasing")
	if !strings.Contains(w.Error(), "after 10 iterations") {
		t.Errorf("warning message = %q", w.Error())
	}
}
