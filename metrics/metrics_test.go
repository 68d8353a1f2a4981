package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
)

func TestAccuracy(t *testing.T) {
	labels := mat.NewVecDense(4, []float64{1, 1, -1, -1})
	scores := mat.NewVecDense(4, []float64{2.5, -0.5, -1.0, -3.0})

	acc, err := Accuracy(labels, scores)
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if acc != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", acc)
	}
}

func TestAccuracyDimensionMismatch(t *testing.T) {
	labels := mat.NewVecDense(3, []float64{1, 1, -1})
	scores := mat.NewVecDense(2, []float64{1, 1})
	if _, err := Accuracy(labels, scores); err == nil {
		t.Error("expected dimension error, got nil")
	}
}

func TestLogLoss(t *testing.T) {
	labels := mat.NewVecDense(2, []float64{1, -1})
	scores := mat.NewVecDense(2, []float64{0, 0})

	ll, err := LogLoss(labels, scores)
	if err != nil {
		t.Fatalf("LogLoss failed: %v", err)
	}
	if math.Abs(ll-math.Log(2)) > 1e-12 {
		t.Errorf("LogLoss at score 0 = %v, want ln 2", ll)
	}
}

func TestMAE(t *testing.T) {
	labels := mat.NewVecDense(3, []float64{1, 2, 3})
	scores := mat.NewVecDense(3, []float64{1.5, 2, 2})

	mae, err := MAE(labels, scores)
	if err != nil {
		t.Fatalf("MAE failed: %v", err)
	}
	if math.Abs(mae-0.5) > 1e-12 {
		t.Errorf("MAE = %v, want 0.5", mae)
	}
}

func TestEvaluateClassifierSkipsUnlabeled(t *testing.T) {
	m := model.NewAdditiveModel()
	l := function.NewLinear(0, 1)
	l.Weights = [2]float64{0, 1}
	m.Put("f", "x", l)

	examples := []*feature.Vector{
		{Flat: map[string]map[string]float64{"f": {"x": 1}, "$rank": {"": 1}}},
		{Flat: map[string]map[string]float64{"f": {"x": 0}, "$rank": {"": 0}}},
		{Flat: map[string]map[string]float64{"f": {"x": 0.5}}}, // no label, skipped
	}

	acc, _, err := EvaluateClassifier(m, examples, "$rank", 0.5)
	if err != nil {
		t.Fatalf("EvaluateClassifier failed: %v", err)
	}
	// x=1 scores +1 for label +1; x=0 scores 0 which never counts as
	// correct for label -1.
	if acc != 0.5 {
		t.Errorf("accuracy = %v, want 0.5", acc)
	}
}

func TestEvaluateRegressor(t *testing.T) {
	m := model.NewAdditiveModel()
	l := function.NewLinear(0, 1)
	l.Weights = [2]float64{0, 1}
	m.Put("f", "x", l)

	examples := []*feature.Vector{
		{Flat: map[string]map[string]float64{"f": {"x": 0.5}, "$rank": {"": 1.0}}},
	}
	mae, err := EvaluateRegressor(m, examples, "$rank")
	if err != nil {
		t.Fatalf("EvaluateRegressor failed: %v", err)
	}
	if math.Abs(mae-0.5) > 1e-12 {
		t.Errorf("MAE = %v, want 0.5", mae)
	}
}

func TestEvaluateClassifierNoLabeledExamples(t *testing.T) {
	m := model.NewAdditiveModel()
	m.Put("f", "x", function.NewLinear(0, 1))
	examples := []*feature.Vector{
		{Flat: map[string]map[string]float64{"f": {"x": 0.5}}},
	}
	if _, _, err := EvaluateClassifier(m, examples, "$rank", 0); err == nil {
		t.Error("expected error when no example carries the rank key")
	}
}
