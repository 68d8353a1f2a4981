// Package metrics provides evaluation metrics for trained additive
// models: classification accuracy and log-loss for the logistic and hinge
// trainers, mean absolute error for the regression trainer.
//
// The vector forms operate on gonum mat.VecDense so they compose with
// standard evaluation pipelines; the model forms score a model directly
// against labeled observations.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Accuracy returns the fraction of predictions whose sign matches the
// ±1 labels.
func Accuracy(labels, scores *mat.VecDense) (float64, error) {
	n := labels.Len()
	if n == 0 {
		return 0, aerrors.NewValueError("Accuracy", "empty vector")
	}
	if scores.Len() != n {
		return 0, aerrors.NewDimensionError("Accuracy", n, scores.Len(), 0)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if labels.AtVec(i)*scores.AtVec(i) > 0 {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// LogLoss returns the mean logistic loss log(1+exp(-label*score)) over
// ±1 labels.
func LogLoss(labels, scores *mat.VecDense) (float64, error) {
	n := labels.Len()
	if n == 0 {
		return 0, aerrors.NewValueError("LogLoss", "empty vector")
	}
	if scores.Len() != n {
		return 0, aerrors.NewDimensionError("LogLoss", n, scores.Len(), 0)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Log1p(math.Exp(-labels.AtVec(i) * scores.AtVec(i)))
	}
	return sum / float64(n), nil
}

// MAE returns the mean absolute error between labels and scores.
func MAE(labels, scores *mat.VecDense) (float64, error) {
	n := labels.Len()
	if n == 0 {
		return 0, aerrors.NewValueError("MAE", "empty vector")
	}
	if scores.Len() != n {
		return 0, aerrors.NewDimensionError("MAE", n, scores.Len(), 0)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(labels.AtVec(i) - scores.AtVec(i))
	}
	return sum / float64(n), nil
}

// EvaluateClassifier scores a model against ±1-labeled observations and
// returns accuracy and log-loss. Observations without the rank key are
// skipped.
func EvaluateClassifier(m *model.AdditiveModel, examples []*feature.Vector,
	rankKey string, rankThreshold float64) (accuracy, logLoss float64, err error) {

	labels, scores, err := collect(m, examples, func(v *feature.Vector) (float64, error) {
		return v.BinaryLabel(rankKey, rankThreshold)
	})
	if err != nil {
		return 0, 0, err
	}
	if accuracy, err = Accuracy(labels, scores); err != nil {
		return 0, 0, err
	}
	if logLoss, err = LogLoss(labels, scores); err != nil {
		return 0, 0, err
	}
	return accuracy, logLoss, nil
}

// EvaluateRegressor scores a model against raw-labeled observations and
// returns mean absolute error.
func EvaluateRegressor(m *model.AdditiveModel, examples []*feature.Vector,
	rankKey string) (float64, error) {

	labels, scores, err := collect(m, examples, func(v *feature.Vector) (float64, error) {
		return v.Label(rankKey)
	})
	if err != nil {
		return 0, err
	}
	return MAE(labels, scores)
}

func collect(m *model.AdditiveModel, examples []*feature.Vector,
	labelOf func(*feature.Vector) (float64, error)) (*mat.VecDense, *mat.VecDense, error) {

	var labels, scores []float64
	for _, ex := range examples {
		label, err := labelOf(ex)
		if err != nil {
			continue
		}
		labels = append(labels, label)
		scores = append(scores, m.Predict(ex))
	}
	if len(labels) == 0 {
		return nil, nil, aerrors.NewValueError("metrics.collect", "no labeled examples")
	}
	return mat.NewVecDense(len(labels), labels), mat.NewVecDense(len(scores), scores), nil
}
