package trainer

import (
	"math"
	"math/rand/v2"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// corrCap clamps label*prediction in the logistic loss so exp() stays
// finite for any prediction magnitude.
const corrCap = 10.0

// updateRule computes the loss for one observation and applies the
// corresponding in-place weight updates to the worker-local model.
type updateRule func(m *model.AdditiveModel, v *feature.Vector, p *Params, rng *rand.Rand) (float64, error)

// selectUpdateRule resolves the configured loss kind. Unknown kinds are
// rejected here, before any training work starts.
func selectUpdateRule(loss string) (updateRule, error) {
	switch loss {
	case LossLogistic:
		return logisticUpdate, nil
	case LossHinge:
		return hingeUpdate, nil
	case LossRegression:
		return regressionUpdate, nil
	default:
		return nil, aerrors.NewValueError("selectUpdateRule", "unknown loss kind "+loss)
	}
}

// flatRef is one flat feature that survived dropout.
type flatRef struct {
	fn function.Function
	x  float64
}

// denseRef is one dense feature that survived dropout.
type denseRef struct {
	fn function.Function
	x  []float64
}

// activeSet holds the features of one observation that survived dropout.
// The same set drives both the prediction and the weight update so an
// observation never updates a function it did not score with.
type activeSet struct {
	flats  []flatRef
	denses []denseRef
}

// collectActive gathers the model functions for the observation's
// features, independently dropping each with probability dropout. The
// rank-key family has no function in the model and is skipped naturally.
func collectActive(m *model.AdditiveModel, v *feature.Vector, dropout float64, rng *rand.Rand) activeSet {
	var set activeSet
	for fam, values := range v.Flat {
		funcs, ok := m.Families[fam]
		if !ok {
			continue
		}
		for name, x := range values {
			fn, ok := funcs[name]
			if !ok {
				continue
			}
			if dropout > 0 && rng.Float64() < dropout {
				continue
			}
			set.flats = append(set.flats, flatRef{fn: fn, x: x})
		}
	}
	if len(v.Dense) > 0 {
		if funcs, ok := m.Families[model.DenseFamily]; ok {
			for name, vec := range v.Dense {
				fn, ok := funcs[name]
				if !ok {
					continue
				}
				if dropout > 0 && rng.Float64() < dropout {
					continue
				}
				set.denses = append(set.denses, denseRef{fn: fn, x: vec})
			}
		}
	}
	return set
}

// predict sums the active contributions with inverted-dropout rescaling:
// dividing by the keep probability during training means inference needs
// no rescale. With dropout 0 the division is by 1 and has no effect.
func (s *activeSet) predict(dropout float64) float64 {
	var sum float64
	for _, f := range s.flats {
		sum += f.fn.Evaluate(f.x)
	}
	for _, d := range s.denses {
		sum += d.fn.EvaluateVector(d.x)
	}
	return sum / (1 - dropout)
}

// update applies one clipped SGD step of the given magnitude to every
// active feature, flat and dense.
func (s *activeSet) update(grad, clip float64) {
	for _, f := range s.flats {
		f.fn.GradientUpdate(grad, clip, f.x)
	}
	for _, d := range s.denses {
		d.fn.GradientUpdateVector(grad, clip, d.x)
	}
}

// logisticUpdate implements the logistic loss: the correlation
// label*prediction is clamped so both loss and gradient stay finite.
func logisticUpdate(m *model.AdditiveModel, v *feature.Vector, p *Params, rng *rand.Rand) (float64, error) {
	label, err := v.BinaryLabel(p.RankKey, p.RankThreshold)
	if err != nil {
		return 0, err
	}
	set := collectActive(m, v, p.Dropout, rng)
	prediction := set.predict(p.Dropout)

	corr := math.Min(corrCap, label*prediction)
	// Branch on sign so the loss stays finite for arbitrarily negative
	// correlations.
	var loss float64
	if corr > 0 {
		loss = math.Log1p(math.Exp(-corr))
	} else {
		loss = -corr + math.Log1p(math.Exp(corr))
	}
	grad := -label / (1 + math.Exp(corr))
	set.update(grad*p.LearningRate, p.LInfinityCap)
	return loss, nil
}

// hingeUpdate implements the hinge loss with a configurable margin. The
// model only moves when the observation violates the margin.
func hingeUpdate(m *model.AdditiveModel, v *feature.Vector, p *Params, rng *rand.Rand) (float64, error) {
	label, err := v.BinaryLabel(p.RankKey, p.RankThreshold)
	if err != nil {
		return 0, err
	}
	set := collectActive(m, v, p.Dropout, rng)
	prediction := set.predict(p.Dropout)

	loss := math.Max(0, p.Margin-label*prediction)
	if loss > 0 {
		set.update(-label*p.LearningRate, p.LInfinityCap)
	}
	return loss, nil
}

// regressionUpdate implements epsilon-insensitive absolute-error
// regression: residuals inside the dead zone leave the model untouched.
func regressionUpdate(m *model.AdditiveModel, v *feature.Vector, p *Params, rng *rand.Rand) (float64, error) {
	label, err := v.Label(p.RankKey)
	if err != nil {
		return 0, err
	}
	set := collectActive(m, v, p.Dropout, rng)
	prediction := set.predict(p.Dropout)

	loss := math.Abs(prediction - label)
	switch {
	case prediction-label > p.Epsilon:
		set.update(p.LearningRate, p.LInfinityCap)
	case prediction-label < -p.Epsilon:
		set.update(-p.LearningRate, p.LInfinityCap)
	}
	return loss, nil
}
