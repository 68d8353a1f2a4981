package function

import (
	"math"

	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Linear is an intercept-plus-slope function over the normalized feature
// range: f(x) = w0 + w1 * (x - min) / (max - min).
type Linear struct {
	MinVal  float64
	MaxVal  float64
	Weights [2]float64
}

// NewLinear creates a zero-weight linear function over [min, max].
func NewLinear(min, max float64) *Linear {
	return &Linear{MinVal: min, MaxVal: max}
}

func (l *Linear) normalize(x float64) float64 {
	span := l.MaxVal - l.MinVal
	if span <= 0 {
		return 0
	}
	return (x - l.MinVal) / span
}

// Evaluate returns w0 + w1 * normalized(x).
func (l *Linear) Evaluate(x float64) float64 {
	return l.Weights[0] + l.Weights[1]*l.normalize(x)
}

// EvaluateVector is not defined for scalar functions.
func (l *Linear) EvaluateVector(x []float64) float64 { return 0 }

// GradientUpdate applies one clipped SGD step to both weights.
func (l *Linear) GradientUpdate(grad, clip float64, x float64) {
	l.Weights[0] = clamp(l.Weights[0]-grad, clip)
	l.Weights[1] = clamp(l.Weights[1]-grad*l.normalize(x), clip)
}

// GradientUpdateVector is not defined for scalar functions.
func (l *Linear) GradientUpdateVector(grad, clip float64, x []float64) {}

// Aggregate combines linear functions from independent bags by scaled
// summation of their weights. numBins is ignored for this variant.
func (l *Linear) Aggregate(funcs []Function, scale float64, numBins int) (Function, error) {
	out := &Linear{MinVal: l.MinVal, MaxVal: l.MaxVal}
	for _, f := range funcs {
		lf, ok := f.(*Linear)
		if !ok {
			return nil, aerrors.NewValueError("Linear.Aggregate", "variant mismatch")
		}
		out.Weights[0] += scale * lf.Weights[0]
		out.Weights[1] += scale * lf.Weights[1]
	}
	return out, nil
}

// Smooth is a no-op for linear functions.
func (l *Linear) Smooth(tolerance float64) {}

// Resample is a no-op for linear functions.
func (l *Linear) Resample(numBins int) {}

// LInfinityNorm returns the maximum absolute weight.
func (l *Linear) LInfinityNorm() float64 {
	return math.Max(math.Abs(l.Weights[0]), math.Abs(l.Weights[1]))
}

// SetPriors seeds the intercept and slope from the first two params.
func (l *Linear) SetPriors(params []float64) {
	if len(params) >= 2 {
		l.Weights[0] = params[0]
		l.Weights[1] = params[1]
	}
}

// Clone returns a deep copy.
func (l *Linear) Clone() Function {
	c := *l
	return &c
}

func clamp(w, clip float64) float64 {
	if clip <= 0 {
		return w
	}
	if w > clip {
		return clip
	}
	if w < -clip {
		return -clip
	}
	return w
}
