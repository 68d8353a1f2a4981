package function

import (
	"math"

	"gonum.org/v1/gonum/floats"

	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Spline is a piecewise-linear function over evenly spaced knots on
// [min, max]. A fresh spline evaluates to zero everywhere.
type Spline struct {
	MinVal  float64
	MaxVal  float64
	Weights []float64
}

// NewSpline creates a zero-weight spline with numBins knots over [min, max].
func NewSpline(min, max float64, numBins int) *Spline {
	if numBins < 2 {
		numBins = 2
	}
	return &Spline{MinVal: min, MaxVal: max, Weights: make([]float64, numBins)}
}

// position maps x to a fractional knot index in [0, n-1].
func (s *Spline) position(x float64) float64 {
	n := len(s.Weights)
	span := s.MaxVal - s.MinVal
	if span <= 0 || n < 2 {
		return 0
	}
	t := (x - s.MinVal) / span * float64(n-1)
	if t < 0 {
		return 0
	}
	if t > float64(n-1) {
		return float64(n - 1)
	}
	return t
}

// Evaluate interpolates linearly between the two bracketing knots.
func (s *Spline) Evaluate(x float64) float64 {
	t := s.position(x)
	b := int(t)
	if b >= len(s.Weights)-1 {
		return s.Weights[len(s.Weights)-1]
	}
	frac := t - float64(b)
	return s.Weights[b]*(1-frac) + s.Weights[b+1]*frac
}

// EvaluateVector is not defined for scalar functions.
func (s *Spline) EvaluateVector(x []float64) float64 { return 0 }

// GradientUpdate distributes one clipped SGD step across the two knots
// bracketing x, weighted by proximity.
func (s *Spline) GradientUpdate(grad, clip float64, x float64) {
	t := s.position(x)
	b := int(t)
	if b >= len(s.Weights)-1 {
		b = len(s.Weights) - 2
		if b < 0 {
			return
		}
	}
	frac := t - float64(b)
	s.Weights[b] = clamp(s.Weights[b]-grad*(1-frac), clip)
	s.Weights[b+1] = clamp(s.Weights[b+1]-grad*frac, clip)
}

// GradientUpdateVector is not defined for scalar functions.
func (s *Spline) GradientUpdateVector(grad, clip float64, x []float64) {}

// Resample changes the knot count in place, re-reading the curve at the
// new knot positions. A no-op when the count is unchanged or invalid.
func (s *Spline) Resample(numBins int) {
	if numBins < 2 || numBins == len(s.Weights) {
		return
	}
	next := make([]float64, numBins)
	span := s.MaxVal - s.MinVal
	for i := range next {
		x := s.MinVal + span*float64(i)/float64(numBins-1)
		next[i] = s.Evaluate(x)
	}
	s.Weights = next
}

// Aggregate combines same-shape splines from independent bags: every
// input is resampled to numBins, then scale-weighted into the result.
// Splines fitted over a different feature range cannot be combined.
func (s *Spline) Aggregate(funcs []Function, scale float64, numBins int) (Function, error) {
	if numBins < 2 {
		numBins = len(s.Weights)
	}
	out := NewSpline(s.MinVal, s.MaxVal, numBins)
	for _, f := range funcs {
		sf, ok := f.(*Spline)
		if !ok {
			return nil, aerrors.NewValueError("Spline.Aggregate", "variant mismatch")
		}
		if sf.MinVal != s.MinVal || sf.MaxVal != s.MaxVal {
			return nil, aerrors.NewValueError("Spline.Aggregate", "feature range mismatch")
		}
		w := sf.Weights
		if len(w) != numBins {
			r := sf.Clone().(*Spline)
			r.Resample(numBins)
			w = r.Weights
		}
		floats.AddScaled(out.Weights, scale, w)
	}
	return out, nil
}

// Smooth applies one 1/4-1/2-1/4 local-averaging pass when the curve is
// rougher than the tolerance: if no adjacent knots differ by more than
// tolerance the spline is already smooth and is left untouched.
// Non-positive tolerances disable smoothing.
func (s *Spline) Smooth(tolerance float64) {
	n := len(s.Weights)
	if tolerance <= 0 || n < 3 {
		return
	}
	rough := 0.0
	for i := 1; i < n; i++ {
		if d := math.Abs(s.Weights[i] - s.Weights[i-1]); d > rough {
			rough = d
		}
	}
	if rough <= tolerance {
		return
	}
	next := make([]float64, n)
	next[0] = 0.5*s.Weights[0] + 0.5*s.Weights[1]
	next[n-1] = 0.5*s.Weights[n-1] + 0.5*s.Weights[n-2]
	for i := 1; i < n-1; i++ {
		next[i] = 0.25*s.Weights[i-1] + 0.5*s.Weights[i] + 0.25*s.Weights[i+1]
	}
	s.Weights = next
}

// LInfinityNorm returns the maximum absolute knot weight.
func (s *Spline) LInfinityNorm() float64 {
	if len(s.Weights) == 0 {
		return 0
	}
	return floats.Norm(s.Weights, math.Inf(1))
}

// SetPriors seeds the knots with a linear ramp from params[0] at the
// range minimum to params[1] at the maximum.
func (s *Spline) SetPriors(params []float64) {
	if len(params) < 2 || len(s.Weights) == 0 {
		return
	}
	n := len(s.Weights)
	if n == 1 {
		s.Weights[0] = params[0]
		return
	}
	for i := range s.Weights {
		frac := float64(i) / float64(n-1)
		s.Weights[i] = params[0]*(1-frac) + params[1]*frac
	}
}

// Clone returns a deep copy.
func (s *Spline) Clone() Function {
	c := &Spline{MinVal: s.MinVal, MaxVal: s.MaxVal, Weights: make([]float64, len(s.Weights))}
	copy(c.Weights, s.Weights)
	return c
}
