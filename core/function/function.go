// Package function defines the per-feature scalar functions that make up
// an additive model. The model's prediction is the sum of one function
// output per observed feature.
//
// Three variants are provided:
//
//   - Linear: intercept plus slope over the normalized feature range
//   - Spline: piecewise-linear interpolation over evenly spaced knots
//   - MultiDimensionSpline: one weight per region of a KD partition tree,
//     for dense vector features
//
// All variants share the Function capability set: evaluation, a single
// clipped SGD step, cross-bag aggregation, smoothing, resolution
// resampling, an L-infinity significance norm, and prior seeding.
// Aggregation is only defined between functions of identical variant and
// comparable shape; mixing variants for one feature key is a fatal error.
package function

import "encoding/gob"

// Function is the capability set shared by all per-feature model variants.
type Function interface {
	// Evaluate returns the contribution of a scalar feature value.
	Evaluate(x float64) float64
	// EvaluateVector returns the contribution of a dense vector feature.
	// Scalar variants return 0.
	EvaluateVector(x []float64) float64

	// GradientUpdate applies one SGD step for a scalar feature value,
	// clipping every touched weight to [-clip, clip].
	GradientUpdate(grad, clip float64, x float64)
	// GradientUpdateVector applies one SGD step for a dense vector
	// feature. Scalar variants ignore it.
	GradientUpdateVector(grad, clip float64, x []float64)

	// Aggregate combines same-variant functions from independent bags
	// into one, scaling each input by scale (typically 1/numBags) and,
	// for splines, re-binning to numBins first.
	Aggregate(funcs []Function, scale float64, numBins int) (Function, error)

	// Smooth runs a local-averaging smoothing pass. No-op for variants
	// without a knot vector.
	Smooth(tolerance float64)

	// Resample changes the internal resolution in place. No-op for
	// variants without a knot vector.
	Resample(numBins int)

	// LInfinityNorm returns the maximum absolute weight.
	LInfinityNorm() float64

	// SetPriors seeds initial weight values from external priors.
	SetPriors(params []float64)

	// Clone returns a deep copy safe for independent mutation.
	Clone() Function
}

func init() {
	// Concrete variants cross gob boundaries inside model snapshots.
	gob.Register(&Linear{})
	gob.Register(&Spline{})
	gob.Register(&MultiDimensionSpline{})
}
