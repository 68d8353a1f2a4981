package function

import (
	"math"

	"github.com/jaydenwhyte/aerosolve/core/kdtree"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// MultiDimensionSpline scores dense vector features with one weight per
// region of a KD partition tree. Evaluation sums the weights of every
// region on the root-to-leaf path containing the point, so coarse
// regions act as low-resolution terms refined by their children.
//
// The tree is fitted once during model initialization and treated as
// immutable afterwards; clones share it and copy only the weights.
type MultiDimensionSpline struct {
	Tree    *kdtree.Tree
	Weights []float64 // one per tree node
}

// NewMultiDimensionSpline creates a zero-weight function over the given
// partition tree.
func NewMultiDimensionSpline(tree *kdtree.Tree) *MultiDimensionSpline {
	return &MultiDimensionSpline{
		Tree:    tree,
		Weights: make([]float64, len(tree.Nodes)),
	}
}

// Evaluate is not defined for vector functions.
func (m *MultiDimensionSpline) Evaluate(x float64) float64 { return 0 }

// EvaluateVector sums the weights along the partition path containing x.
func (m *MultiDimensionSpline) EvaluateVector(x []float64) float64 {
	var sum float64
	for _, i := range m.Tree.Path(x) {
		sum += m.Weights[i]
	}
	return sum
}

// GradientUpdate is not defined for vector functions.
func (m *MultiDimensionSpline) GradientUpdate(grad, clip float64, x float64) {}

// GradientUpdateVector applies one clipped SGD step to every region on
// the path containing x.
func (m *MultiDimensionSpline) GradientUpdateVector(grad, clip float64, x []float64) {
	for _, i := range m.Tree.Path(x) {
		m.Weights[i] = clamp(m.Weights[i]-grad, clip)
	}
}

// Aggregate combines same-tree functions from independent bags by scaled
// summation of their region weights. numBins is ignored for this variant.
func (m *MultiDimensionSpline) Aggregate(funcs []Function, scale float64, numBins int) (Function, error) {
	out := &MultiDimensionSpline{Tree: m.Tree, Weights: make([]float64, len(m.Weights))}
	for _, f := range funcs {
		mf, ok := f.(*MultiDimensionSpline)
		if !ok {
			return nil, aerrors.NewValueError("MultiDimensionSpline.Aggregate", "variant mismatch")
		}
		if len(mf.Weights) != len(m.Weights) {
			return nil, aerrors.NewDimensionError("MultiDimensionSpline.Aggregate",
				len(m.Weights), len(mf.Weights), 0)
		}
		for i, w := range mf.Weights {
			out.Weights[i] += scale * w
		}
	}
	return out, nil
}

// Smooth is a no-op; region weights have no knot ordering to average.
func (m *MultiDimensionSpline) Smooth(tolerance float64) {}

// Resample is a no-op; the partition tree is fixed at initialization.
func (m *MultiDimensionSpline) Resample(numBins int) {}

// LInfinityNorm returns the maximum absolute region weight.
func (m *MultiDimensionSpline) LInfinityNorm() float64 {
	var max float64
	for _, w := range m.Weights {
		if a := math.Abs(w); a > max {
			max = a
		}
	}
	return max
}

// SetPriors is a no-op; priors are only defined for scalar variants.
func (m *MultiDimensionSpline) SetPriors(params []float64) {}

// Clone copies the weights and shares the immutable tree.
func (m *MultiDimensionSpline) Clone() Function {
	c := &MultiDimensionSpline{Tree: m.Tree, Weights: make([]float64, len(m.Weights))}
	copy(c.Weights, m.Weights)
	return c
}
