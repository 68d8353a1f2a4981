package trainer

import (
	"math/rand/v2"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/kdtree"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// featureStats accumulates the per-feature range statistics that seed
// model initialization. Produced once before training, immutable after.
type featureStats struct {
	min   float64
	max   float64
	count int
}

// InitializeModel builds the initial model from a data sample. With a
// dynamic_buckets block configured, dense vector features are fitted with
// a balanced partition tree and flat features fall back to Linear;
// otherwise flat features get uniform min/max bucketing into zero-weight
// splines (or Linear for families in linear_feature).
//
// When init_model points at a previous checkpoint, that model is loaded
// first and the initialization pass only adds keys it does not already
// hold: existing functions are never overwritten.
func InitializeModel(examples []*feature.Vector, p *Params, rng *rand.Rand) (*model.AdditiveModel, error) {
	m := model.NewAdditiveModel()
	if p.InitModel != "" {
		loaded, err := model.LoadModel(p.InitModel)
		if err != nil {
			return nil, aerrors.Wrap(err, "failed to load init model")
		}
		m = loaded
	}

	stats := make(map[Key]*featureStats)
	denseSamples := make(map[string][][]float64)
	for _, ex := range examples {
		if p.Subsample < 1 && rng.Float64() >= p.Subsample {
			continue
		}
		for fam, values := range ex.Flat {
			if fam == p.RankKey {
				continue // the label never becomes a feature
			}
			for name, x := range values {
				k := Key{Family: fam, Name: name}
				s, ok := stats[k]
				if !ok {
					stats[k] = &featureStats{min: x, max: x, count: 1}
					continue
				}
				if x < s.min {
					s.min = x
				}
				if x > s.max {
					s.max = x
				}
				s.count++
			}
		}
		if p.DynamicBuckets != nil {
			for name, vec := range ex.Dense {
				denseSamples[name] = append(denseSamples[name], vec)
			}
		}
	}

	for k, s := range stats {
		if s.count < p.MinCount {
			continue
		}
		if m.Has(k.Family, k.Name) {
			continue // extend, don't overwrite
		}
		if p.DynamicBuckets != nil || p.isLinearFamily(k.Family) {
			m.Put(k.Family, k.Name, function.NewLinear(s.min, s.max))
		} else {
			m.Put(k.Family, k.Name, function.NewSpline(s.min, s.max, p.NumBins))
		}
	}

	if p.DynamicBuckets != nil {
		opts := kdtree.Options{
			MaxTreeDepth: p.DynamicBuckets.MaxTreeDepth,
			MinLeafCount: p.DynamicBuckets.MinLeafCount,
		}
		for name, points := range denseSamples {
			if len(points) < p.MinCount {
				continue
			}
			if m.Has(model.DenseFamily, name) {
				continue
			}
			tree, err := kdtree.Build(points, opts)
			if err != nil {
				return nil, aerrors.Wrapf(err, "dynamic bucketing for dense feature %q", name)
			}
			m.Put(model.DenseFamily, name, function.NewMultiDimensionSpline(tree))
		}
	}

	if m.Len() == 0 {
		return nil, aerrors.NewModelError("InitializeModel",
			"no features survived initialization", aerrors.ErrEmptyData)
	}
	return m, nil
}
