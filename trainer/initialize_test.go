package trainer

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
)

func initRNG() *rand.Rand {
	return rand.New(rand.NewPCG(11, 12))
}

func makeExamples(n int) []*feature.Vector {
	examples := make([]*feature.Vector, n)
	for i := range examples {
		examples[i] = &feature.Vector{Flat: map[string]map[string]float64{
			"page":  {"views": float64(i)},
			"user":  {"age": float64(20 + i%40)},
			"$rank": {"": float64(i % 2)},
		}}
	}
	return examples
}

func TestInitializeUniformBucketing(t *testing.T) {
	p := testParams(LossLogistic)
	p.MinCount = 1

	m, err := InitializeModel(makeExamples(50), p, initRNG())
	require.NoError(t, err)

	f, ok := m.Get("page", "views")
	require.True(t, ok, "page:views should be initialized")
	s, ok := f.(*function.Spline)
	require.True(t, ok, "default representation should be Spline")
	assert.Len(t, s.Weights, p.NumBins)
	assert.Zero(t, s.LInfinityNorm(), "initial spline should evaluate to zero everywhere")
	assert.Equal(t, 0.0, s.MinVal)
	assert.Equal(t, 49.0, s.MaxVal)
}

func TestInitializeExcludesRankKey(t *testing.T) {
	p := testParams(LossLogistic)
	m, err := InitializeModel(makeExamples(50), p, initRNG())
	require.NoError(t, err)
	assert.False(t, m.Has("$rank", ""), "the label must never become a feature")
}

func TestInitializeMinCountExcludesRareFeatures(t *testing.T) {
	p := testParams(LossLogistic)
	p.MinCount = 10

	examples := makeExamples(50)
	// One rare feature occurring 3 times.
	for i := 0; i < 3; i++ {
		examples[i].Flat["rare"] = map[string]float64{"blip": 1}
	}

	m, err := InitializeModel(examples, p, initRNG())
	require.NoError(t, err)
	assert.False(t, m.Has("rare", "blip"), "features below min_count must be excluded")
	assert.True(t, m.Has("page", "views"))
}

func TestInitializeLinearFeatureForcesLinear(t *testing.T) {
	p := testParams(LossLogistic)
	p.LinearFeature = []string{"user"}

	m, err := InitializeModel(makeExamples(50), p, initRNG())
	require.NoError(t, err)

	f, ok := m.Get("user", "age")
	require.True(t, ok)
	_, isLinear := f.(*function.Linear)
	assert.True(t, isLinear, "linear_feature families must be Linear even when spline-eligible")
}

func TestInitializeDynamicBuckets(t *testing.T) {
	p := testParams(LossLogistic)
	p.MinCount = 1
	p.DynamicBuckets = &DynamicBucketsParams{MaxTreeDepth: 3, MinLeafCount: 2}

	rng := initRNG()
	examples := makeExamples(50)
	for i, ex := range examples {
		ex.Dense = map[string][]float64{"embedding": {rng.Float64(), float64(i % 2)}}
	}

	m, err := InitializeModel(examples, p, initRNG())
	require.NoError(t, err)

	f, ok := m.Get(model.DenseFamily, "embedding")
	require.True(t, ok, "dense feature should get a multi-dimension spline")
	_, isMDS := f.(*function.MultiDimensionSpline)
	assert.True(t, isMDS)

	// Scalar features fall back to Linear under dynamic bucketing.
	sf, ok := m.Get("page", "views")
	require.True(t, ok)
	_, isLinear := sf.(*function.Linear)
	assert.True(t, isLinear)
}

func TestInitializeExtendsLoadedModel(t *testing.T) {
	// Pre-train a model holding one function with non-zero weights.
	pre := model.NewAdditiveModel()
	l := function.NewLinear(0, 100)
	l.Weights = [2]float64{0.9, -0.9}
	pre.Put("page", "views", l)

	path := filepath.Join(t.TempDir(), "init.gob")
	require.NoError(t, model.SaveModel(pre, path))

	p := testParams(LossLogistic)
	p.InitModel = path
	p.MinCount = 1

	m, err := InitializeModel(makeExamples(50), p, initRNG())
	require.NoError(t, err)

	// The pre-loaded function is kept, not overwritten by a fresh spline.
	f, ok := m.Get("page", "views")
	require.True(t, ok)
	kept, isLinear := f.(*function.Linear)
	require.True(t, isLinear)
	assert.Equal(t, [2]float64{0.9, -0.9}, kept.Weights)

	// New keys from the data are still added.
	assert.True(t, m.Has("user", "age"))
}

func TestInitializeFailsWithNoFeatures(t *testing.T) {
	p := testParams(LossLogistic)
	p.MinCount = 1000
	_, err := InitializeModel(makeExamples(10), p, initRNG())
	assert.Error(t, err, "initialization with no surviving features is fatal")
}
