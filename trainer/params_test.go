package trainer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParamsJSON() string {
	return `{
		"iterations": 3,
		"loss": "logistic",
		"num_bins": 16,
		"num_bags": 4,
		"rank_key": "$rank",
		"learning_rate": 0.1,
		"dropout": 0.2,
		"subsample": 0.5,
		"linfinity_cap": 1.0,
		"smoothing_tolerance": 0.01,
		"linfinity_threshold": 0.001,
		"rank_threshold": 0.5,
		"min_count": 5,
		"model_output": "/tmp/model.gob",
		"multiscale": [8, 16],
		"prior": ["f,x,0.0,1.0"]
	}`
}

func writeParams(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParams(t *testing.T) {
	p, err := LoadParams(writeParams(t, validParamsJSON()))
	require.NoError(t, err)

	assert.Equal(t, 3, p.Iterations)
	assert.Equal(t, LossLogistic, p.Loss)
	assert.Equal(t, []int{8, 16}, p.Multiscale)
	// Defaults for optional keys left unset.
	assert.Equal(t, 100, p.LossMod)
	assert.Equal(t, 1.0, p.Margin)
}

func TestLoadParamsMissingFile(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadParamsMalformedJSON(t *testing.T) {
	_, err := LoadParams(writeParams(t, "{not json"))
	assert.Error(t, err)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	base := func() *Params {
		p, err := LoadParams(writeParams(t, validParamsJSON()))
		require.NoError(t, err)
		return p
	}

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"unknown loss", func(p *Params) { p.Loss = "squared" }},
		{"missing loss", func(p *Params) { p.Loss = "" }},
		{"zero iterations", func(p *Params) { p.Iterations = 0 }},
		{"one bin", func(p *Params) { p.NumBins = 1 }},
		{"zero bags", func(p *Params) { p.NumBags = 0 }},
		{"empty rank key", func(p *Params) { p.RankKey = "" }},
		{"negative learning rate", func(p *Params) { p.LearningRate = -0.1 }},
		{"dropout of one", func(p *Params) { p.Dropout = 1.0 }},
		{"zero subsample", func(p *Params) { p.Subsample = 0 }},
		{"subsample above one", func(p *Params) { p.Subsample = 1.5 }},
		{"empty model output", func(p *Params) { p.ModelOutput = "" }},
		{"negative epsilon", func(p *Params) { p.Epsilon = -1 }},
		{"one-bin multiscale", func(p *Params) { p.Multiscale = []int{8, 1} }},
		{"bad tree depth", func(p *Params) {
			p.DynamicBuckets = &DynamicBucketsParams{MaxTreeDepth: 0, MinLeafCount: 1}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base()
			tc.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestIsLinearFamily(t *testing.T) {
	p := &Params{LinearFeature: []string{"age", "price"}}
	assert.True(t, p.isLinearFamily("price"))
	assert.False(t, p.isLinearFamily("location"))
}
