package trainer

import (
	"encoding/json"
	"fmt"
	"os"

	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Loss kinds supported by the trainer.
const (
	LossLogistic   = "logistic"
	LossHinge      = "hinge"
	LossRegression = "regression"
)

// DynamicBucketsParams configures the balanced-partition feature
// bucketing used for dense vector features. Presence of the block
// switches model initialization into dynamic-bucketing mode.
type DynamicBucketsParams struct {
	MaxTreeDepth int `json:"max_tree_depth"`
	MinLeafCount int `json:"min_leaf_count"`
}

// Params contains all training hyperparameters.
type Params struct {
	// Required.
	Iterations         int     `json:"iterations"`
	Loss               string  `json:"loss"`
	NumBins            int     `json:"num_bins"`
	NumBags            int     `json:"num_bags"`
	RankKey            string  `json:"rank_key"`
	LearningRate       float64 `json:"learning_rate"`
	Dropout            float64 `json:"dropout"`
	Subsample          float64 `json:"subsample"`
	LInfinityCap       float64 `json:"linfinity_cap"`
	SmoothingTolerance float64 `json:"smoothing_tolerance"`
	LInfinityThreshold float64 `json:"linfinity_threshold"`
	RankThreshold      float64 `json:"rank_threshold"`
	MinCount           int     `json:"min_count"`
	ModelOutput        string  `json:"model_output"`

	// Optional.
	InitModel      string                `json:"init_model,omitempty"`
	Epsilon        float64               `json:"epsilon,omitempty"`
	LinearFeature  []string              `json:"linear_feature,omitempty"`
	LossMod        int                   `json:"loss_mod,omitempty"`
	Prior          []string              `json:"prior,omitempty"`
	Margin         float64               `json:"margin,omitempty"`
	Multiscale     []int                 `json:"multiscale,omitempty"`
	DynamicBuckets *DynamicBucketsParams `json:"dynamic_buckets,omitempty"`
	Seed           int64                 `json:"seed,omitempty"`
}

// LoadParams reads a JSON parameter file, applies defaults for optional
// keys, and validates the result. Missing required keys fail fast.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aerrors.Wrap(err, "failed to read params file")
	}
	p := &Params{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, aerrors.Wrap(err, "failed to parse params file")
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyDefaults fills optional parameters that were left at their zero
// value.
func (p *Params) ApplyDefaults() {
	if p.LossMod == 0 {
		p.LossMod = 100
	}
	if p.Margin == 0 {
		p.Margin = 1.0
	}
}

// Validate checks required keys and value ranges. Training never starts
// from an invalid parameter set.
func (p *Params) Validate() error {
	switch p.Loss {
	case LossLogistic, LossHinge, LossRegression:
	case "":
		return aerrors.NewValueError("Params.Validate", "loss is required")
	default:
		return aerrors.NewValueError("Params.Validate", fmt.Sprintf("unknown loss kind %q", p.Loss))
	}
	if p.Iterations < 1 {
		return aerrors.NewValueError("Params.Validate", "iterations must be >= 1")
	}
	if p.NumBins < 2 {
		return aerrors.NewValueError("Params.Validate", "num_bins must be >= 2")
	}
	if p.NumBags < 1 {
		return aerrors.NewValueError("Params.Validate", "num_bags must be >= 1")
	}
	if p.RankKey == "" {
		return aerrors.NewValueError("Params.Validate", "rank_key is required")
	}
	if p.LearningRate <= 0 {
		return aerrors.NewValueError("Params.Validate", "learning_rate must be > 0")
	}
	if p.Dropout < 0 || p.Dropout >= 1 {
		return aerrors.NewValueError("Params.Validate", "dropout must be in [0, 1)")
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		return aerrors.NewValueError("Params.Validate", "subsample must be in (0, 1]")
	}
	if p.LInfinityCap < 0 {
		return aerrors.NewValueError("Params.Validate", "linfinity_cap must be >= 0")
	}
	if p.SmoothingTolerance < 0 {
		return aerrors.NewValueError("Params.Validate", "smoothing_tolerance must be >= 0")
	}
	if p.LInfinityThreshold < 0 {
		return aerrors.NewValueError("Params.Validate", "linfinity_threshold must be >= 0")
	}
	if p.MinCount < 0 {
		return aerrors.NewValueError("Params.Validate", "min_count must be >= 0")
	}
	if p.ModelOutput == "" {
		return aerrors.NewValueError("Params.Validate", "model_output is required")
	}
	if p.Epsilon < 0 {
		return aerrors.NewValueError("Params.Validate", "epsilon must be >= 0")
	}
	for _, b := range p.Multiscale {
		if b < 2 {
			return aerrors.NewValueError("Params.Validate", "multiscale bin counts must be >= 2")
		}
	}
	if p.DynamicBuckets != nil {
		if p.DynamicBuckets.MaxTreeDepth < 1 {
			return aerrors.NewValueError("Params.Validate", "dynamic_buckets.max_tree_depth must be >= 1")
		}
		if p.DynamicBuckets.MinLeafCount < 1 {
			return aerrors.NewValueError("Params.Validate", "dynamic_buckets.min_leaf_count must be >= 1")
		}
	}
	return nil
}

// isLinearFamily reports whether a family is forced to the Linear
// representation.
func (p *Params) isLinearFamily(family string) bool {
	for _, f := range p.LinearFeature {
		if f == family {
			return true
		}
	}
	return false
}
