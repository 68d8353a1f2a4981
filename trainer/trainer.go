// Package trainer implements distributed backfitting/SGD training for
// additive models. Each iteration re-samples the data into independent
// bags, runs a stochastic gradient pass per bag against a private copy of
// the current model, averages and smooths the per-feature functions
// across bags, prunes near-zero functions, and checkpoints the result.
package trainer

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
	"github.com/jaydenwhyte/aerosolve/pkg/log"
)

// Trainer drives the iteration loop and owns the authoritative model
// between iterations.
type Trainer struct {
	params *Params
	rule   updateRule
	rng    *rand.Rand
	logger log.Logger

	lossHistory []float64
}

// New creates a trainer from a validated parameter set. Unknown loss
// kinds and invalid parameters are rejected here, before any data is
// touched.
func New(p *Params) (*Trainer, error) {
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rule, err := selectUpdateRule(p.Loss)
	if err != nil {
		return nil, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Trainer{
		params: p,
		rule:   rule,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0xdeadbeef)),
		logger: log.GetLoggerWithName("trainer"),
	}, nil
}

// LossHistory returns the mean training loss recorded per iteration.
func (t *Trainer) LossHistory() []float64 {
	out := make([]float64, len(t.lossHistory))
	copy(out, t.lossHistory)
	return out
}

// Train runs the full training loop and returns the final model. A
// checkpoint is written to model_output after every iteration; a failed
// bag or checkpoint write fails the whole run.
func (t *Trainer) Train(ctx context.Context, examples []*feature.Vector) (*model.AdditiveModel, error) {
	if len(examples) == 0 {
		return nil, aerrors.NewModelError("Trainer.Train", "no training examples", aerrors.ErrEmptyData)
	}

	m, err := InitializeModel(examples, t.params, t.rng)
	if err != nil {
		return nil, aerrors.Wrap(err, "model initialization failed")
	}
	t.logger.Info("model initialized", "features", m.Len(), "loss", t.params.Loss)

	for _, w := range SetPriors(m, t.params.Prior) {
		t.logger.Warn(w.Message, "source", w.Source)
	}

	for iter := 0; iter < t.params.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, meanLoss, err := t.runIteration(ctx, iter, m, examples)
		if err != nil {
			return nil, aerrors.Wrapf(err, "iteration %d", iter)
		}

		pruned := DeleteSmallFunctions(next, t.params.LInfinityThreshold)
		m = next
		t.lossHistory = append(t.lossHistory, meanLoss)

		if err := model.SaveModel(m, t.params.ModelOutput); err != nil {
			return nil, aerrors.Wrapf(err, "checkpoint at iteration %d", iter)
		}
		t.logger.Info("iteration complete",
			"iteration", iter,
			"mean_loss", meanLoss,
			"features", m.Len(),
			"pruned", pruned)
	}
	return m, nil
}

// runIteration distributes a read-only snapshot to the bag workers, runs
// them in parallel, and reduces their results through the aggregator.
// The broadcast handle is released on every path out of the iteration.
func (t *Trainer) runIteration(ctx context.Context, iter int, m *model.AdditiveModel,
	examples []*feature.Vector) (*model.AdditiveModel, float64, error) {

	bags := subsamplePartition(examples, t.params.Subsample, t.params.NumBags, t.rng)

	b := newBroadcast(m)
	defer b.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*bagResult, len(bags))
	errs := make([]error, len(bags))
	var wg sync.WaitGroup
	for i := range bags {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			res, err := runBag(ctx, index, b, bags[index], t.params, t.rule, t.logger)
			if err != nil {
				errs[index] = err
				cancel() // a failed bag fails the whole iteration
				return
			}
			results[index] = res
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, 0, err
		}
	}

	merged, err := aggregateBags(m, results, t.params)
	if err != nil {
		return nil, 0, err
	}

	var lossSum float64
	var n int
	for _, res := range results {
		lossSum += res.lossSum
		n += res.examples
	}
	meanLoss := 0.0
	if n > 0 {
		meanLoss = lossSum / float64(n)
	}
	return merged, meanLoss, nil
}
