package trainer

import (
	"context"
	"math/rand/v2"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
	"github.com/jaydenwhyte/aerosolve/pkg/log"
)

// broadcast is the read-only handle around the model snapshot shared with
// all bag workers for the duration of one iteration. Workers never mutate
// the snapshot: each takes a deep clone before applying multiscale
// resampling or SGD updates, so concurrent bags cannot race on shared
// function state. Release drops the reference at the iteration boundary.
type broadcast struct {
	snapshot *model.AdditiveModel
}

func newBroadcast(m *model.AdditiveModel) *broadcast {
	return &broadcast{snapshot: m}
}

// Acquire returns a worker-private deep copy of the snapshot.
func (b *broadcast) Acquire() *model.AdditiveModel {
	return b.snapshot.Clone()
}

// Release detaches the snapshot so a stale handle cannot outlive its
// iteration.
func (b *broadcast) Release() {
	b.snapshot = nil
}

// bagResult is one bag's contribution to aggregation: its full
// per-feature function map plus its loss accounting.
type bagResult struct {
	index    int
	funcs    *model.AdditiveModel
	lossSum  float64
	examples int
}

// runBag processes one data partition: it takes a private copy of the
// broadcast snapshot, optionally resamples spline resolution according to
// the multiscale schedule, then streams the partition sequentially
// through the configured gradient rule. Mean loss is logged every
// loss_mod examples and the accumulator reset.
func runBag(ctx context.Context, index int, b *broadcast, part []*feature.Vector,
	p *Params, rule updateRule, logger log.Logger) (*bagResult, error) {

	local := b.Acquire()

	if len(p.Multiscale) > 0 {
		newBins := p.Multiscale[index%len(p.Multiscale)]
		local.ForEach(func(family, name string, f function.Function) {
			f.Resample(newBins)
		})
		logger.Debug("multiscale resample", "bag", index, "bins", newBins)
	}

	rng := rand.New(rand.NewPCG(uint64(p.Seed)+uint64(index), uint64(p.Seed)^0x9e3779b97f4a7c15))

	res := &bagResult{index: index, funcs: local}
	var windowLoss float64
	var windowCount int
	for i, ex := range part {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		loss, err := rule(local, ex, p, rng)
		if err != nil {
			return nil, aerrors.Wrapf(err, "bag %d example %d", index, i)
		}
		res.lossSum += loss
		res.examples++
		windowLoss += loss
		windowCount++
		if windowCount == p.LossMod {
			logger.Info("mean loss", "bag", index, "examples", i+1,
				"loss", windowLoss/float64(windowCount))
			windowLoss = 0
			windowCount = 0
		}
	}
	return res, nil
}

// subsamplePartition draws this iteration's working set at the subsample
// rate and splits it round-robin into numBags partitions. Re-sampling
// every iteration keeps bags from seeing a fixed slice of the data.
func subsamplePartition(examples []*feature.Vector, subsample float64, numBags int,
	rng *rand.Rand) [][]*feature.Vector {

	bags := make([][]*feature.Vector, numBags)
	next := 0
	for _, ex := range examples {
		if subsample < 1 && rng.Float64() >= subsample {
			continue
		}
		bags[next] = append(bags[next], ex)
		next = (next + 1) % numBags
	}
	return bags
}
