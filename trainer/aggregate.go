package trainer

import (
	"runtime"
	"sync"

	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Key identifies one feature in the model.
type Key struct {
	Family string
	Name   string
}

// aggregateBags merges the per-feature functions reported by every bag
// into one averaged, smoothed function per key and installs it into a
// copy of the baseline model. The model's key set is fixed at
// initialization: keys reported by a bag but absent from the baseline are
// silently dropped. Runs as a keyed parallel reduce; any shape mismatch
// between bags is fatal.
func aggregateBags(base *model.AdditiveModel, bags []*bagResult, p *Params) (*model.AdditiveModel, error) {
	grouped := make(map[Key][]function.Function)
	order := make([]Key, 0)
	for _, bag := range bags {
		bag.funcs.ForEach(func(family, name string, f function.Function) {
			k := Key{Family: family, Name: name}
			if !base.Has(family, name) {
				return
			}
			if _, seen := grouped[k]; !seen {
				order = append(order, k)
			}
			grouped[k] = append(grouped[k], f)
		})
	}

	merged := base.Clone()
	scale := 1.0 / float64(len(bags))

	workers := runtime.NumCPU()
	if workers > len(order) {
		workers = len(order)
	}
	if workers < 1 {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	keys := make(chan Key, len(order))
	for _, k := range order {
		keys <- k
	}
	close(keys)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range keys {
				funcs := grouped[k]
				agg, err := funcs[0].Aggregate(funcs, scale, p.NumBins)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = aerrors.Wrapf(err, "aggregate %s:%s", k.Family, k.Name)
					}
					mu.Unlock()
					continue
				}
				agg.Smooth(p.SmoothingTolerance)
				mu.Lock()
				merged.Put(k.Family, k.Name, agg)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}
