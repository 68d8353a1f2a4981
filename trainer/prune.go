package trainer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// DeleteSmallFunctions removes every feature whose function's L-infinity
// norm falls below threshold and returns the number removed. Runs once
// per iteration after aggregation.
func DeleteSmallFunctions(m *model.AdditiveModel, threshold float64) int {
	var doomed []Key
	m.ForEach(func(family, name string, f function.Function) {
		if f.LInfinityNorm() < threshold {
			doomed = append(doomed, Key{Family: family, Name: name})
		}
	})
	for _, k := range doomed {
		m.Delete(k.Family, k.Name)
	}
	return len(doomed)
}

// SetPriors seeds existing functions from prior strings of the form
// "family,name,p0,p1". The pass is best effort: malformed priors are
// reported as warnings and skipped, priors for unknown features are
// silently ignored, and any panic aborts the remainder of the pass
// without failing training. The returned warnings let the caller log
// what was not applied.
func SetPriors(m *model.AdditiveModel, priors []string) (warnings []*aerrors.Warning) {
	defer func() {
		if r := recover(); r != nil {
			warnings = append(warnings, aerrors.NewWarning("SetPriors",
				fmt.Sprintf("prior pass aborted: %v", r)))
		}
	}()
	if len(priors) == 0 {
		warnings = append(warnings, aerrors.NewWarning("SetPriors", "no prior given"))
		return warnings
	}
	for _, prior := range priors {
		tokens := strings.Split(prior, ",")
		if len(tokens) != 4 {
			warnings = append(warnings, aerrors.NewWarning("SetPriors",
				fmt.Sprintf("malformed prior %q: expected 4 tokens, got %d", prior, len(tokens))))
			continue
		}
		p0, err0 := strconv.ParseFloat(strings.TrimSpace(tokens[2]), 64)
		p1, err1 := strconv.ParseFloat(strings.TrimSpace(tokens[3]), 64)
		if err0 != nil || err1 != nil {
			warnings = append(warnings, aerrors.NewWarning("SetPriors",
				fmt.Sprintf("malformed prior %q: non-numeric parameters", prior)))
			continue
		}
		f, ok := m.Get(strings.TrimSpace(tokens[0]), strings.TrimSpace(tokens[1]))
		if !ok {
			continue // priors for absent features are a no-op
		}
		f.SetPriors([]float64{p0, p1})
	}
	return warnings
}
