// Package model defines the additive model: a mapping from feature
// identity (family, name) to a per-feature scalar function, where the
// model's prediction is the sum of all function outputs. It also provides
// gob-based snapshot persistence used for per-iteration checkpoints.
package model

import (
	"sort"

	"github.com/jaydenwhyte/aerosolve/core/feature"
	"github.com/jaydenwhyte/aerosolve/core/function"
)

// DenseFamily is the reserved family under which dense vector features
// are keyed. Dense features carry only a name in observations; the model
// addresses their functions as (DenseFamily, name).
const DenseFamily = "$dense"

// AdditiveModel maps family -> feature name -> Function. Family maps are
// never nil once a family has at least one feature, and every present key
// has exactly one function.
type AdditiveModel struct {
	Families map[string]map[string]function.Function
}

// NewAdditiveModel creates an empty model.
func NewAdditiveModel() *AdditiveModel {
	return &AdditiveModel{Families: make(map[string]map[string]function.Function)}
}

// Get returns the function for (family, name).
func (m *AdditiveModel) Get(family, name string) (function.Function, bool) {
	fam, ok := m.Families[family]
	if !ok {
		return nil, false
	}
	f, ok := fam[name]
	return f, ok
}

// Has reports whether (family, name) is present.
func (m *AdditiveModel) Has(family, name string) bool {
	_, ok := m.Get(family, name)
	return ok
}

// Put installs a function for (family, name), replacing any previous one.
func (m *AdditiveModel) Put(family, name string, f function.Function) {
	fam, ok := m.Families[family]
	if !ok {
		fam = make(map[string]function.Function)
		m.Families[family] = fam
	}
	fam[name] = f
}

// Delete removes (family, name). Emptied family maps are dropped so no
// family key ever maps to an empty map.
func (m *AdditiveModel) Delete(family, name string) {
	fam, ok := m.Families[family]
	if !ok {
		return
	}
	delete(fam, name)
	if len(fam) == 0 {
		delete(m.Families, family)
	}
}

// Len returns the total number of (family, name) keys.
func (m *AdditiveModel) Len() int {
	n := 0
	for _, fam := range m.Families {
		n += len(fam)
	}
	return n
}

// ForEach visits every (family, name, function) in sorted key order so
// iteration is deterministic across runs.
func (m *AdditiveModel) ForEach(visit func(family, name string, f function.Function)) {
	families := make([]string, 0, len(m.Families))
	for fam := range m.Families {
		families = append(families, fam)
	}
	sort.Strings(families)
	for _, fam := range families {
		names := make([]string, 0, len(m.Families[fam]))
		for name := range m.Families[fam] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			visit(fam, name, m.Families[fam][name])
		}
	}
}

// Clone returns a deep copy; every function is cloned so the copy can be
// mutated independently of the original.
func (m *AdditiveModel) Clone() *AdditiveModel {
	c := NewAdditiveModel()
	for fam, features := range m.Families {
		cf := make(map[string]function.Function, len(features))
		for name, f := range features {
			cf[name] = f.Clone()
		}
		c.Families[fam] = cf
	}
	return c
}

// Predict sums the contributions of every observed feature that has a
// function in the model. Features without a function (including the
// rank-key label family, which is never initialized) contribute nothing.
func (m *AdditiveModel) Predict(v *feature.Vector) float64 {
	var sum float64
	for fam, values := range v.Flat {
		funcs, ok := m.Families[fam]
		if !ok {
			continue
		}
		for name, x := range values {
			if f, ok := funcs[name]; ok {
				sum += f.Evaluate(x)
			}
		}
	}
	if len(v.Dense) > 0 {
		if funcs, ok := m.Families[DenseFamily]; ok {
			for name, vec := range v.Dense {
				if f, ok := funcs[name]; ok {
					sum += f.EvaluateVector(vec)
				}
			}
		}
	}
	return sum
}
