// Package feature defines the observation types consumed by training.
// Each observation carries flat (family, name) -> value features, optional
// dense vector features for multi-dimension splines, and a label stored
// under a configured rank-key family.
package feature

import (
	"sort"

	aerrors "github.com/jaydenwhyte/aerosolve/pkg/errors"
)

// Vector is one observation.
type Vector struct {
	// Flat maps family -> feature name -> scalar value.
	Flat map[string]map[string]float64 `json:"flat"`
	// Dense maps feature name -> dense vector, scored by
	// multi-dimension spline functions.
	Dense map[string][]float64 `json:"dense,omitempty"`
}

// Label extracts the raw label from the rank-key family. When the family
// holds several entries the value of the first name in sorted order is
// used so extraction is deterministic.
func (v *Vector) Label(rankKey string) (float64, error) {
	fam, ok := v.Flat[rankKey]
	if !ok || len(fam) == 0 {
		return 0, aerrors.NewValueError("Vector.Label", "rank key family not present: "+rankKey)
	}
	names := make([]string, 0, len(fam))
	for name := range fam {
		names = append(names, name)
	}
	sort.Strings(names)
	return fam[names[0]], nil
}

// BinaryLabel thresholds the raw label into +1 / -1 for classification
// losses.
func (v *Vector) BinaryLabel(rankKey string, threshold float64) (float64, error) {
	raw, err := v.Label(rankKey)
	if err != nil {
		return 0, err
	}
	if raw > threshold {
		return 1, nil
	}
	return -1, nil
}
