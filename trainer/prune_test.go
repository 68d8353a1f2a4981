package trainer

import (
	"strings"
	"testing"

	"github.com/jaydenwhyte/aerosolve/core/function"
	"github.com/jaydenwhyte/aerosolve/core/model"
)

func TestDeleteSmallFunctions(t *testing.T) {
	m := model.NewAdditiveModel()

	big := function.NewLinear(0, 1)
	big.Weights = [2]float64{0.5, 0}
	m.Put("f", "big", big)

	small := function.NewLinear(0, 1)
	small.Weights = [2]float64{0.001, 0.001}
	m.Put("f", "small", small)

	removed := DeleteSmallFunctions(m, 0.01)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if m.Has("f", "small") {
		t.Error("function below threshold should be pruned")
	}
	if !m.Has("f", "big") {
		t.Error("function above threshold should survive")
	}
	// Survivor is unchanged.
	if big.Weights != [2]float64{0.5, 0} {
		t.Errorf("surviving function was modified: %v", big.Weights)
	}
}

func TestSetPriorsAppliesToExistingFunction(t *testing.T) {
	m := model.NewAdditiveModel()
	m.Put("f1", "n1", function.NewLinear(0, 1))

	warnings := SetPriors(m, []string{"f1,n1,0.5,1.5"})
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	f, _ := m.Get("f1", "n1")
	if f.(*function.Linear).Weights != [2]float64{0.5, 1.5} {
		t.Errorf("priors not applied: %v", f.(*function.Linear).Weights)
	}
}

func TestSetPriorsUnknownFeatureIsNoOp(t *testing.T) {
	m := model.NewAdditiveModel()
	m.Put("f1", "n1", function.NewLinear(0, 1))

	warnings := SetPriors(m, []string{"f9,n9,0.5,1.5"})
	if len(warnings) != 0 {
		t.Errorf("unknown features are skipped silently, got warnings %v", warnings)
	}
	f, _ := m.Get("f1", "n1")
	if f.LInfinityNorm() != 0 {
		t.Error("no function should have been touched")
	}
}

func TestSetPriorsMalformedPriorsAreSkipped(t *testing.T) {
	m := model.NewAdditiveModel()
	m.Put("f1", "n1", function.NewLinear(0, 1))

	warnings := SetPriors(m, []string{
		"f1,n1",            // too few tokens
		"f1,n1,abc,1.5",    // non-numeric
		"f1,n1,0.25,0.75",  // valid
		"f1,n1,1,2,3,4,5",  // too many tokens
	})
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
	f, _ := m.Get("f1", "n1")
	if f.(*function.Linear).Weights != [2]float64{0.25, 0.75} {
		t.Errorf("valid prior between malformed ones not applied: %v", f.(*function.Linear).Weights)
	}
}

func TestSetPriorsEmptyListWarns(t *testing.T) {
	m := model.NewAdditiveModel()
	warnings := SetPriors(m, nil)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "no prior") {
		t.Errorf("expected a single 'no prior given' warning, got %v", warnings)
	}
}
