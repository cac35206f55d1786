package trainer

import (
	"math/rand"
	"testing"

	"github.com/graftlab/survbench/internal/recipe"
	"github.com/graftlab/survbench/internal/survival"
)

// syntheticTable builds a table whose first predictor drives the event
// time: larger x0 means longer survival.
func syntheticTable(n int, seed int64) *recipe.Table {
	rng := rand.New(rand.NewSource(seed))
	t := &recipe.Table{
		Names:  []string{"x0", "x1"},
		X:      make([][]float64, n),
		Time:   make([]float64, n),
		Status: make([]int, n),
	}
	for i := 0; i < n; i++ {
		x0 := rng.NormFloat64()
		x1 := rng.NormFloat64()
		t.X[i] = []float64{x0, x1}
		t.Time[i] = 100 + 50*x0 + 5*rng.NormFloat64()
		if t.Time[i] < 1 {
			t.Time[i] = 1
		}
		t.Status[i] = 1
		if rng.Float64() < 0.2 {
			t.Status[i] = 0
		}
	}
	return t
}

func TestFamilies_FitPredictDiscriminate(t *testing.T) {
	table := syntheticTable(200, 11)

	for _, family := range []Family{
		FamilyObliqueForest,
		FamilyBoostedTrees,
		FamilyBoostedTreesAlt,
		FamilyLinearHazard,
	} {
		tr, err := New(family, Options{Seed: 7})
		if err != nil {
			t.Fatalf("%s: New failed: %v", family, err)
		}
		if tr.Family() != family {
			t.Errorf("%s: trainer reports family %s", family, tr.Family())
		}

		model, err := tr.Fit(table)
		if err != nil {
			t.Fatalf("%s: Fit failed: %v", family, err)
		}

		risk, err := tr.Predict(model, table, 365)
		if err != nil {
			t.Fatalf("%s: Predict failed: %v", family, err)
		}
		if len(risk) != table.Rows() {
			t.Fatalf("%s: expected %d scores, got %d", family, table.Rows(), len(risk))
		}

		// Every family should beat chance comfortably on this easy signal.
		c := survival.HarrellC(table.Time, table.Status, risk)
		if c < 0.7 {
			t.Errorf("%s: concordance %g below 0.7 on synthetic data", family, c)
		}

		artifact, err := model.MarshalArtifact()
		if err != nil {
			t.Errorf("%s: MarshalArtifact failed: %v", family, err)
		}
		if len(artifact) == 0 {
			t.Errorf("%s: empty artifact", family)
		}
	}
}

func TestFit_Deterministic(t *testing.T) {
	table := syntheticTable(100, 3)

	for _, family := range []Family{FamilyObliqueForest, FamilyBoostedTrees} {
		trA, _ := New(family, Options{Seed: 9})
		trB, _ := New(family, Options{Seed: 9})

		mA, err := trA.Fit(table)
		if err != nil {
			t.Fatalf("%s: Fit failed: %v", family, err)
		}
		mB, err := trB.Fit(table)
		if err != nil {
			t.Fatalf("%s: Fit failed: %v", family, err)
		}

		riskA, _ := trA.Predict(mA, table, 365)
		riskB, _ := trB.Predict(mB, table, 365)
		for i := range riskA {
			if riskA[i] != riskB[i] {
				t.Fatalf("%s: same seed produced different predictions at row %d", family, i)
			}
		}
	}
}

func TestFit_DegenerateTable(t *testing.T) {
	table := &recipe.Table{
		Names:  []string{"x0"},
		X:      [][]float64{{1}},
		Time:   []float64{10},
		Status: []int{1},
	}

	for _, family := range []Family{FamilyObliqueForest, FamilyBoostedTrees, FamilyLinearHazard} {
		tr, _ := New(family, Options{})
		if _, err := tr.Fit(table); err == nil {
			t.Errorf("%s: expected error fitting a single row", family)
		}
	}
}

func TestPredict_WidthMismatch(t *testing.T) {
	table := syntheticTable(50, 5)
	tr, _ := New(FamilyLinearHazard, Options{})
	model, err := tr.Fit(table)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	narrow := &recipe.Table{
		Names:  []string{"x0"},
		X:      [][]float64{{1.0}},
		Time:   []float64{10},
		Status: []int{1},
	}
	if _, err := tr.Predict(model, narrow, 365); err == nil {
		t.Error("expected error for feature width mismatch")
	}
}

func TestParseFamilies(t *testing.T) {
	fams, err := ParseFamilies([]string{"linear_hazard", "boosted_trees"})
	if err != nil {
		t.Fatalf("ParseFamilies failed: %v", err)
	}
	if len(fams) != 2 || fams[0] != FamilyLinearHazard {
		t.Errorf("unexpected families: %v", fams)
	}

	if _, err := ParseFamilies([]string{"deep_net"}); err == nil {
		t.Error("expected error for unknown family")
	}
}
