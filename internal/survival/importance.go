package survival

import (
	"fmt"
	"math/rand"

	"github.com/graftlab/survbench/internal/recipe"
)

// FeatureImportance is the concordance drop observed after independently
// permuting one predictor on the test table.
type FeatureImportance struct {
	Feature    string
	Importance float64
}

// PredictFunc scores a baked table; trainers are adapted to this shape so
// the importance loop stays independent of any concrete model family.
type PredictFunc func(*recipe.Table) ([]float64, error)

// PermutationImportance reports baseline minus permuted concordance for up
// to maxFeatures predictors. The permutation is seeded so repeated runs of
// the same task produce the same importances.
func PermutationImportance(predict PredictFunc, table *recipe.Table, maxFeatures int, seed int64) ([]FeatureImportance, error) {
	baseRisk, err := predict(table)
	if err != nil {
		return nil, fmt.Errorf("baseline prediction failed: %w", err)
	}
	baseline := HarrellC(table.Time, table.Status, baseRisk)

	count := len(table.Names)
	if maxFeatures > 0 && maxFeatures < count {
		count = maxFeatures
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]FeatureImportance, 0, count)

	for j := 0; j < count; j++ {
		permuted := table.Clone()
		permuteColumn(permuted, j, rng)

		risk, err := predict(permuted)
		if err != nil {
			return nil, fmt.Errorf("permuted prediction for %s failed: %w", table.Names[j], err)
		}

		out = append(out, FeatureImportance{
			Feature:    table.Names[j],
			Importance: baseline - HarrellC(permuted.Time, permuted.Status, risk),
		})
	}

	return out, nil
}

func permuteColumn(t *recipe.Table, col int, rng *rand.Rand) {
	n := t.Rows()
	perm := rng.Perm(n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = t.X[perm[i]][col]
	}
	for i := 0; i < n; i++ {
		t.X[i][col] = values[i]
	}
}
