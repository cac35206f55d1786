// Package trainer defines the uniform fit/predict contract each model
// family implements, hiding every family's internal algorithm from the
// scheduler, plus the ordered fallback cascade the executor drives.
package trainer

import (
	"fmt"
	"math"

	"github.com/graftlab/survbench/internal/recipe"
)

// Family identifies one model family.
type Family string

const (
	FamilyObliqueForest   Family = "oblique_forest"
	FamilyBoostedTrees    Family = "boosted_trees"
	FamilyBoostedTreesAlt Family = "boosted_trees_alt"
	FamilyLinearHazard    Family = "linear_hazard"
)

// IsValid checks if the family is known.
func (f Family) IsValid() bool {
	switch f {
	case FamilyObliqueForest, FamilyBoostedTrees, FamilyBoostedTreesAlt, FamilyLinearHazard:
		return true
	}
	return false
}

// String returns string representation.
func (f Family) String() string {
	return string(f)
}

// ParseFamilies converts configured family names, rejecting unknown ones.
func ParseFamilies(names []string) ([]Family, error) {
	out := make([]Family, 0, len(names))
	for _, name := range names {
		f := Family(name)
		if !f.IsValid() {
			return nil, fmt.Errorf("unknown model family: %s", name)
		}
		out = append(out, f)
	}
	return out, nil
}

// Model is a fitted artifact. Risk scores are relative: higher means the
// model expects the event sooner.
type Model interface {
	Family() Family

	// Risk scores one baked feature row.
	Risk(x []float64) float64

	// MarshalArtifact serializes the model for persistence.
	MarshalArtifact() ([]byte, error)
}

// Trainer is the per-family adapter the executor depends on.
type Trainer interface {
	Family() Family
	Fit(t *recipe.Table) (Model, error)
	Predict(m Model, t *recipe.Table, horizon float64) ([]float64, error)
}

// Options tune training without exposing family internals.
type Options struct {
	Seed int64
}

// New creates the trainer for a family.
func New(family Family, opts Options) (Trainer, error) {
	switch family {
	case FamilyObliqueForest:
		return newObliqueForest(opts), nil
	case FamilyBoostedTrees:
		return newBoostedTrees(opts, squaredLoss), nil
	case FamilyBoostedTreesAlt:
		return newBoostedTrees(opts, absoluteLoss), nil
	case FamilyLinearHazard:
		return newLinearHazard(), nil
	default:
		return nil, fmt.Errorf("unknown model family: %s", family)
	}
}

// signedTimes builds the training label: positive event times, negated
// censoring times, with non-positive times clamped to a small epsilon.
func signedTimes(t *recipe.Table) []float64 {
	labels := make([]float64, len(t.Time))
	for i, tm := range t.Time {
		if tm <= 0 {
			tm = math.SmallestNonzeroFloat64
		}
		if t.Status[i] == 1 {
			labels[i] = tm
		} else {
			labels[i] = -tm
		}
	}
	return labels
}

func checkFitTable(t *recipe.Table) error {
	if t.Rows() < 2 {
		return fmt.Errorf("need at least 2 training rows, got %d", t.Rows())
	}
	if len(t.Names) == 0 {
		return fmt.Errorf("no predictor columns")
	}
	return nil
}

// predictRows scores every row and enforces the length contract shared by
// all families.
func predictRows(m Model, t *recipe.Table, width int) ([]float64, error) {
	if t.Rows() == 0 {
		return nil, fmt.Errorf("empty prediction table")
	}

	risk := make([]float64, t.Rows())
	for i, row := range t.X {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(row), width)
		}
		risk[i] = m.Risk(row)
	}
	return risk, nil
}
