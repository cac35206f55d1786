package trainer

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/graftlab/survbench/internal/recipe"
)

// obliqueForest bags shallow trees whose splits project rows onto random
// linear combinations of predictors instead of single axis-aligned cuts.
type obliqueForest struct {
	trees    int
	maxDepth int
	minLeaf  int
	seed     int64
}

func newObliqueForest(opts Options) *obliqueForest {
	return &obliqueForest{
		trees:    25,
		maxDepth: 3,
		minLeaf:  5,
		seed:     opts.Seed,
	}
}

func (of *obliqueForest) Family() Family {
	return FamilyObliqueForest
}

type obliqueNode struct {
	// Leaf nodes carry only Value.
	Leaf  bool    `json:"leaf"`
	Value float64 `json:"value,omitempty"`

	Features  []int     `json:"features,omitempty"`
	Weights   []float64 `json:"weights,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`

	Left  *obliqueNode `json:"left,omitempty"`
	Right *obliqueNode `json:"right,omitempty"`
}

func (n *obliqueNode) predict(x []float64) float64 {
	if n.Leaf {
		return n.Value
	}
	if projection(x, n.Features, n.Weights) <= n.Threshold {
		return n.Left.predict(x)
	}
	return n.Right.predict(x)
}

func projection(x []float64, features []int, weights []float64) float64 {
	var p float64
	for k, f := range features {
		p += weights[k] * x[f]
	}
	return p
}

type obliqueForestModel struct {
	ModelFamily Family         `json:"family"`
	Trees       []*obliqueNode `json:"trees"`
	Features    []string       `json:"features"`
}

func (m *obliqueForestModel) Family() Family {
	return m.ModelFamily
}

func (m *obliqueForestModel) Risk(x []float64) float64 {
	var sum float64
	for _, tree := range m.Trees {
		sum += tree.predict(x)
	}
	return -sum / float64(len(m.Trees))
}

func (m *obliqueForestModel) MarshalArtifact() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func (of *obliqueForest) Fit(t *recipe.Table) (Model, error) {
	if err := checkFitTable(t); err != nil {
		return nil, err
	}

	labels := signedTimes(t)
	rng := rand.New(rand.NewSource(of.seed))
	n := t.Rows()

	model := &obliqueForestModel{
		ModelFamily: FamilyObliqueForest,
		Trees:       make([]*obliqueNode, of.trees),
		Features:    append([]string(nil), t.Names...),
	}

	for b := 0; b < of.trees; b++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		model.Trees[b] = of.grow(t, labels, sample, 0, rng)
	}

	return model, nil
}

func (of *obliqueForest) grow(t *recipe.Table, labels []float64, rows []int, depth int, rng *rand.Rand) *obliqueNode {
	if depth >= of.maxDepth || len(rows) < 2*of.minLeaf {
		return &obliqueNode{Leaf: true, Value: meanAt(labels, rows)}
	}

	// Random oblique direction over a small feature subset; threshold at
	// the median projection so both children stay populated.
	width := len(t.Names)
	k := 1
	for k*k < width {
		k++
	}
	features := rng.Perm(width)[:k]
	weights := make([]float64, k)
	for i := range weights {
		weights[i] = rng.NormFloat64()
	}

	projections := make([]float64, len(rows))
	for i, r := range rows {
		projections[i] = projection(t.X[r], features, weights)
	}
	threshold := medianOf(projections)

	var left, right []int
	for i, r := range rows {
		if projections[i] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < of.minLeaf || len(right) < of.minLeaf {
		return &obliqueNode{Leaf: true, Value: meanAt(labels, rows)}
	}

	return &obliqueNode{
		Features:  features,
		Weights:   weights,
		Threshold: threshold,
		Left:      of.grow(t, labels, left, depth+1, rng),
		Right:     of.grow(t, labels, right, depth+1, rng),
	}
}

func meanAt(labels []float64, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += labels[r]
	}
	return sum / float64(len(rows))
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func (of *obliqueForest) Predict(m Model, t *recipe.Table, horizon float64) ([]float64, error) {
	fm, ok := m.(*obliqueForestModel)
	if !ok {
		return nil, fmt.Errorf("model is %T, expected oblique forest", m)
	}
	return predictRows(fm, t, len(fm.Features))
}
