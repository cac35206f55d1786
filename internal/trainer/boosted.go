package trainer

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"

	"github.com/graftlab/survbench/internal/recipe"
)

type lossKind string

const (
	squaredLoss  lossKind = "squared"
	absoluteLoss lossKind = "absolute"
)

// boostedTrees is gradient boosting over depth-1 stumps on the signed-time
// label. The primary family uses squared loss; the alt family boosts on
// absolute deviations, which tolerates the heavy-tailed follow-up times
// the squared-loss variant can chase.
type boostedTrees struct {
	family       Family
	loss         lossKind
	rounds       int
	learningRate float64
	candidates   int
	seed         int64
}

func newBoostedTrees(opts Options, loss lossKind) *boostedTrees {
	bt := &boostedTrees{
		loss:         loss,
		rounds:       50,
		learningRate: 0.1,
		candidates:   16,
		seed:         opts.Seed,
	}
	if loss == absoluteLoss {
		bt.family = FamilyBoostedTreesAlt
		bt.rounds = 40
	} else {
		bt.family = FamilyBoostedTrees
	}
	return bt
}

func (bt *boostedTrees) Family() Family {
	return bt.family
}

type stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
}

type boostedModel struct {
	ModelFamily  Family   `json:"family"`
	Base         float64  `json:"base"`
	LearningRate float64  `json:"learning_rate"`
	Stumps       []stump  `json:"stumps"`
	Features     []string `json:"features"`
}

func (m *boostedModel) Family() Family {
	return m.ModelFamily
}

func (m *boostedModel) Risk(x []float64) float64 {
	pred := m.Base
	for _, s := range m.Stumps {
		if x[s.Feature] <= s.Threshold {
			pred += m.LearningRate * s.Left
		} else {
			pred += m.LearningRate * s.Right
		}
	}
	return -pred
}

func (m *boostedModel) MarshalArtifact() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func (bt *boostedTrees) Fit(t *recipe.Table) (Model, error) {
	if err := checkFitTable(t); err != nil {
		return nil, err
	}

	labels := signedTimes(t)
	rng := rand.New(rand.NewSource(bt.seed))
	n := len(labels)

	base := centerOf(labels, bt.loss)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}

	model := &boostedModel{
		ModelFamily:  bt.family,
		Base:         base,
		LearningRate: bt.learningRate,
		Features:     append([]string(nil), t.Names...),
	}

	grad := make([]float64, n)
	for round := 0; round < bt.rounds; round++ {
		for i := range grad {
			r := labels[i] - pred[i]
			if bt.loss == absoluteLoss {
				grad[i] = sign(r)
			} else {
				grad[i] = r
			}
		}

		s, ok := bt.bestStump(t, grad, rng)
		if !ok {
			break
		}
		model.Stumps = append(model.Stumps, s)

		for i, row := range t.X {
			if row[s.Feature] <= s.Threshold {
				pred[i] += bt.learningRate * s.Left
			} else {
				pred[i] += bt.learningRate * s.Right
			}
		}
	}

	if len(model.Stumps) == 0 {
		return nil, fmt.Errorf("no informative split found in %d rows", n)
	}

	return model, nil
}

// bestStump evaluates a random candidate set of (feature, threshold)
// pairs and keeps the one with the lowest residual sum of squares.
func (bt *boostedTrees) bestStump(t *recipe.Table, grad []float64, rng *rand.Rand) (stump, bool) {
	n := len(grad)
	best := stump{}
	bestScore := 0.0
	found := false

	for c := 0; c < bt.candidates; c++ {
		feature := rng.Intn(len(t.Names))
		threshold := t.X[rng.Intn(n)][feature]

		var sumL, sumR float64
		var nL, nR int
		for i, row := range t.X {
			if row[feature] <= threshold {
				sumL += grad[i]
				nL++
			} else {
				sumR += grad[i]
				nR++
			}
		}
		if nL == 0 || nR == 0 {
			continue
		}

		meanL := sumL / float64(nL)
		meanR := sumR / float64(nR)
		score := sumL*meanL + sumR*meanR
		if !found || score > bestScore {
			best = stump{Feature: feature, Threshold: threshold, Left: meanL, Right: meanR}
			bestScore = score
			found = true
		}
	}

	return best, found
}

func centerOf(values []float64, loss lossKind) float64 {
	if loss == absoluteLoss {
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (bt *boostedTrees) Predict(m Model, t *recipe.Table, horizon float64) ([]float64, error) {
	bm, ok := m.(*boostedModel)
	if !ok {
		return nil, fmt.Errorf("model is %T, expected boosted trees", m)
	}
	return predictRows(bm, t, len(bm.Features))
}
