package trainer

import (
	"encoding/json"
	"fmt"

	"github.com/graftlab/survbench/internal/recipe"
)

// linearHazard fits one univariate slope per predictor against the signed
// event time and scores risk as the negated linear combination: a short
// predicted time means a high risk.
type linearHazard struct{}

func newLinearHazard() *linearHazard {
	return &linearHazard{}
}

func (lh *linearHazard) Family() Family {
	return FamilyLinearHazard
}

type linearHazardModel struct {
	ModelFamily Family    `json:"family"`
	Betas       []float64 `json:"betas"`
	Intercept   float64   `json:"intercept"`
	Features    []string  `json:"features"`
}

func (m *linearHazardModel) Family() Family {
	return m.ModelFamily
}

func (m *linearHazardModel) Risk(x []float64) float64 {
	pred := m.Intercept
	for j, b := range m.Betas {
		pred += b * x[j]
	}
	return -pred
}

func (m *linearHazardModel) MarshalArtifact() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func (lh *linearHazard) Fit(t *recipe.Table) (Model, error) {
	if err := checkFitTable(t); err != nil {
		return nil, err
	}

	labels := signedTimes(t)
	n := float64(t.Rows())

	var meanY float64
	for _, y := range labels {
		meanY += y
	}
	meanY /= n

	betas := make([]float64, len(t.Names))
	for j := range t.Names {
		var meanX float64
		for _, row := range t.X {
			meanX += row[j]
		}
		meanX /= n

		var cov, varX float64
		for i, row := range t.X {
			dx := row[j] - meanX
			cov += dx * (labels[i] - meanY)
			varX += dx * dx
		}
		if varX > 0 {
			betas[j] = cov / varX
		}
	}

	return &linearHazardModel{
		ModelFamily: FamilyLinearHazard,
		Betas:       betas,
		Intercept:   meanY,
		Features:    append([]string(nil), t.Names...),
	}, nil
}

func (lh *linearHazard) Predict(m Model, t *recipe.Table, horizon float64) ([]float64, error) {
	lm, ok := m.(*linearHazardModel)
	if !ok {
		return nil, fmt.Errorf("model is %T, expected linear hazard", m)
	}
	return predictRows(lm, t, len(lm.Betas))
}
