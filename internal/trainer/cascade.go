package trainer

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllStrategiesFailed marks a fit whose every cascade strategy failed.
var ErrAllStrategiesFailed = errors.New("all fit strategies failed")

// Strategy is one entry of a fallback cascade: a named fit attempt.
type Strategy struct {
	Name string
	Fit  func() (Model, error)
}

// CascadeResult records which strategy produced the model, so the executor
// can log and persist the fallback index alongside the outcome.
type CascadeResult struct {
	Model         Model
	StrategyIndex int
	StrategyName  string
}

// RunCascade tries each strategy in order and stops at the first success.
// Failures short of the last strategy are logged at warn level; the final
// error wraps ErrAllStrategiesFailed together with every attempt's error.
func RunCascade(strategies []Strategy, log *slog.Logger) (*CascadeResult, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: empty cascade", ErrAllStrategiesFailed)
	}

	var attempts []error
	for i, s := range strategies {
		model, err := s.Fit()
		if err == nil {
			if i > 0 {
				log.Warn("fit succeeded on fallback strategy",
					"strategy", s.Name,
					"index", i,
				)
			} else {
				log.Debug("fit succeeded on primary strategy", "strategy", s.Name)
			}
			return &CascadeResult{Model: model, StrategyIndex: i, StrategyName: s.Name}, nil
		}

		log.Warn("fit strategy failed",
			"strategy", s.Name,
			"index", i,
			"error", err,
		)
		attempts = append(attempts, fmt.Errorf("%s: %w", s.Name, err))
	}

	return nil, fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(attempts...))
}
