package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/graftlab/survbench/internal/artifacts"
	"github.com/graftlab/survbench/internal/config"
	"github.com/graftlab/survbench/internal/dataset"
	"github.com/graftlab/survbench/internal/logger"
	"github.com/graftlab/survbench/internal/recipe"
	"github.com/graftlab/survbench/internal/survival"
	"github.com/graftlab/survbench/internal/trainer"
)

// Executor runs one task end to end: encode, fit through the fallback
// cascade, score, and persist. It touches only per-task copies of the
// data, so a task abandoned at its deadline can finish (or fail) in the
// background without disturbing any other task.
type Executor struct {
	frame  *dataset.Frame
	global *recipe.Recipe
	store  *artifacts.Store
	cfg    *config.Config
	logger *slog.Logger
}

func NewExecutor(frame *dataset.Frame, global *recipe.Recipe, store *artifacts.Store, cfg *config.Config, log *slog.Logger) *Executor {
	return &Executor{frame: frame, global: global, store: store, cfg: cfg, logger: log}
}

// Execute runs one task to its terminal outcome. It never panics outward
// and never returns a nil outcome.
func (e *Executor) Execute(task Task, split dataset.Split) *Outcome {
	start := time.Now()
	out := &Outcome{Task: task}

	taskLog, closer, err := logger.FileSink(e.store.TaskLogPath(task.Family.String(), task.SplitID), e.cfg.Logging.Level)
	if err != nil {
		// A broken sink costs the per-task log, not the task.
		e.logger.Warn("task log sink unavailable", "task", task.String(), "error", err)
		taskLog = e.logger
	} else {
		defer closer.Close()
	}
	taskLog = taskLog.With("task", task.String())

	taskLog.Info("task started",
		"train_rows", len(split.Train),
		"test_rows", len(split.Test),
	)

	train := e.frame.Subset(split.Train)
	test := e.frame.Subset(split.Test)

	if err := checkSplitData(train, test); err != nil {
		return e.fail(out, start, taskLog, fmt.Errorf("%w: %v", ErrRecipe, err))
	}

	tr, err := trainer.New(task.Family, trainer.Options{
		Seed: e.cfg.Splits.Seed + int64(task.SplitID),
	})
	if err != nil {
		return e.fail(out, start, taskLog, fmt.Errorf("%w: %v", ErrFit, err))
	}

	// The cascade strategy that wins also determines which encoding the
	// test rows are baked with.
	var testTable *recipe.Table
	res, err := trainer.RunCascade(e.strategies(tr, train, test, &testTable), taskLog)
	if err != nil {
		return e.fail(out, start, taskLog, fmt.Errorf("%w: %v", ErrFit, err))
	}
	out.FallbackIndex = res.StrategyIndex

	risk, err := e.predict(tr, res.Model, testTable, taskLog)
	if err != nil {
		return e.fail(out, start, taskLog, err)
	}

	out.Harrell = survival.HarrellC(testTable.Time, testTable.Status, risk)
	out.Horizon = survival.HorizonC(testTable.Time, testTable.Status, risk, e.cfg.Scoring.Horizon)

	if e.cfg.Importance.Enabled {
		predict := func(t *recipe.Table) ([]float64, error) {
			return tr.Predict(res.Model, t, e.cfg.Scoring.Horizon)
		}
		imp, err := survival.PermutationImportance(predict, testTable, e.cfg.Importance.MaxFeatures, e.cfg.Importance.Seed+int64(task.SplitID))
		if err != nil {
			taskLog.Warn("permutation importance failed", "error", err)
		} else {
			out.Importance = imp
		}
	}

	e.persist(out, res.Model, taskLog)

	out.Status = StatusSuccess
	out.Duration = time.Since(start)
	taskLog.Info("task finished",
		"harrell", out.Harrell,
		"horizon", out.Horizon,
		"fallback_index", out.FallbackIndex,
		"duration", out.Duration,
	)
	return out
}

// checkSplitData rejects split data no encoding could work with. This is
// the preprocessing failure class; anything past it that still cannot
// produce a model counts as a fit failure.
func checkSplitData(train, test *dataset.Frame) error {
	if train.Rows() < 2 {
		return fmt.Errorf("cannot fit on %d training rows", train.Rows())
	}
	if test.Rows() == 0 {
		return fmt.Errorf("empty test partition")
	}
	if len(train.Columns) == 0 {
		return fmt.Errorf("no predictor columns")
	}
	return nil
}

// strategies builds the fallback cascade: the split's own training
// encoding first, then the precomputed whole-dataset encoding, then
// numeric-only coercion. Each strategy bakes the test table with its own
// recipe so scores always match the encoding the model was fit on.
func (e *Executor) strategies(tr trainer.Trainer, train, test *dataset.Frame, testTable **recipe.Table) []trainer.Strategy {
	fitWith := func(r *recipe.Recipe) (trainer.Model, error) {
		trainTable, err := r.Bake(train)
		if err != nil {
			return nil, fmt.Errorf("bake train: %w", err)
		}
		baked, err := r.Bake(test)
		if err != nil {
			return nil, fmt.Errorf("bake test: %w", err)
		}
		model, err := tr.Fit(trainTable)
		if err != nil {
			return nil, err
		}
		*testTable = baked
		return model, nil
	}

	return []trainer.Strategy{
		{
			Name: "train_encoding",
			Fit: func() (trainer.Model, error) {
				r, err := recipe.Fit(train, recipe.Options{})
				if err != nil {
					return nil, err
				}
				return fitWith(r)
			},
		},
		{
			Name: "global_encoding",
			Fit: func() (trainer.Model, error) {
				if e.global == nil {
					return nil, fmt.Errorf("no precomputed global encoding")
				}
				return fitWith(e.global)
			},
		},
		{
			Name: "numeric_coercion",
			Fit: func() (trainer.Model, error) {
				r, err := recipe.Fit(train, recipe.Options{NumericOnly: true})
				if err != nil {
					return nil, err
				}
				return fitWith(r)
			},
		},
	}
}

// predict scores the test table and repairs the one recoverable shape
// defect: a single scalar returned for many rows is broadcast with a
// warning. Any other length mismatch fails the task.
func (e *Executor) predict(tr trainer.Trainer, model trainer.Model, testTable *recipe.Table, taskLog *slog.Logger) ([]float64, error) {
	risk, err := tr.Predict(model, testTable, e.cfg.Scoring.Horizon)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictShape, err)
	}

	n := testTable.Rows()
	switch {
	case len(risk) == n:
		return risk, nil
	case len(risk) == 1 && n > 1:
		taskLog.Warn("broadcasting scalar prediction", "rows", n)
		out := make([]float64, n)
		for i := range out {
			out[i] = risk[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %d scores for %d rows", ErrPredictShape, len(risk), n)
	}
}

// persist saves the model artifact. Failures are recorded and logged but
// never fail the task: the scores already exist.
func (e *Executor) persist(out *Outcome, model trainer.Model, taskLog *slog.Logger) {
	artifact, err := model.MarshalArtifact()
	if err != nil {
		taskLog.Error("artifact marshal failed", "error", fmt.Errorf("%w: %v", ErrPersist, err))
		return
	}

	path, err := e.store.SaveModel(out.Task.Family.String(), out.Task.SplitID, artifact)
	if err != nil {
		taskLog.Error("artifact save failed", "error", fmt.Errorf("%w: %v", ErrPersist, err))
		return
	}
	out.ArtifactPath = path
}

func (e *Executor) fail(out *Outcome, start time.Time, taskLog *slog.Logger, err error) *Outcome {
	out.Status = StatusFailed
	out.Duration = time.Since(start)
	out.Err = err
	taskLog.Error("task failed", "error", err, "duration", out.Duration)
	return out
}
