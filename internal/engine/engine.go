// Package engine schedules the benchmark grid: every model family fit and
// scored on every Monte Carlo split, under a bounded worker pool, with
// per-task deadlines and order-independent result aggregation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/graftlab/survbench/internal/artifacts"
	"github.com/graftlab/survbench/internal/config"
	"github.com/graftlab/survbench/internal/dataset"
	"github.com/graftlab/survbench/internal/monitor"
	"github.com/graftlab/survbench/internal/recipe"
	"github.com/graftlab/survbench/internal/telemetry"
	"github.com/graftlab/survbench/internal/trainer"
)

type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: log}
}

// RunResult reports where a finished batch landed and how it went.
type RunResult struct {
	RunID   string
	Dir     string
	Summary Summary
}

// Run executes one full batch. Boundary failures (unreadable data,
// invalid splits, unknown families) abort before any task starts; after
// dispatch begins, failures stay task-local.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	frame, err := dataset.LoadCSV(e.cfg.Data.Path, e.cfg.Data.TimeColumn, e.cfg.Data.StatusColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	splits, err := e.loadSplits(frame.Rows())
	if err != nil {
		return nil, err
	}

	families, err := trainer.ParseFamilies(e.cfg.Families)
	if err != nil {
		return nil, fmt.Errorf("invalid families: %w", err)
	}

	tasks := BuildGrid(splits, families, e.cfg.Splits.Start, e.cfg.Splits.Max)
	if len(tasks) == 0 {
		return nil, fmt.Errorf("empty task grid: %d splits windowed to nothing", len(splits))
	}

	res := ComputeResources(DetectCores(), e.cfg.Resources)
	if err := res.Apply(e.logger); err != nil {
		return nil, err
	}

	runID := ulid.Make().String()
	store, err := artifacts.NewStore(e.cfg.Output.Dir, e.cfg.Cohort, runID, e.logger)
	if err != nil {
		return nil, err
	}

	e.logger.Info("batch starting",
		"run_id", runID,
		"dir", store.Dir(),
		"tasks", len(tasks),
		"splits", len(tasks)/len(families),
		"families", len(families),
		"workers", res.Workers,
	)

	exporter, telemetryStop, err := e.startTelemetry()
	if err != nil {
		return nil, err
	}
	defer telemetryStop()

	mon, err := e.startMonitor(ctx, store, exporter)
	if err != nil {
		e.logger.Warn("resource monitor unavailable", "error", err)
	} else {
		defer func() {
			if err := mon.Stop(); err != nil {
				e.logger.Warn("resource monitor stop failed", "error", err)
			}
		}()
	}

	// The whole-dataset encoding is precomputed once so the fallback
	// never depends on state mutated mid-batch.
	global, err := recipe.Fit(frame, recipe.Options{})
	if err != nil {
		e.logger.Warn("global encoding unavailable", "error", err)
		global = nil
	}

	splitsByID := make(map[int]dataset.Split, len(splits))
	for _, s := range splits {
		splitsByID[s.ID] = s
	}

	executor := NewExecutor(frame, global, store, e.cfg, e.logger)
	pool := NewPool(res.Workers, e.logger)
	progress := NewProgressStore(store, len(tasks)/len(families), len(families), e.logger)
	agg := NewAggregator(e.cfg.Scoring.Primary)

	progress.SetStep("running")

	run := func(task Task) *Outcome {
		exporter.TaskStarted()
		return runGuarded(task, e.cfg.FamilyTimeout(task.Family.String()), func() *Outcome {
			return executor.Execute(task, splitsByID[task.SplitID])
		}, e.logger)
	}

	pool.Run(ctx, tasks, run, func(out *Outcome) {
		agg.Add(out)
		progress.TaskDone(out.Task.SplitID)
		exporter.TaskFinished(string(out.Status), out.Task.Family.String(), out.Duration)
		exporter.SplitsDone(progress.SplitsDone())
	})

	progress.SetStep("finalizing")
	if err := agg.Flush(store); err != nil {
		return nil, fmt.Errorf("failed to write results: %w", err)
	}
	progress.SetStep("done")

	summary := agg.Summarize()
	e.logger.Info("batch finished",
		"run_id", runID,
		"tasks", summary.Tasks,
		"by_status", summary.ByStatus,
		"fallback_fits", summary.Fallbacks,
	)

	return &RunResult{RunID: runID, Dir: store.Dir(), Summary: summary}, nil
}

func (e *Engine) loadSplits(rows int) ([]dataset.Split, error) {
	var splits []dataset.Split
	if e.cfg.Splits.Path != "" {
		loaded, err := dataset.LoadSplits(e.cfg.Splits.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load splits: %w", err)
		}
		splits = loaded
	} else {
		splits = dataset.GenerateSplits(rows, e.cfg.Splits.Count, e.cfg.Splits.TrainFraction, e.cfg.Splits.Seed)
	}

	if err := dataset.ValidateSplits(splits, rows); err != nil {
		return nil, fmt.Errorf("invalid splits: %w", err)
	}
	return splits, nil
}

func (e *Engine) startTelemetry() (*telemetry.Exporter, func(), error) {
	if !e.cfg.Telemetry.Enabled {
		return nil, func() {}, nil
	}

	exporter, err := telemetry.NewExporter("survbench", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register telemetry: %w", err)
	}

	server := telemetry.NewServer(e.cfg.Telemetry.Addr, nil, e.logger)
	server.Start()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			e.logger.Warn("telemetry stop failed", "error", err)
		}
	}
	return exporter, stop, nil
}

func (e *Engine) startMonitor(ctx context.Context, store *artifacts.Store, exporter *telemetry.Exporter) (*monitor.Monitor, error) {
	limits := monitor.Limits{
		LoadRatioLimit:   e.cfg.Monitoring.LoadRatioLimit,
		HotChildLimit:    e.cfg.Monitoring.HotChildLimit,
		ChildCPUMultiple: e.cfg.Monitoring.ChildCPUMultiple,
	}

	mon, err := monitor.New(store.MonitorLogPath(), e.cfg.MonitoringInterval(), limits, e.logger, func(monitor.Conflict) {
		exporter.ConflictDetected()
	})
	if err != nil {
		return nil, err
	}
	if err := mon.Start(ctx); err != nil {
		return nil, err
	}
	return mon, nil
}
