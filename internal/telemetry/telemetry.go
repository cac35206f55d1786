// Package telemetry exposes batch progress as Prometheus collectors with
// an optional HTTP listener. Every recording method is nil-safe so the
// engine can carry a nil exporter when telemetry is disabled.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter adapts batch events to Prometheus collectors.
type Exporter struct {
	runningTasks        prom.Gauge
	taskOutcomeTotal    *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
	conflictTotal       prom.Counter
	splitsDone          prom.Gauge
}

// NewExporter creates and registers the collectors. A nil reg uses the
// default registerer.
func NewExporter(namespace string, reg prom.Registerer) (*Exporter, error) {
	if namespace == "" {
		namespace = "survbench"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	runningGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "running_tasks",
		Help:      "Number of tasks currently executing.",
	})
	outcomeVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_outcome_total",
		Help:      "Total finished tasks by status and model family.",
	}, []string{"status", "family"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   prom.ExponentialBuckets(1, 2, 12),
	}, []string{"family"})
	conflictCounter := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "resource_conflict_total",
		Help:      "Total resource conflicts flagged by the monitor.",
	})
	splitsGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "splits_done",
		Help:      "Number of splits whose every task has finished.",
	})

	var err error
	if runningGauge, err = registerCollector(reg, runningGauge); err != nil {
		return nil, err
	}
	if outcomeVec, err = registerCollector(reg, outcomeVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if conflictCounter, err = registerCollector(reg, conflictCounter); err != nil {
		return nil, err
	}
	if splitsGauge, err = registerCollector(reg, splitsGauge); err != nil {
		return nil, err
	}

	return &Exporter{
		runningTasks:        runningGauge,
		taskOutcomeTotal:    outcomeVec,
		taskDurationSeconds: durationVec,
		conflictTotal:       conflictCounter,
		splitsDone:          splitsGauge,
	}, nil
}

// TaskStarted marks one task as executing.
func (e *Exporter) TaskStarted() {
	if e == nil {
		return
	}
	e.runningTasks.Inc()
}

// TaskFinished records one finished task.
func (e *Exporter) TaskFinished(status, family string, duration time.Duration) {
	if e == nil {
		return
	}
	e.runningTasks.Dec()
	e.taskOutcomeTotal.WithLabelValues(normalizeLabel(status), normalizeLabel(family)).Inc()
	e.taskDurationSeconds.WithLabelValues(normalizeLabel(family)).Observe(duration.Seconds())
}

// ConflictDetected counts one monitor conflict.
func (e *Exporter) ConflictDetected() {
	if e == nil {
		return
	}
	e.conflictTotal.Inc()
}

// SplitsDone records how many splits have fully finished.
func (e *Exporter) SplitsDone(n int) {
	if e == nil {
		return
	}
	e.splitsDone.Set(float64(n))
}

// Server serves the /metrics endpoint for one batch run.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewServer(addr string, gatherer prom.Gatherer, logger *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prom.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

func (s *Server) Start() {
	go func() {
		s.logger.Info("telemetry listener started", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("telemetry listener failed", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	s.logger.Info("telemetry listener stopped")
	return nil
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
