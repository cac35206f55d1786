package monitor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/graftlab/survbench/internal/logger"
)

type record struct {
	Sample    *Sample    `json:"sample"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// Monitor samples the process tree on a fixed interval, appends each
// sample to its own JSON log, and reports conflicts through an optional
// callback. All failures stay inside the monitor: a broken sampler or an
// unwritable sink degrades observability, never the batch.
type Monitor struct {
	sampler    *Sampler
	limits     Limits
	interval   time.Duration
	logger     *slog.Logger
	sink       *slog.Logger
	sinkCloser io.Closer
	onConflict func(Conflict)

	mu     sync.RWMutex
	latest *Sample
	done   chan struct{}
}

// New builds a monitor writing samples to logPath. onConflict may be nil.
func New(logPath string, interval time.Duration, limits Limits, log *slog.Logger, onConflict func(Conflict)) (*Monitor, error) {
	sampler, err := NewSampler()
	if err != nil {
		return nil, err
	}

	sink, closer, err := logger.FileSink(logPath, "info")
	if err != nil {
		return nil, err
	}

	return &Monitor{
		sampler:    sampler,
		limits:     limits,
		interval:   interval,
		logger:     log,
		sink:       sink,
		sinkCloser: closer,
		onConflict: onConflict,
		done:       make(chan struct{}),
	}, nil
}

func (m *Monitor) Start(ctx context.Context) error {
	m.collect()

	go m.runLoop(ctx)

	m.logger.Info("resource monitor started", "interval", m.interval)
	return nil
}

func (m *Monitor) Stop() error {
	close(m.done)
	m.logger.Info("resource monitor stopped")
	return m.sinkCloser.Close()
}

// Latest returns a copy of the most recent sample, or nil before the
// first collection succeeds.
func (m *Monitor) Latest() *Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil
	}
	return m.latest.Clone()
}

func (m *Monitor) runLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("resource monitor loop panicked", "panic", r)
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collect()
		case <-ctx.Done():
			return
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) collect() {
	sample, err := m.sampler.Collect()
	if err != nil {
		m.logger.Warn("sample collection failed", "error", err)
		return
	}

	conflicts := DetectConflicts(sample, m.limits)

	m.mu.Lock()
	m.latest = sample
	m.mu.Unlock()

	m.sink.Info("sample",
		slog.Any("sample", sample),
		slog.Any("conflicts", conflicts),
	)

	for _, c := range conflicts {
		m.logger.Warn("resource conflict detected",
			"rule", c.Rule,
			"value", c.Value,
			"limit", c.Limit,
			"detail", c.Detail,
		)
		if m.onConflict != nil {
			m.onConflict(c)
		}
	}
}

// Watch runs a standalone observation session until ctx is cancelled,
// printing each sample as one JSON line. It backs the monitor subcommand.
func Watch(ctx context.Context, interval time.Duration, limits Limits, log *slog.Logger) error {
	sampler, err := NewSampler()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	enc := json.NewEncoder(os.Stdout)
	for {
		sample, err := sampler.Collect()
		if err != nil {
			log.Warn("sample collection failed", "error", err)
		} else {
			conflicts := DetectConflicts(sample, limits)
			if err := enc.Encode(record{Sample: sample, Conflicts: conflicts}); err != nil {
				return err
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}
