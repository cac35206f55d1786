package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if c.Cohort == "" {
		errs = append(errs, fmt.Errorf("cohort cannot be empty"))
	}

	if err := c.Data.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("data: %w", err))
	}

	if err := c.Splits.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("splits: %w", err))
	}

	if len(c.Families) == 0 {
		errs = append(errs, fmt.Errorf("families cannot be empty"))
	}

	if err := c.Resources.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("resources: %w", err))
	}

	if err := c.Timeouts.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("timeouts: %w", err))
	}

	if err := c.Scoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}

	if err := c.Importance.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("importance: %w", err))
	}

	if err := c.Monitoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("monitoring: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (d *DataConfig) Validate() error {
	var errs []error

	if d.TimeColumn == "" {
		errs = append(errs, fmt.Errorf("time_column cannot be empty"))
	}
	if d.StatusColumn == "" {
		errs = append(errs, fmt.Errorf("status_column cannot be empty"))
	}

	return errors.Join(errs...)
}

func (s *SplitsConfig) Validate() error {
	var errs []error

	if s.Path == "" {
		if s.Count < 1 {
			errs = append(errs, fmt.Errorf("count must be at least 1 when no split file is given"))
		}
		if s.TrainFraction <= 0 || s.TrainFraction >= 1 {
			errs = append(errs, fmt.Errorf("train_fraction must be in (0, 1), got %g", s.TrainFraction))
		}
	}

	if s.Start < 0 {
		errs = append(errs, fmt.Errorf("start must be non-negative, got %d", s.Start))
	}
	if s.Max < 0 {
		errs = append(errs, fmt.Errorf("max must be non-negative, got %d", s.Max))
	}

	return errors.Join(errs...)
}

func (r *ResourcesConfig) Validate() error {
	var errs []error

	if r.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", r.Workers))
	}
	if r.ThreadsPerWorker < 0 {
		errs = append(errs, fmt.Errorf("threads_per_worker must be non-negative, got %d", r.ThreadsPerWorker))
	}
	if r.TargetUtilization <= 0 || r.TargetUtilization > 1 {
		errs = append(errs, fmt.Errorf("target_utilization must be in (0, 1], got %g", r.TargetUtilization))
	}

	return errors.Join(errs...)
}

func (t *TimeoutsConfig) Validate() error {
	if t.DefaultMinutes < 1 {
		return fmt.Errorf("default_minutes must be at least 1, got %d", t.DefaultMinutes)
	}
	for family, minutes := range t.PerFamily {
		if minutes < 1 {
			return fmt.Errorf("per_family timeout for %s must be at least 1 minute, got %d", family, minutes)
		}
	}
	return nil
}

func (s *ScoringConfig) Validate() error {
	var errs []error

	if s.Horizon <= 0 {
		errs = append(errs, fmt.Errorf("horizon must be positive, got %g", s.Horizon))
	}

	switch s.Primary {
	case "harrell", "horizon":
	default:
		errs = append(errs, fmt.Errorf("invalid primary convention: %s (valid: harrell, horizon)", s.Primary))
	}

	return errors.Join(errs...)
}

func (i *ImportanceConfig) Validate() error {
	if i.Enabled && i.MaxFeatures < 1 {
		return fmt.Errorf("max_features must be at least 1 when importance is enabled, got %d", i.MaxFeatures)
	}
	return nil
}

func (m *MonitoringConfig) Validate() error {
	var errs []error

	if m.IntervalSec < 1 {
		errs = append(errs, fmt.Errorf("interval_sec must be at least 1, got %d", m.IntervalSec))
	}
	if m.LoadRatioLimit <= 0 {
		errs = append(errs, fmt.Errorf("load_ratio_limit must be positive, got %g", m.LoadRatioLimit))
	}
	if m.HotChildLimit < 1 {
		errs = append(errs, fmt.Errorf("hot_child_limit must be at least 1, got %d", m.HotChildLimit))
	}
	if m.ChildCPUMultiple <= 0 {
		errs = append(errs, fmt.Errorf("child_cpu_multiple must be positive, got %g", m.ChildCPUMultiple))
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}
