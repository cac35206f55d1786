package config

import "time"

type Config struct {
	Cohort     string           `yaml:"cohort"`
	Data       DataConfig       `yaml:"data"`
	Splits     SplitsConfig     `yaml:"splits"`
	Families   []string         `yaml:"families"`
	Resources  ResourcesConfig  `yaml:"resources"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Importance ImportanceConfig `yaml:"importance"`
	Output     OutputConfig     `yaml:"output"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type DataConfig struct {
	Path         string `yaml:"path"`
	TimeColumn   string `yaml:"time_column"`
	StatusColumn string `yaml:"status_column"`
}

// SplitsConfig selects between precomputed splits (Path) and seeded
// on-the-fly MC-CV generation (Count/TrainFraction/Seed).
type SplitsConfig struct {
	Path          string  `yaml:"path"`
	Count         int     `yaml:"count"`
	TrainFraction float64 `yaml:"train_fraction"`
	Seed          int64   `yaml:"seed"`

	// Windowing for resuming a partially completed batch.
	Start int `yaml:"start"`
	Max   int `yaml:"max"`
}

type ResourcesConfig struct {
	// Workers overrides the computed pool size when >= 1.
	Workers           int     `yaml:"workers"`
	ThreadsPerWorker  int     `yaml:"threads_per_worker"`
	TargetUtilization float64 `yaml:"target_utilization"`
}

type TimeoutsConfig struct {
	DefaultMinutes int            `yaml:"default_minutes"`
	PerFamily      map[string]int `yaml:"per_family"`
}

type ScoringConfig struct {
	Horizon float64 `yaml:"horizon"`

	// Primary selects the convention used for downstream model selection:
	// "harrell" or "horizon".
	Primary string `yaml:"primary"`
}

type ImportanceConfig struct {
	Enabled     bool  `yaml:"enabled"`
	MaxFeatures int   `yaml:"max_features"`
	Seed        int64 `yaml:"seed"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type MonitoringConfig struct {
	IntervalSec      int     `yaml:"interval_sec"`
	LoadRatioLimit   float64 `yaml:"load_ratio_limit"`
	HotChildLimit    int     `yaml:"hot_child_limit"`
	ChildCPUMultiple float64 `yaml:"child_cpu_multiple"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) MonitoringInterval() time.Duration {
	return time.Duration(c.Monitoring.IntervalSec) * time.Second
}

func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.Timeouts.DefaultMinutes) * time.Minute
}

// FamilyTimeout returns the deadline for one family, falling back to the
// batch default when no per-family override exists.
func (c *Config) FamilyTimeout(family string) time.Duration {
	if m, ok := c.Timeouts.PerFamily[family]; ok && m > 0 {
		return time.Duration(m) * time.Minute
	}
	return c.DefaultTimeout()
}
