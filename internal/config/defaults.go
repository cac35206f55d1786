package config

func Default() *Config {
	return &Config{
		Cohort: "default",
		Data: DataConfig{
			TimeColumn:   "time",
			StatusColumn: "status",
		},
		Splits: SplitsConfig{
			Count:         500,
			TrainFraction: 0.7,
			Seed:          42,
			Start:         0,
			Max:           0,
		},
		Families: []string{
			"oblique_forest",
			"boosted_trees",
			"boosted_trees_alt",
			"linear_hazard",
		},
		Resources: ResourcesConfig{
			Workers:           0,
			ThreadsPerWorker:  1,
			TargetUtilization: 0.8,
		},
		Timeouts: TimeoutsConfig{
			DefaultMinutes: 30,
			PerFamily: map[string]int{
				"linear_hazard": 5,
			},
		},
		Scoring: ScoringConfig{
			Horizon: 365,
			Primary: "harrell",
		},
		Importance: ImportanceConfig{
			Enabled:     false,
			MaxFeatures: 25,
			Seed:        42,
		},
		Output: OutputConfig{
			Dir: "runs",
		},
		Monitoring: MonitoringConfig{
			IntervalSec:      30,
			LoadRatioLimit:   1.5,
			HotChildLimit:    3,
			ChildCPUMultiple: 1.25,
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9187",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
