package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a batch configuration from a YAML file. Values start from
// Default(), so a config file only needs the keys it overrides; ${VAR}
// references are substituted from the environment before parsing. An
// invalid configuration is rejected here, before any run directory is
// created.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(substituteEnvVars(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is the CLI entry point: no path or an unloadable file
// falls back to the defaults, which always validate.
func LoadOrDefault(path string) *Config {
	if path == "" {
		return Default()
	}

	cfg, err := Load(path)
	if err != nil {
		return Default()
	}

	return cfg
}
