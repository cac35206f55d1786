package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `
cohort: kidney
splits:
  count: 100
  train_fraction: 0.8
resources:
  workers: 4
timeouts:
  default_minutes: 10
  per_family:
    linear_hazard: 2
scoring:
  horizon: 730
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cohort != "kidney" {
		t.Errorf("expected cohort kidney, got %s", cfg.Cohort)
	}
	if cfg.Splits.Count != 100 {
		t.Errorf("expected 100 splits, got %d", cfg.Splits.Count)
	}
	if cfg.Resources.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Resources.Workers)
	}
	if cfg.Scoring.Horizon != 730 {
		t.Errorf("expected horizon 730, got %g", cfg.Scoring.Horizon)
	}

	// Untouched sections keep defaults.
	if cfg.Data.TimeColumn != "time" {
		t.Errorf("expected default time column, got %s", cfg.Data.TimeColumn)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SURVBENCH_COHORT", "liver")

	content := "cohort: ${SURVBENCH_COHORT}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cohort != "liver" {
		t.Errorf("expected env-substituted cohort liver, got %s", cfg.Cohort)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `
scoring:
  horizon: -1
  primary: bogus
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative horizon")
	}
}

func TestFamilyTimeout(t *testing.T) {
	cfg := Default()
	cfg.Timeouts.DefaultMinutes = 30
	cfg.Timeouts.PerFamily = map[string]int{"linear_hazard": 5}

	if got := cfg.FamilyTimeout("linear_hazard"); got != 5*time.Minute {
		t.Errorf("expected 5m for linear_hazard, got %v", got)
	}
	if got := cfg.FamilyTimeout("boosted_trees"); got != 30*time.Minute {
		t.Errorf("expected default 30m, got %v", got)
	}
}

func TestValidate_SplitWindow(t *testing.T) {
	cfg := Default()
	cfg.Splits.Start = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative start offset")
	}
}
