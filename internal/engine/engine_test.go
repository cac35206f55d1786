package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/graftlab/survbench/internal/config"
)

func writeDataset(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(41))

	var b strings.Builder
	b.WriteString("graft_days,graft_loss,egfr,donor_age,donor_type\n")
	types := []string{"living", "deceased"}
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		days := 300 + 100*x + 20*rng.NormFloat64()
		if days < 1 {
			days = 1
		}
		status := 1
		if rng.Float64() < 0.3 {
			status = 0
		}
		fmt.Fprintf(&b, "%.1f,%d,%.2f,%d,%s\n",
			days, status, x, 20+rng.Intn(50), types[rng.Intn(2)])
	}

	path := filepath.Join(t.TempDir(), "cohort.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func batchConfig(t *testing.T, rows int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Path = writeDataset(t, rows)
	cfg.Data.TimeColumn = "graft_days"
	cfg.Data.StatusColumn = "graft_loss"
	cfg.Splits.Count = 4
	cfg.Families = []string{"linear_hazard"}
	cfg.Resources.Workers = 2
	cfg.Output.Dir = t.TempDir()
	cfg.Telemetry.Enabled = false
	return cfg
}

func TestEngine_RunEndToEnd(t *testing.T) {
	cfg := batchConfig(t, 120)
	eng := New(cfg, quietLogger())

	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Summary.Tasks != 4 {
		t.Errorf("expected 4 tasks, got %d", res.Summary.Tasks)
	}
	if res.Summary.ByStatus[string(StatusSuccess)] != 4 {
		t.Errorf("expected every task to succeed: %v", res.Summary.ByStatus)
	}

	for _, name := range []string{"metrics.csv", "summary.json", "progress.json"} {
		if _, err := os.Stat(filepath.Join(res.Dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(res.Dir, "progress.json"))
	if err != nil {
		t.Fatalf("progress unreadable: %v", err)
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("progress unparseable: %v", err)
	}
	if p.CurrentStep != "done" || p.SplitsDone != 4 {
		t.Errorf("unexpected final progress: %+v", p)
	}

	models, err := os.ReadDir(filepath.Join(res.Dir, "models"))
	if err != nil || len(models) != 4 {
		t.Errorf("expected 4 model artifacts, got %d (%v)", len(models), err)
	}
}

func TestEngine_SplitWindow(t *testing.T) {
	cfg := batchConfig(t, 120)
	cfg.Splits.Start = 1
	cfg.Splits.Max = 2
	eng := New(cfg, quietLogger())

	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Summary.Tasks != 2 {
		t.Errorf("expected 2 windowed tasks, got %d", res.Summary.Tasks)
	}
}

func TestEngine_BadDatasetIsFatal(t *testing.T) {
	cfg := batchConfig(t, 120)
	cfg.Data.Path = filepath.Join(t.TempDir(), "missing.csv")
	eng := New(cfg, quietLogger())

	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatal("expected a fatal error for an unreadable dataset")
	}
}

func TestEngine_UnknownFamilyIsFatal(t *testing.T) {
	cfg := batchConfig(t, 120)
	cfg.Families = []string{"deep_net"}
	eng := New(cfg, quietLogger())

	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatal("expected a fatal error for an unknown family")
	}
}

func TestEngine_EmptyWindowIsFatal(t *testing.T) {
	cfg := batchConfig(t, 120)
	cfg.Splits.Start = 100
	eng := New(cfg, quietLogger())

	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatal("expected a fatal error for an empty task grid")
	}
}
