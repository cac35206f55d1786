package artifacts

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewStore_CreatesTree(t *testing.T) {
	root := t.TempDir()

	s, err := NewStore(root, "kidney", "01ABC", testLogger())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	for _, sub := range []string{"models", "logs"} {
		if _, err := os.Stat(filepath.Join(s.Dir(), sub)); err != nil {
			t.Errorf("expected %s directory: %v", sub, err)
		}
	}
}

func TestSaveModel(t *testing.T) {
	s, err := NewStore(t.TempDir(), "kidney", "run1", testLogger())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	path, err := s.SaveModel("boosted_trees", 7, []byte(`{"family":"boosted_trees"}`))
	if err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	if !strings.HasSuffix(path, "boosted_trees_split0007.json") {
		t.Errorf("unexpected artifact path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("artifact not readable: %v", err)
	}
	if string(data) != `{"family":"boosted_trees"}` {
		t.Errorf("unexpected artifact content: %s", data)
	}
}

func TestWriteTable(t *testing.T) {
	s, err := NewStore(t.TempDir(), "kidney", "run1", testLogger())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	header := []string{"split", "model", "concordance"}
	rows := [][]string{
		{"0", "linear_hazard", "0.71"},
		{"1", "linear_hazard", "0.69"},
	}
	if err := s.WriteTable("metrics_harrell.csv", header, rows); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	f, err := os.Open(filepath.Join(s.Dir(), "metrics_harrell.csv"))
	if err != nil {
		t.Fatalf("table not readable: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("table not parseable: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[1][2] != "0.71" {
		t.Errorf("unexpected cell: %s", records[1][2])
	}

	// No temp file left behind.
	if _, err := os.Stat(filepath.Join(s.Dir(), "metrics_harrell.csv.tmp")); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}
}

func TestWriteJSON(t *testing.T) {
	s, err := NewStore(t.TempDir(), "kidney", "run1", testLogger())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := s.WriteJSON("summary.json", map[string]int{"failed": 2}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "summary.json"))
	if err != nil {
		t.Fatalf("summary not readable: %v", err)
	}
	if !strings.Contains(string(data), `"failed": 2`) {
		t.Errorf("unexpected summary content: %s", data)
	}
}

func TestPaths(t *testing.T) {
	s, err := NewStore(t.TempDir(), "kidney", "run1", testLogger())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if !strings.HasSuffix(s.TaskLogPath("linear_hazard", 3), "linear_hazard_split0003.log") {
		t.Errorf("unexpected task log path: %s", s.TaskLogPath("linear_hazard", 3))
	}
	if filepath.Dir(s.ProgressPath()) != s.Dir() {
		t.Errorf("progress file should live in the run dir: %s", s.ProgressPath())
	}
}
