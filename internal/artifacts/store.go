// Package artifacts owns the run directory: model files keyed by
// (cohort, family, split), metric and importance tables, the batch
// summary, and the per-task log sinks. Every shared file is written to a
// temp path and renamed so concurrent readers never observe a torn file.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Store struct {
	dir    string
	cohort string
	logger *slog.Logger
}

// NewStore creates the run directory tree rooted at root/cohort/runID.
func NewStore(root, cohort, runID string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Join(root, cohort, runID)

	for _, sub := range []string{"models", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	return &Store{dir: dir, cohort: cohort, logger: logger}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// SaveModel persists one fitted model artifact and returns its path.
func (s *Store) SaveModel(family string, splitID int, artifact []byte) (string, error) {
	path := filepath.Join(s.dir, "models", fmt.Sprintf("%s_split%04d.json", family, splitID))
	if err := s.writeAtomic(path, artifact); err != nil {
		return "", err
	}

	s.logger.Debug("saved model artifact", "path", path)
	return path, nil
}

// WriteTable writes a CSV table under the run directory.
func (s *Store) WriteTable(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			file.Close()
			os.Remove(tempPath)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}

	s.logger.Debug("wrote table", "path", path, "rows", len(rows))
	return nil
}

// WriteJSON writes an indented JSON document under the run directory.
func (s *Store) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.writeAtomic(filepath.Join(s.dir, name), data)
}

// TaskLogPath names the per-task log sink.
func (s *Store) TaskLogPath(family string, splitID int) string {
	return filepath.Join(s.dir, "logs", fmt.Sprintf("%s_split%04d.log", family, splitID))
}

// MonitorLogPath names the batch-wide resource monitor log.
func (s *Store) MonitorLogPath() string {
	return filepath.Join(s.dir, "logs", "resource_monitor.log")
}

// ProgressPath names the progress file readers poll.
func (s *Store) ProgressPath() string {
	return filepath.Join(s.dir, "progress.json")
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
