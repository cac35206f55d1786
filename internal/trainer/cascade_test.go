package trainer

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

type stubModel struct{ name string }

func (m *stubModel) Family() Family                   { return FamilyLinearHazard }
func (m *stubModel) Risk(x []float64) float64         { return 0 }
func (m *stubModel) MarshalArtifact() ([]byte, error) { return []byte("{}"), nil }

func cascadeLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRunCascade_PrimarySucceeds(t *testing.T) {
	var buf bytes.Buffer

	res, err := RunCascade([]Strategy{
		{Name: "primary", Fit: func() (Model, error) { return &stubModel{"a"}, nil }},
		{Name: "fallback", Fit: func() (Model, error) { t.Fatal("fallback should not run"); return nil, nil }},
	}, cascadeLogger(&buf))
	if err != nil {
		t.Fatalf("RunCascade failed: %v", err)
	}

	if res.StrategyIndex != 0 || res.StrategyName != "primary" {
		t.Errorf("expected primary strategy, got %+v", res)
	}
}

func TestRunCascade_FallbackUsedAndLogged(t *testing.T) {
	var buf bytes.Buffer

	res, err := RunCascade([]Strategy{
		{Name: "primary", Fit: func() (Model, error) { return nil, fmt.Errorf("encoding blew up") }},
		{Name: "global_encoding", Fit: func() (Model, error) { return &stubModel{"b"}, nil }},
	}, cascadeLogger(&buf))
	if err != nil {
		t.Fatalf("RunCascade failed: %v", err)
	}

	if res.StrategyIndex != 1 {
		t.Errorf("expected fallback index 1, got %d", res.StrategyIndex)
	}

	logged := buf.String()
	if !strings.Contains(logged, "fit strategy failed") {
		t.Error("primary failure should be logged")
	}
	if !strings.Contains(logged, "fit succeeded on fallback strategy") {
		t.Error("fallback success should be logged")
	}
}

func TestRunCascade_AllFail(t *testing.T) {
	var buf bytes.Buffer

	_, err := RunCascade([]Strategy{
		{Name: "primary", Fit: func() (Model, error) { return nil, fmt.Errorf("first") }},
		{Name: "coercion", Fit: func() (Model, error) { return nil, fmt.Errorf("second") }},
	}, cascadeLogger(&buf))

	if !errors.Is(err, ErrAllStrategiesFailed) {
		t.Fatalf("expected ErrAllStrategiesFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "first") || !strings.Contains(err.Error(), "second") {
		t.Errorf("exhausted cascade should report every attempt, got %v", err)
	}
}

func TestRunCascade_Empty(t *testing.T) {
	var buf bytes.Buffer

	if _, err := RunCascade(nil, cascadeLogger(&buf)); !errors.Is(err, ErrAllStrategiesFailed) {
		t.Fatalf("expected ErrAllStrategiesFailed for empty cascade, got %v", err)
	}
}
