package engine

import (
	"fmt"
	"time"

	"github.com/graftlab/survbench/internal/survival"
	"github.com/graftlab/survbench/internal/trainer"
)

// Task is one unit of work: fit and score one model family on one split.
type Task struct {
	SplitID int
	Family  trainer.Family
}

func (t Task) String() string {
	return fmt.Sprintf("%s/split%04d", t.Family, t.SplitID)
}

type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timed_out"
	StatusSkipped  Status = "skipped"
)

// Outcome is the terminal record of one task. Exactly one outcome exists
// per task regardless of how the task ended.
type Outcome struct {
	Task     Task
	Status   Status
	Duration time.Duration

	// Scores are meaningful only when Status is StatusSuccess.
	Harrell float64
	Horizon float64

	Importance []survival.FeatureImportance

	// ArtifactPath is empty when persistence failed or was skipped.
	ArtifactPath string

	// FallbackIndex is the cascade strategy that produced the model;
	// zero means the primary encoding succeeded.
	FallbackIndex int

	Err error
}
