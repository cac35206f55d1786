package engine

import (
	"log/slog"
	"time"

	"github.com/graftlab/survbench/internal/artifacts"
)

// Progress is the snapshot external watchers poll. The file is replaced
// atomically, so a reader sees either the previous snapshot or this one,
// never a torn mix.
type Progress struct {
	CurrentStep    string  `json:"current_step"`
	SplitsDone     int     `json:"splits_done"`
	SplitsTotal    int     `json:"splits_total"`
	ElapsedSec     float64 `json:"elapsed_sec"`
	AvgSecPerSplit float64 `json:"avg_sec_per_split"`
	EtaSec         float64 `json:"eta_sec"`
}

// ProgressStore publishes batch progress. It is single-writer: all calls
// come from the pool's serial outcome loop, so the done count only ever
// moves forward.
type ProgressStore struct {
	store            *artifacts.Store
	logger           *slog.Logger
	familiesPerSplit int
	splitsTotal      int
	started          time.Time

	step       string
	taskCounts map[int]int
	splitsDone int
}

func NewProgressStore(store *artifacts.Store, splitsTotal, familiesPerSplit int, log *slog.Logger) *ProgressStore {
	if familiesPerSplit < 1 {
		familiesPerSplit = 1
	}
	return &ProgressStore{
		store:            store,
		logger:           log,
		familiesPerSplit: familiesPerSplit,
		splitsTotal:      splitsTotal,
		started:          time.Now(),
		taskCounts:       make(map[int]int),
	}
}

// SetStep publishes a new phase label.
func (p *ProgressStore) SetStep(step string) {
	p.step = step
	p.publish()
}

// TaskDone records one finished task. A split counts as done once every
// family on it has reached a terminal outcome, whatever that outcome was.
func (p *ProgressStore) TaskDone(splitID int) {
	p.taskCounts[splitID]++
	if p.taskCounts[splitID] == p.familiesPerSplit {
		p.splitsDone++
	}
	p.publish()
}

func (p *ProgressStore) SplitsDone() int {
	return p.splitsDone
}

func (p *ProgressStore) Snapshot() Progress {
	elapsed := time.Since(p.started).Seconds()

	snap := Progress{
		CurrentStep: p.step,
		SplitsDone:  p.splitsDone,
		SplitsTotal: p.splitsTotal,
		ElapsedSec:  elapsed,
	}
	if p.splitsDone > 0 {
		snap.AvgSecPerSplit = elapsed / float64(p.splitsDone)
		snap.EtaSec = snap.AvgSecPerSplit * float64(p.splitsTotal-p.splitsDone)
	}
	return snap
}

func (p *ProgressStore) publish() {
	if err := p.store.WriteJSON("progress.json", p.Snapshot()); err != nil {
		p.logger.Warn("progress write failed", "error", err)
	}
}
