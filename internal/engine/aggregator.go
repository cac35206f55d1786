package engine

import (
	"sort"
	"strconv"

	"github.com/graftlab/survbench/internal/artifacts"
)

// Aggregator collects task outcomes keyed by (split, family). Adding the
// same task twice replaces the earlier record, and the emitted tables are
// sorted, so the final files are identical no matter how worker
// completions interleave.
type Aggregator struct {
	// primary names the concordance convention downstream model
	// selection reads: "harrell" or "horizon".
	primary  string
	outcomes map[Task]*Outcome
}

func NewAggregator(primary string) *Aggregator {
	if primary != "horizon" {
		primary = "harrell"
	}
	return &Aggregator{primary: primary, outcomes: make(map[Task]*Outcome)}
}

func (a *Aggregator) Add(out *Outcome) {
	a.outcomes[out.Task] = out
}

func (a *Aggregator) Len() int {
	return len(a.outcomes)
}

// sortedTasks orders split-major, families alphabetical within a split.
func (a *Aggregator) sortedTasks() []Task {
	tasks := make([]Task, 0, len(a.outcomes))
	for task := range a.outcomes {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].SplitID != tasks[j].SplitID {
			return tasks[i].SplitID < tasks[j].SplitID
		}
		return tasks[i].Family < tasks[j].Family
	})
	return tasks
}

var metricsHeader = []string{"split", "model", "status", "harrell_c", "horizon_c", "fallback_index", "duration_sec"}

// MetricRows emits one row per task. Failed and timed-out tasks keep
// their row with empty score cells so the table always covers the grid.
func (a *Aggregator) MetricRows() [][]string {
	tasks := a.sortedTasks()
	rows := make([][]string, 0, len(tasks))

	for _, task := range tasks {
		out := a.outcomes[task]
		row := []string{
			strconv.Itoa(task.SplitID),
			task.Family.String(),
			string(out.Status),
			"",
			"",
			strconv.Itoa(out.FallbackIndex),
			strconv.FormatFloat(out.Duration.Seconds(), 'f', 3, 64),
		}
		if out.Status == StatusSuccess {
			row[3] = strconv.FormatFloat(out.Harrell, 'f', 6, 64)
			row[4] = strconv.FormatFloat(out.Horizon, 'f', 6, 64)
		}
		rows = append(rows, row)
	}
	return rows
}

var importanceHeader = []string{"split", "model", "feature", "importance"}

func (a *Aggregator) ImportanceRows() [][]string {
	var rows [][]string
	for _, task := range a.sortedTasks() {
		out := a.outcomes[task]
		for _, imp := range out.Importance {
			rows = append(rows, []string{
				strconv.Itoa(task.SplitID),
				task.Family.String(),
				imp.Feature,
				strconv.FormatFloat(imp.Importance, 'f', 6, 64),
			})
		}
	}
	return rows
}

// Summary counts outcomes overall and per family, and carries the mean
// concordance per family under the primary scoring convention.
type Summary struct {
	Tasks         int                       `json:"tasks"`
	ByStatus      map[string]int            `json:"by_status"`
	ByFamily      map[string]map[string]int `json:"by_family"`
	Fallbacks     int                       `json:"fallback_fits"`
	PrimaryMetric string                    `json:"primary_metric"`
	MeanPrimary   map[string]float64        `json:"mean_primary_by_family"`
}

func (a *Aggregator) Summarize() Summary {
	s := Summary{
		Tasks:         len(a.outcomes),
		ByStatus:      make(map[string]int),
		ByFamily:      make(map[string]map[string]int),
		PrimaryMetric: a.primary,
		MeanPrimary:   make(map[string]float64),
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)

	for task, out := range a.outcomes {
		s.ByStatus[string(out.Status)]++

		family := task.Family.String()
		if s.ByFamily[family] == nil {
			s.ByFamily[family] = make(map[string]int)
		}
		s.ByFamily[family][string(out.Status)]++

		if out.Status == StatusSuccess {
			if out.FallbackIndex > 0 {
				s.Fallbacks++
			}
			score := out.Harrell
			if a.primary == "horizon" {
				score = out.Horizon
			}
			sums[family] += score
			counts[family]++
		}
	}

	for family, n := range counts {
		s.MeanPrimary[family] = sums[family] / float64(n)
	}
	return s
}

// Flush writes the final tables and summary into the run directory.
func (a *Aggregator) Flush(store *artifacts.Store) error {
	if err := store.WriteTable("metrics.csv", metricsHeader, a.MetricRows()); err != nil {
		return err
	}
	if rows := a.ImportanceRows(); len(rows) > 0 {
		if err := store.WriteTable("importance.csv", importanceHeader, rows); err != nil {
			return err
		}
	}
	return store.WriteJSON("summary.json", a.Summarize())
}
