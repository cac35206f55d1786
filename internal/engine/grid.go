package engine

import (
	"github.com/graftlab/survbench/internal/dataset"
	"github.com/graftlab/survbench/internal/trainer"
)

// BuildGrid expands splits and families into the task list, split-major:
// every family of split s precedes every family of split s+1. The order is
// deterministic so resumed batches see the same grid.
//
// start and max window the split axis: start skips that many splits from
// the front, max > 0 caps how many splits remain. Windowing never cuts a
// split's family list in half.
func BuildGrid(splits []dataset.Split, families []trainer.Family, start, max int) []Task {
	if start < 0 {
		start = 0
	}
	if start > len(splits) {
		start = len(splits)
	}
	windowed := splits[start:]
	if max > 0 && max < len(windowed) {
		windowed = windowed[:max]
	}

	tasks := make([]Task, 0, len(windowed)*len(families))
	for _, split := range windowed {
		for _, family := range families {
			tasks = append(tasks, Task{SplitID: split.ID, Family: family})
		}
	}
	return tasks
}
