// Package recipe builds numeric design tables from survival frames. A
// recipe is fit on training rows only and then frozen, so imputation and
// encoding statistics never leak from the test side of a split.
package recipe

import (
	"fmt"
	"math"
	"sort"

	"github.com/graftlab/survbench/internal/dataset"
)

// Table is a baked design matrix plus the survival outcome columns, the
// form every trainer consumes.
type Table struct {
	Names  []string
	X      [][]float64
	Time   []float64
	Status []int
}

func (t *Table) Rows() int {
	return len(t.X)
}

// Clone deep-copies the table. Permutation importance shuffles columns of
// a clone so the scoring table is never disturbed.
func (t *Table) Clone() *Table {
	out := &Table{
		Names:  append([]string(nil), t.Names...),
		X:      make([][]float64, len(t.X)),
		Time:   append([]float64(nil), t.Time...),
		Status: append([]int(nil), t.Status...),
	}
	for i, row := range t.X {
		out.X[i] = append([]float64(nil), row...)
	}
	return out
}

type columnStats struct {
	median float64
	mean   float64
	std    float64
}

// Options control how predictors are encoded.
type Options struct {
	// NumericOnly drops categorical predictors instead of encoding them.
	// This is the last-resort cascade strategy.
	NumericOnly bool
}

// Recipe holds frozen preprocessing statistics: numeric medians and
// standardization moments, and per-column categorical level codes.
type Recipe struct {
	opts    Options
	numeric map[string]columnStats
	levels  map[string]map[string]float64
	names   []string
}

// Fit computes preprocessing statistics from the given rows. The frame is
// normally a split's training subset; fitting on the full dataset instead
// yields the precomputed global encoding used by the first fallback.
func Fit(f *dataset.Frame, opts Options) (*Recipe, error) {
	if f.Rows() < 2 {
		return nil, fmt.Errorf("cannot fit recipe on %d rows", f.Rows())
	}

	r := &Recipe{
		opts:    opts,
		numeric: make(map[string]columnStats),
		levels:  make(map[string]map[string]float64),
	}

	for ci := range f.Columns {
		col := &f.Columns[ci]
		if col.Categorical {
			if opts.NumericOnly {
				continue
			}
			r.levels[col.Name] = encodeLevels(col.Labels)
		} else {
			r.numeric[col.Name] = fitNumeric(col.Values)
		}
		r.names = append(r.names, col.Name)
	}

	if len(r.names) == 0 {
		return nil, fmt.Errorf("no usable predictor columns after encoding")
	}

	return r, nil
}

// Bake applies the frozen statistics to a frame, producing the design
// table. Unseen categorical levels map to -1, missing values to the fitted
// median (numeric) or -1 (categorical).
func (r *Recipe) Bake(f *dataset.Frame) (*Table, error) {
	n := f.Rows()
	if n == 0 {
		return nil, fmt.Errorf("cannot bake an empty frame")
	}

	t := &Table{
		Names:  append([]string(nil), r.names...),
		X:      make([][]float64, n),
		Time:   append([]float64(nil), f.Time...),
		Status: append([]int(nil), f.Status...),
	}
	for i := range t.X {
		t.X[i] = make([]float64, len(r.names))
	}

	for j, name := range r.names {
		col, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %s missing from frame", name)
		}

		if col.Categorical {
			codes := r.levels[name]
			for i := 0; i < n; i++ {
				code, seen := codes[col.Labels[i]]
				if !seen {
					code = -1
				}
				t.X[i][j] = code
			}
			continue
		}

		stats := r.numeric[name]
		for i := 0; i < n; i++ {
			v := col.Values[i]
			if math.IsNaN(v) {
				v = stats.median
			}
			t.X[i][j] = (v - stats.mean) / stats.std
		}
	}

	return t, nil
}

func fitNumeric(values []float64) columnStats {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	var stats columnStats
	if len(present) == 0 {
		stats.std = 1
		return stats
	}

	sorted := append([]float64(nil), present...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.median = sorted[mid]
	}

	var sum float64
	for _, v := range present {
		sum += v
	}
	stats.mean = sum / float64(len(present))

	var ss float64
	for _, v := range present {
		d := v - stats.mean
		ss += d * d
	}
	stats.std = math.Sqrt(ss / float64(len(present)))
	if stats.std == 0 {
		stats.std = 1
	}

	return stats
}

// encodeLevels assigns ordinal codes by descending frequency, ties broken
// alphabetically so the encoding is deterministic.
func encodeLevels(labels []string) map[string]float64 {
	counts := make(map[string]int)
	for _, l := range labels {
		if l == "" {
			continue
		}
		counts[l]++
	}

	ordered := make([]string, 0, len(counts))
	for l := range counts {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(a, b int) bool {
		if counts[ordered[a]] != counts[ordered[b]] {
			return counts[ordered[a]] > counts[ordered[b]]
		}
		return ordered[a] < ordered[b]
	})

	codes := make(map[string]float64, len(ordered))
	for i, l := range ordered {
		codes[l] = float64(i)
	}
	return codes
}
