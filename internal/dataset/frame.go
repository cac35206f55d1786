package dataset

import (
	"errors"
	"fmt"
)

// Column is one predictor. Numeric columns carry Values with NaN for
// missing entries; categorical columns carry Labels with "" for missing.
type Column struct {
	Name        string
	Categorical bool
	Values      []float64
	Labels      []string
}

func (c *Column) len() int {
	if c.Categorical {
		return len(c.Labels)
	}
	return len(c.Values)
}

// Frame is a labeled survival dataset: an event/censoring time, a 0/1
// event indicator, and an arbitrary set of predictor columns.
type Frame struct {
	Time    []float64
	Status  []int
	Columns []Column
}

func (f *Frame) Rows() int {
	return len(f.Time)
}

func (f *Frame) PredictorNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

func (f *Frame) Column(name string) (*Column, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i], true
		}
	}
	return nil, false
}

// Validate checks the batch-fatal boundary conditions. Anything it rejects
// aborts before a single task is dispatched.
func (f *Frame) Validate() error {
	var errs []error

	if len(f.Time) == 0 {
		errs = append(errs, fmt.Errorf("dataset has no rows"))
	}
	if len(f.Status) != len(f.Time) {
		errs = append(errs, fmt.Errorf("status column length %d does not match time column length %d", len(f.Status), len(f.Time)))
	}
	for _, s := range f.Status {
		if s != 0 && s != 1 {
			errs = append(errs, fmt.Errorf("status values must be 0 or 1, found %d", s))
			break
		}
	}
	for i := range f.Columns {
		if n := f.Columns[i].len(); n != len(f.Time) {
			errs = append(errs, fmt.Errorf("column %s has %d rows, expected %d", f.Columns[i].Name, n, len(f.Time)))
		}
	}

	return errors.Join(errs...)
}

// Subset returns a deep copy of the selected rows. Every task works on its
// own subset so an abandoned (timed-out) task can never touch shared data.
func (f *Frame) Subset(indices []int) *Frame {
	out := &Frame{
		Time:    make([]float64, len(indices)),
		Status:  make([]int, len(indices)),
		Columns: make([]Column, len(f.Columns)),
	}

	for i, idx := range indices {
		out.Time[i] = f.Time[idx]
		out.Status[i] = f.Status[idx]
	}

	for ci := range f.Columns {
		src := &f.Columns[ci]
		dst := Column{Name: src.Name, Categorical: src.Categorical}
		if src.Categorical {
			dst.Labels = make([]string, len(indices))
			for i, idx := range indices {
				dst.Labels[i] = src.Labels[idx]
			}
		} else {
			dst.Values = make([]float64, len(indices))
			for i, idx := range indices {
				dst.Values[i] = src.Values[idx]
			}
		}
		out.Columns[ci] = dst
	}

	return out
}
