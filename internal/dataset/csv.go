package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// LoadCSV reads a cohort table. timeCol and statusCol are required; every
// other column becomes a predictor. A column is treated as numeric when all
// its non-empty cells parse as floats, categorical otherwise.
func LoadCSV(path string, timeCol, statusCol string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := records[0]
	rows := records[1:]

	timeIdx, statusIdx := -1, -1
	for i, name := range header {
		switch name {
		case timeCol:
			timeIdx = i
		case statusCol:
			statusIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("required column %q not found in %s", timeCol, path)
	}
	if statusIdx < 0 {
		return nil, fmt.Errorf("required column %q not found in %s", statusCol, path)
	}

	frame := &Frame{
		Time:   make([]float64, len(rows)),
		Status: make([]int, len(rows)),
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i+2, len(row), len(header))
		}
		t, err := strconv.ParseFloat(row[timeIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad %s value %q", i+2, timeCol, row[timeIdx])
		}
		s, err := strconv.Atoi(row[statusIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad %s value %q", i+2, statusCol, row[statusIdx])
		}
		frame.Time[i] = t
		frame.Status[i] = s
	}

	for ci, name := range header {
		if ci == timeIdx || ci == statusIdx {
			continue
		}
		frame.Columns = append(frame.Columns, buildColumn(name, rows, ci))
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}

	return frame, nil
}

func buildColumn(name string, rows [][]string, ci int) Column {
	values := make([]float64, len(rows))
	numeric := true

	for i, row := range rows {
		cell := row[ci]
		if cell == "" || cell == "NA" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}

	if numeric {
		return Column{Name: name, Values: values}
	}

	labels := make([]string, len(rows))
	for i, row := range rows {
		cell := row[ci]
		if cell == "NA" {
			cell = ""
		}
		labels[i] = cell
	}
	return Column{Name: name, Categorical: true, Labels: labels}
}
