package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

// Split is one realization of a train/test row partition. Splits are
// immutable once generated; tasks reference them, never mutate them.
type Split struct {
	ID    int   `json:"id"`
	Train []int `json:"train"`
	Test  []int `json:"test"`
}

// LoadSplits reads a precomputed split list (the upstream provider's
// output) from a JSON file.
func LoadSplits(path string) ([]Split, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read split file: %w", err)
	}

	var splits []Split
	if err := json.Unmarshal(data, &splits); err != nil {
		return nil, fmt.Errorf("failed to parse split file: %w", err)
	}

	return splits, nil
}

// GenerateSplits produces count seeded MC-CV partitions of n rows.
// The same (n, count, trainFraction, seed) always yields the same splits.
func GenerateSplits(n, count int, trainFraction float64, seed int64) []Split {
	rng := rand.New(rand.NewSource(seed))
	trainSize := int(float64(n) * trainFraction)
	if trainSize < 1 {
		trainSize = 1
	}
	if trainSize >= n {
		trainSize = n - 1
	}

	splits := make([]Split, count)
	for s := 0; s < count; s++ {
		perm := rng.Perm(n)
		train := make([]int, trainSize)
		test := make([]int, n-trainSize)
		copy(train, perm[:trainSize])
		copy(test, perm[trainSize:])
		splits[s] = Split{ID: s, Train: train, Test: test}
	}

	return splits
}

// ValidateSplits checks the batch-fatal split conditions: an empty list,
// an empty partition side, or an index outside the dataset.
func ValidateSplits(splits []Split, rows int) error {
	if len(splits) == 0 {
		return fmt.Errorf("split list is empty")
	}

	var errs []error
	for _, sp := range splits {
		if len(sp.Train) == 0 || len(sp.Test) == 0 {
			errs = append(errs, fmt.Errorf("split %d has an empty partition", sp.ID))
			continue
		}
		for _, idx := range sp.Train {
			if idx < 0 || idx >= rows {
				errs = append(errs, fmt.Errorf("split %d: train index %d out of range [0, %d)", sp.ID, idx, rows))
				break
			}
		}
		for _, idx := range sp.Test {
			if idx < 0 || idx >= rows {
				errs = append(errs, fmt.Errorf("split %d: test index %d out of range [0, %d)", sp.ID, idx, rows))
				break
			}
		}
	}

	return errors.Join(errs...)
}
