package engine

import "errors"

// Task-level failure categories. The executor wraps concrete errors with
// one of these so the aggregator and logs can classify outcomes without
// string matching.
var (
	// ErrRecipe marks split data too degenerate to preprocess at all.
	ErrRecipe = errors.New("preprocessing failed")

	// ErrFit marks a fit that exhausted the whole fallback cascade.
	ErrFit = errors.New("model fit failed")

	// ErrPredictShape marks a prediction whose length does not match the
	// test rows and cannot be corrected by scalar broadcast.
	ErrPredictShape = errors.New("prediction shape mismatch")

	// ErrTimeout marks a task abandoned at its deadline.
	ErrTimeout = errors.New("task deadline exceeded")

	// ErrPersist marks an artifact write failure. It degrades the
	// outcome's artifact path but never the scores.
	ErrPersist = errors.New("artifact persistence failed")
)
