package engine

import (
	"fmt"
	"log/slog"
	"time"
)

// runGuarded executes one task under its deadline. On timeout the task's
// goroutine is abandoned, not interrupted: it keeps running against its
// own private data copies while the worker slot moves on. The buffered
// channel lets the abandoned goroutine deliver its late result into the
// void instead of blocking forever.
func runGuarded(task Task, timeout time.Duration, run func() *Outcome, log *slog.Logger) *Outcome {
	results := make(chan *Outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- &Outcome{
					Task:     task,
					Status:   StatusFailed,
					Duration: time.Since(start),
					Err:      fmt.Errorf("task panicked: %v", r),
				}
			}
		}()
		results <- run()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-results:
		return out
	case <-timer.C:
		log.Error("task deadline exceeded, abandoning",
			"task", task.String(),
			"timeout", timeout,
		)
		return &Outcome{
			Task:     task,
			Status:   StatusTimedOut,
			Duration: timeout,
			Err:      ErrTimeout,
		}
	}
}
