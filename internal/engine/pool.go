package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Pool runs tasks on a fixed number of worker slots. Each slot holds one
// task at a time; a slot is released the moment its task reaches a
// terminal outcome, including the timed-out case where the task's work
// continues abandoned in the background.
type Pool struct {
	workers int
	logger  *slog.Logger
}

func NewPool(workers int, log *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, logger: log}
}

func (p *Pool) Workers() int {
	return p.workers
}

// Run dispatches every task and calls onOutcome serially from the
// calling goroutine, so outcome consumers need no locking. It returns
// after every dispatched task has a terminal outcome. Tasks not yet
// dispatched when ctx is cancelled are dropped; tasks already dequeued
// finish as skipped.
func (p *Pool) Run(ctx context.Context, tasks []Task, run func(Task) *Outcome, onOutcome func(*Outcome)) {
	taskCh := make(chan Task)
	outCh := make(chan *Outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			p.worker(ctx, slot, taskCh, outCh, run)
		}(i)
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				p.logger.Warn("dispatch stopped", "reason", ctx.Err())
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	for out := range outCh {
		onOutcome(out)
	}
}

func (p *Pool) worker(ctx context.Context, slot int, taskCh <-chan Task, outCh chan<- *Outcome, run func(Task) *Outcome) {
	for task := range taskCh {
		if ctx.Err() != nil {
			outCh <- &Outcome{Task: task, Status: StatusSkipped, Err: ctx.Err()}
			continue
		}

		p.logger.Debug("task dispatched", "slot", slot, "task", task.String())
		outCh <- p.runOne(task, run)
	}
}

// runOne is the last line of defense: whatever run does, the slot gets
// back exactly one outcome.
func (p *Pool) runOne(task Task, run func(Task) *Outcome) (out *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task runner panicked", "task", task.String(), "panic", r)
			out = &Outcome{
				Task:   task,
				Status: StatusFailed,
				Err:    fmt.Errorf("task runner panicked: %v", r),
			}
		}
	}()

	out = run(task)
	if out == nil {
		out = &Outcome{
			Task:   task,
			Status: StatusFailed,
			Err:    fmt.Errorf("task runner returned no outcome"),
		}
	}
	return out
}
