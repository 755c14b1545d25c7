// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

/*
Package cleanup provides a post-commit, best-effort background task runner.

It exists for exactly one pattern: after a database commit succeeds, a stale
file in object storage should be removed, but the client-visible result must
never wait for, or fail because of, that removal.

Contract:

  - Enqueue after commit, never before: a failed deletion must not be able to
    roll back or outrun a successful record write.
  - At most one attempt per task. Failures are logged and dropped, never
    retried and never surfaced to the original caller.
  - Enqueue never blocks the request path. If the queue is full, the task is
    dropped with a log entry.
*/
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// taskTimeout bounds a single cleanup attempt so a hung object-store call
// cannot pin the worker forever.
const taskTimeout = 30 * time.Second

// Task is a single named unit of best-effort work.
type Task struct {
	// Name identifies the task in log output (e.g. "delete_old_avatar").
	Name string

	// Run performs the work. Its error is logged, never propagated.
	Run func(ctx context.Context) error
}

// Runner executes enqueued tasks sequentially on a single background goroutine.
type Runner struct {
	tasks  chan Task
	logger *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// NewRunner constructs a Runner with the given queue capacity and starts its
// worker goroutine.
func NewRunner(logger *slog.Logger, capacity int) *Runner {
	runner := &Runner{
		tasks:  make(chan Task, capacity),
		logger: logger,
		done:   make(chan struct{}),
	}

	go runner.work()

	return runner
}

// Enqueue schedules a task for a single background attempt.
//
// It never blocks: when the queue is full the task is dropped, which is an
// acceptable outcome for best-effort file cleanup (an orphaned object costs
// storage, not correctness).
func (runner *Runner) Enqueue(name string, run func(ctx context.Context) error) {
	select {
	case runner.tasks <- Task{Name: name, Run: run}:
	default:
		runner.logger.Warn("cleanup_task_dropped_queue_full", slog.String("task", name))
	}
}

// Stop drains already-enqueued tasks and then stops the worker.
// It is safe to call more than once.
func (runner *Runner) Stop() {
	runner.stopOnce.Do(func() {
		close(runner.tasks)
		<-runner.done
	})
}

// work is the single consumer loop.
func (runner *Runner) work() {
	defer close(runner.done)

	for task := range runner.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)

		if err := task.Run(ctx); err != nil {
			// Single attempt, log-and-drop. Never retried.
			runner.logger.Warn("cleanup_task_failed",
				slog.String("task", task.Name),
				slog.Any("error", err),
			)
		} else {
			runner.logger.Debug("cleanup_task_finished", slog.String("task", task.Name))
		}

		cancel()
	}
}
