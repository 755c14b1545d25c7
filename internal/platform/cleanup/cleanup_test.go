// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package cleanup_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slmaher/ExpenseReport/internal/platform/cleanup"
)

func newTestRunner(capacity int) *cleanup.Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cleanup.NewRunner(logger, capacity)
}

/*
TestRunner_ExecutesTasks verifies that enqueued tasks run exactly once and
that Stop drains the queue before returning.
*/
func TestRunner_ExecutesTasks(t *testing.T) {
	runner := newTestRunner(16)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		runner.Enqueue("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	runner.Stop()
	assert.Equal(t, int32(5), ran.Load())
}

/*
TestRunner_FailuresAreSwallowed verifies that a failing task never stops the
worker or affects later tasks.
*/
func TestRunner_FailuresAreSwallowed(t *testing.T) {
	runner := newTestRunner(16)

	var succeeded atomic.Bool
	runner.Enqueue("fails", func(ctx context.Context) error {
		return errors.New("object storage unavailable")
	})
	runner.Enqueue("succeeds", func(ctx context.Context) error {
		succeeded.Store(true)
		return nil
	})

	runner.Stop()
	assert.True(t, succeeded.Load())
}

/*
TestRunner_StopIsIdempotent verifies that calling Stop twice does not panic.
*/
func TestRunner_StopIsIdempotent(t *testing.T) {
	runner := newTestRunner(1)
	runner.Stop()
	runner.Stop()
}

/*
TestRunner_TaskReceivesDeadline verifies that tasks run under a bounded
context rather than context.Background.
*/
func TestRunner_TaskReceivesDeadline(t *testing.T) {
	runner := newTestRunner(1)

	var hadDeadline atomic.Bool
	runner.Enqueue("check_deadline", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		return nil
	})

	runner.Stop()
	assert.True(t, hadDeadline.Load())
}
