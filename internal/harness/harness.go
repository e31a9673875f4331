// Package harness runs the daemon's periodic tasks, the Go proxy for
// spec.md section 5's acquisition task (5ms period) and fusion task
// (200ms period). Each task runs in its own goroutine wrapped in a
// recover(), grounded on the original C firmware's
// vApplicationStackOverflowHook loop-forever-rather-than-crash posture: a
// panic in one task is logged and the task is NOT restarted automatically,
// since restarting mid-corrupted state is worse than a stuck NO_FIX — but
// it never takes any other task down with it.
package harness

import (
	"context"
	"log"
	"time"
)

// Task is one periodic unit of work, called once per tick until ctx is
// cancelled. nowMs is the millisecond tick harness.Run uses for staleness
// checks downstream, matching spec.md section 5's "free-running millisecond
// tick" external collaborator.
type Task func(ctx context.Context, nowMs int64)

// Run starts fn as a periodic goroutine at the given period, protected by
// recover(), and returns immediately. The returned channel is closed once
// the task goroutine has exited (either ctx cancellation or a panic).
func Run(ctx context.Context, name string, period time.Duration, fn Task, logger *log.Logger) (done <-chan struct{}) {
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("harness: task %q panicked: %v", name, r)
			}
		}()

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				fn(ctx, t.UnixMilli())
			}
		}
	}()
	return doneCh
}
