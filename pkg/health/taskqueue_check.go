package health

import (
	"context"
	"fmt"

	"github.com/taskforge/core/pkg/taskqueue"
)

// DeadLetterBacklogCheck builds a CheckFunc that reports unhealthy once the
// dead-letter queue grows past maxBacklog, so the "detailed" readiness
// response can surface an operator-actionable signal instead of only a
// database round-trip.
func DeadLetterBacklogCheck(store taskqueue.Store, maxBacklog int) CheckFunc {
	return func(ctx context.Context) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		if n := stats[taskqueue.StatusDeadLetter]; n > maxBacklog {
			return fmt.Errorf("dead-letter backlog at %d exceeds %d", n, maxBacklog)
		}
		return nil
	}
}
