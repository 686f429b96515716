package health_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core/pkg/health"
	"github.com/taskforge/core/pkg/taskqueue"
)

type stubStore struct {
	taskqueue.Store
	stats taskqueue.Stats
	err   error
}

func (s *stubStore) Stats(context.Context) (taskqueue.Stats, error) {
	return s.stats, s.err
}

func TestDeadLetterBacklogCheck(t *testing.T) {
	t.Parallel()

	store := &stubStore{stats: taskqueue.Stats{taskqueue.StatusDeadLetter: 5}}
	check := health.DeadLetterBacklogCheck(store, 10)
	require.NoError(t, check(context.Background()))

	store.stats[taskqueue.StatusDeadLetter] = 11
	assert.Error(t, check(context.Background()))
}

func TestDeadLetterBacklogCheck_PropagatesStatsError(t *testing.T) {
	t.Parallel()

	store := &stubStore{err: taskqueue.ErrNotFound}
	check := health.DeadLetterBacklogCheck(store, 10)
	assert.Error(t, check(context.Background()))
}
