package taskqueue

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// BackoffPolicy computes the delay before a task becomes runnable again
// after a transient failure: backoff(n) = min(cap, base * 2^(n-1)) * (1 +
// U[-0.25, +0.25]). The jitter draw is seeded from the task id and
// attempt, so it is reproducible for a given task; DisableJitter removes
// jitter altogether (a factor of exactly 1.0) for deterministic tests.
type BackoffPolicy struct {
	Base          time.Duration
	Cap           time.Duration
	DisableJitter bool
}

// DefaultBackoffPolicy returns the spec's default base (10s) and cap
// (10m).
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{Base: 10 * time.Second, Cap: 10 * time.Minute}
}

// Delay returns the backoff duration for the nth attempt (1-indexed) of
// taskID.
func (p BackoffPolicy) Delay(taskID uuid.UUID, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	raw := float64(p.Base) * math.Pow(2, float64(attempt-1))
	capped := math.Min(raw, float64(p.Cap))

	jitter := p.jitterFactor(taskID, attempt)
	return time.Duration(capped * jitter)
}

// jitterFactor returns a value in [0.75, 1.25], or exactly 1.0 when jitter
// is disabled so backoff timing is reproducible in tests. The random
// source is seeded from taskID so that two otherwise-identical tasks
// retrying at the same nominal instant don't land on exactly the same
// jittered delay.
func (p BackoffPolicy) jitterFactor(taskID uuid.UUID, attempt int) float64 {
	if p.DisableJitter {
		return 1.0
	}

	seed := int64(0)
	for i, b := range taskID {
		seed = seed*31 + int64(b) + int64(i)
	}
	seed += int64(attempt)

	r := rand.New(rand.NewSource(seed))
	return 1.0 + (r.Float64()*0.5 - 0.25)
}
