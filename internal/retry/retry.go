package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

// Policy is the single retry schedule shared by every component that talks to
// the chain: connection dial, chunked log queries, and transaction submission.
// Delays follow min(BaseDelay * 2^attempt, MaxDelay) with no jitter so the
// schedule is deterministic and testable.
type Policy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// NewPolicy creates a retry policy, applying defaults for zero values
func NewPolicy(baseDelay, maxDelay time.Duration, maxAttempts int) Policy {
	if baseDelay <= 0 {
		baseDelay = 5 * time.Second
	}
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return Policy{
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		MaxAttempts: maxAttempts,
	}
}

// Delay returns the backoff delay before the given retry attempt (0-based)
func (p Policy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// backOff builds the cenkalti backoff schedule for this policy
func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	// Attempts, not elapsed time, bound the schedule
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx) //nolint:gosec,G115 // MaxAttempts is validated positive
}

// Run executes op, retrying on error until the policy is exhausted or the
// context is canceled. The last error is returned.
func (p Policy) Run(ctx context.Context, name string, op func() error) error {
	attempt := 0
	return backoff.RetryNotify(op, p.backOff(ctx), func(err error, next time.Duration) {
		attempt++
		logger.WarnCtx(ctx, "Operation failed, retrying",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Duration("next_delay", next),
			zap.Error(err))
	})
}

// Permanent marks an error as non-retryable so Run stops immediately
func Permanent(err error) error {
	return backoff.Permanent(err)
}
