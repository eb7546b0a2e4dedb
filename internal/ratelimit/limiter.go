package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

// Config holds request pacing configuration for the chain provider.
// MaxRequests per TimeWindow bounds throughput, MinDelay spaces out
// consecutive calls, and RetryDelay is the wait before the single retry
// Do performs on a rate-limit rejection.
type Config struct {
	MaxRequests int
	TimeWindow  time.Duration
	MinDelay    time.Duration
	BatchSize   uint64
	RetryDelay  time.Duration
}

// BlockRange is an inclusive block span
type BlockRange struct {
	From uint64
	To   uint64
}

// Limiter paces calls against the chain provider
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	// Acquire blocks until a request slot is available
	Acquire(ctx context.Context) error

	// Do acquires a slot and runs fn. A rate-limit rejection from fn is
	// retried once after RetryDelay; any other error is returned as is.
	Do(ctx context.Context, name string, fn func() error) error

	// SplitRange splits an inclusive block range into BatchSize spans
	SplitRange(from, to uint64) []BlockRange
}

type limiter struct {
	cfg   Config
	clock adapter.Clock
	pacer *rate.Limiter

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// NewLimiter creates a limiter, applying defaults for zero values
func NewLimiter(cfg Config, clock adapter.Clock) Limiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 1000
	}
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1000
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	l := &limiter{
		cfg:         cfg,
		clock:       clock,
		windowStart: clock.Now(),
	}
	if cfg.MinDelay > 0 {
		l.pacer = rate.NewLimiter(rate.Every(cfg.MinDelay), 1)
	}
	return l
}

// Acquire blocks until a request slot is available
func (l *limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.clock.Now()
	if now.Sub(l.windowStart) >= l.cfg.TimeWindow {
		l.windowStart = now
		l.count = 0
	}
	if l.count >= l.cfg.MaxRequests {
		// Window exhausted, sleep out the remainder
		wait := l.cfg.TimeWindow - now.Sub(l.windowStart)
		l.mu.Unlock()
		if wait > 0 {
			logger.DebugCtx(ctx, "Request window exhausted, waiting",
				zap.Duration("wait", wait))
			l.clock.Sleep(wait)
		}
		l.mu.Lock()
		l.windowStart = l.clock.Now()
		l.count = 0
	}
	l.count++
	l.mu.Unlock()

	if l.pacer != nil {
		return l.pacer.Wait(ctx)
	}
	return nil
}

// Do acquires a slot and runs fn with a single rate-limit retry
func (l *limiter) Do(ctx context.Context, name string, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}

	err := fn()
	if err == nil || !IsRateLimitError(err) {
		return err
	}

	logger.WarnCtx(ctx, "Provider rate limited, retrying after delay",
		zap.String("operation", name),
		zap.Duration("delay", l.cfg.RetryDelay),
		zap.Error(err))
	l.clock.Sleep(l.cfg.RetryDelay)

	if err := l.Acquire(ctx); err != nil {
		return err
	}
	return fn()
}

// SplitRange splits an inclusive block range into BatchSize spans
func (l *limiter) SplitRange(from, to uint64) []BlockRange {
	if to < from {
		return nil
	}

	var ranges []BlockRange
	for start := from; start <= to; start += l.cfg.BatchSize {
		end := start + l.cfg.BatchSize - 1
		if end > to {
			end = to
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
	}
	return ranges
}

// IsRateLimitError reports whether the error is a provider rate-limit rejection
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429")
}
