package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

func TestPolicyDelay(t *testing.T) {
	p := NewPolicy(5*time.Second, 30*time.Second, 5)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 5 * time.Second},
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 30 * time.Second}, // capped, 40s > max
		{4, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestPolicyDefaults(t *testing.T) {
	p := NewPolicy(0, 0, 0)
	assert.Equal(t, 5*time.Second, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, 5, p.MaxAttempts)
}

func TestRunSucceedsAfterFailures(t *testing.T) {
	p := NewPolicy(time.Millisecond, 2*time.Millisecond, 5)

	calls := 0
	err := p.Run(context.Background(), "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunExhaustsAttempts(t *testing.T) {
	p := NewPolicy(time.Millisecond, 2*time.Millisecond, 3)

	calls := 0
	sentinel := errors.New("always fails")
	err := p.Run(context.Background(), "test", func() error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRunStopsOnPermanentError(t *testing.T) {
	p := NewPolicy(time.Millisecond, 2*time.Millisecond, 5)

	calls := 0
	sentinel := errors.New("fatal")
	err := p.Run(context.Background(), "test", func() error {
		calls++
		return Permanent(sentinel)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRunRespectsContextCancellation(t *testing.T) {
	p := NewPolicy(time.Hour, time.Hour, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, "test", func() error {
		return errors.New("transient")
	})

	require.Error(t, err)
}
