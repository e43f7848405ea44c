package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestDo_SucceedsAfterConflicts(t *testing.T) {
	var notified []time.Duration
	cfg := fastConfig()
	cfg.OnRetry = func(_ error, delay time.Duration) { notified = append(notified, delay) }

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return shared.NewConcurrencyConflictError("stale")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, notified, 2)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return shared.NewNotFoundError("entity not found")
	})

	assert.True(t, shared.IsNotFound(err), "permanent errors come back unwrapped")
	assert.Equal(t, 1, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 3

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return shared.NewConcurrencyConflictError("stale")
	})

	assert.True(t, shared.IsConcurrencyConflict(err))
	assert.Equal(t, 3, calls)
}

func TestDo_SingleAttempt(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 1

	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDo_NilPredicateRetriesEverything(t *testing.T) {
	cfg := fastConfig()
	cfg.Retryable = nil

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, cfg, func(context.Context) error {
		calls++
		cancel()
		return shared.NewConcurrencyConflictError("stale")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
