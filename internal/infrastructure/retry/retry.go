package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// Config controls how an operation is retried
type Config struct {
	// MaxAttempts counts the first call. Values below 2 disable retrying.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool

	// Retryable decides whether an error is worth another attempt.
	// Nil retries every error.
	Retryable func(error) bool

	// OnRetry is called before sleeping with the error and the delay
	OnRetry func(err error, delay time.Duration)
}

// DefaultConfig retries concurrency conflicts up to five times
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		Retryable:    IsConcurrencyConflict,
	}
}

// IsConcurrencyConflict reports whether err is an optimistic concurrency conflict
func IsConcurrencyConflict(err error) bool {
	return shared.IsConcurrencyConflict(err)
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. The last error is returned unwrapped.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 2 {
		return fn(ctx)
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := fn(ctx)
		if err != nil && cfg.Retryable != nil && !cfg.Retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			if cfg.OnRetry != nil {
				cfg.OnRetry(err, delay)
			}
		}),
	)
	return err
}

func (c Config) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.InitialDelay > 0 {
		b.InitialInterval = c.InitialDelay
	}
	if c.MaxDelay > 0 {
		b.MaxInterval = c.MaxDelay
	}
	if c.Multiplier > 1 {
		b.Multiplier = c.Multiplier
	}
	if !c.Jitter {
		b.RandomizationFactor = 0
	}
	return b
}
