package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appownership "github.com/GremaudMatthieu/Baillr-sub000/internal/application/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/retry"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/telemetry"
)

// DueAgreements lists the consent agreements that lapsed at or before now
type DueAgreements interface {
	Due(now time.Time) []appownership.TrackedAgreement
}

// ExpiryCommandHandler marks one bank connection as expired
type ExpiryCommandHandler interface {
	Handle(ctx context.Context, cmd appownership.MarkBankConnectionExpiredCommand) error
}

// ExpirySweeperConfig holds configuration for the connection expiry sweeper
type ExpirySweeperConfig struct {
	Interval time.Duration
	Retry    retry.Config
}

// DefaultExpirySweeperConfig sweeps hourly and retries conflicts with backoff
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		Interval: time.Hour,
		Retry:    retry.DefaultConfig(),
	}
}

// SweepResult summarises one sweep
type SweepResult struct {
	Due     int
	Expired int
	Failed  int
}

// ConnectionExpirySweeper periodically expires bank connections whose agreement lapsed.
// Each command reloads the entity, so a retried attempt never reuses a stale aggregate.
type ConnectionExpirySweeper struct {
	agreements DueAgreements
	handler    ExpiryCommandHandler
	config     ExpirySweeperConfig
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// ExpirySweeperOption customises a ConnectionExpirySweeper
type ExpirySweeperOption func(*ConnectionExpirySweeper)

// WithSweeperClock replaces the wall clock used to decide which agreements are due
func WithSweeperClock(now func() time.Time) ExpirySweeperOption {
	return func(s *ConnectionExpirySweeper) {
		s.now = now
	}
}

// NewConnectionExpirySweeper creates a new sweeper
func NewConnectionExpirySweeper(
	agreements DueAgreements,
	handler ExpiryCommandHandler,
	config ExpirySweeperConfig,
	logger *zap.Logger,
	opts ...ExpirySweeperOption,
) *ConnectionExpirySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultExpirySweeperConfig().Interval
	}
	if config.Retry.Retryable == nil {
		config.Retry.Retryable = retry.IsConcurrencyConflict
	}

	s := &ConnectionExpirySweeper{
		agreements: agreements,
		handler:    handler,
		config:     config,
		logger:     logger.Named("expiry_sweeper"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs a sweep immediately and then on every interval
func (s *ConnectionExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.isRunning = true

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Connection expiry sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels the loop and waits for the current sweep, bounded by ctx
func (s *ConnectionExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.isRunning = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Connection expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns whether the sweeper loop is active
func (s *ConnectionExpirySweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *ConnectionExpirySweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce dispatches MarkBankConnectionExpired for every due agreement.
// A failure on one connection does not stop the others.
func (s *ConnectionExpirySweeper) SweepOnce(ctx context.Context) SweepResult {
	now := s.now()
	due := s.agreements.Due(now)
	result := SweepResult{Due: len(due)}
	if len(due) == 0 {
		return result
	}

	ctx, span := telemetry.StartSpan(ctx, "connection.sweep", "agreements.due", len(due))
	defer span.End()

	for _, agreement := range due {
		if ctx.Err() != nil {
			break
		}
		if err := s.expire(ctx, agreement); err != nil {
			result.Failed++
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to expire bank connection",
				zap.String("entity_id", agreement.EntityID),
				zap.String("connection_id", agreement.ConnectionID),
				zap.String("agreement_id", agreement.AgreementID),
				zap.Error(err),
			)
			continue
		}
		result.Expired++
	}

	s.logger.Info("Connection expiry sweep completed",
		zap.Int("due", result.Due),
		zap.Int("expired", result.Expired),
		zap.Int("failed", result.Failed),
	)
	return result
}

func (s *ConnectionExpirySweeper) expire(ctx context.Context, agreement appownership.TrackedAgreement) error {
	cfg := s.config.Retry
	cfg.OnRetry = func(err error, delay time.Duration) {
		s.logger.Warn("Retrying bank connection expiry",
			zap.String("entity_id", agreement.EntityID),
			zap.String("connection_id", agreement.ConnectionID),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	cmd := appownership.MarkBankConnectionExpiredCommand{
		EntityID:     agreement.EntityID,
		ConnectionID: agreement.ConnectionID,
	}
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		return s.handler.Handle(ctx, cmd)
	})
}
