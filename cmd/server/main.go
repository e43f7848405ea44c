package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appownership "github.com/GremaudMatthieu/Baillr-sub000/internal/application/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/cache"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/config"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/event"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/logger"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/migration"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/persistence"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/retry"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/scheduler"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/telemetry"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.App.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Worker exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting ownership worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("database_driver", cfg.Database.Driver),
	)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	if err := migrate(&cfg.Database, log); err != nil {
		return err
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	serializer := event.NewEventSerializer(log)
	event.RegisterOwnershipEvents(serializer)

	outboxPublisher := event.NewOutboxPublisher(serializer, event.WithMaxRetries(cfg.Event.MaxRetries))
	eventStore := event.NewGormEventStore(db.DB, serializer,
		event.WithOutbox(outboxPublisher),
		event.WithStoreLogger(log),
	)
	handlers := appownership.NewHandlers(persistence.NewEntityRepository(eventStore, log))

	// Rebuild the tracker before the relay starts delivering new events
	tracker := appownership.NewAgreementTracker()
	replayed, err := eventStore.Replay(ctx, tracker, cfg.Event.BatchSize)
	if err != nil {
		return fmt.Errorf("rebuild agreement tracker: %w", err)
	}
	log.Info("Agreement tracker rebuilt", zap.Int("events", replayed), zap.Int("tracked", tracker.Len()))

	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Idempotency.FallbackToMemory),
	).CreateStore(ctx)
	if err != nil {
		return fmt.Errorf("create idempotency store: %w", err)
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	eventBus.Subscribe(event.NewIdempotentHandler("agreement_tracker", tracker, idempotencyStore, log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		}),
	))
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer shutdown(log, "event bus", eventBus.Stop)

	if cfg.Event.ProcessorEnabled {
		outboxProcessor := event.NewOutboxProcessor(event.NewGormOutboxRepository(db.DB), eventBus, serializer,
			event.OutboxProcessorConfig{
				BatchSize:        cfg.Event.BatchSize,
				PollInterval:     cfg.Event.PollInterval,
				CleanupEnabled:   cfg.Event.CleanupEnabled,
				CleanupRetention: cfg.Event.CleanupRetention,
				CleanupInterval:  cfg.Event.CleanupInterval,
			}, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			return fmt.Errorf("start outbox processor: %w", err)
		}
		defer shutdown(log, "outbox processor", outboxProcessor.Stop)
	} else {
		log.Warn("Outbox processor disabled; appended events will not be relayed")
	}

	if cfg.Sweeper.Enabled {
		retryCfg := retry.DefaultConfig()
		retryCfg.MaxAttempts = cfg.Sweeper.MaxAttempts
		retryCfg.InitialDelay = cfg.Sweeper.InitialDelay
		retryCfg.MaxDelay = cfg.Sweeper.MaxDelay

		sweeper := scheduler.NewConnectionExpirySweeper(tracker, handlers.MarkBankConnectionExpired,
			scheduler.ExpirySweeperConfig{
				Interval: cfg.Sweeper.Interval,
				Retry:    retryCfg,
			}, log)
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("start expiry sweeper: %w", err)
		}
		defer shutdown(log, "expiry sweeper", sweeper.Stop)
	}

	log.Info("Ownership worker running")
	<-ctx.Done()
	log.Info("Shutting down worker...")
	return nil
}

// migrate brings the schema up to date on a dedicated connection
func migrate(cfg *config.DatabaseConfig, log *zap.Logger) error {
	sqlDB, err := migration.OpenDB(cfg)
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, cfg.Driver, log)
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// shutdown stops a component within shutdownTimeout, independently of the cancelled run context
func shutdown(log *zap.Logger, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
