package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/logger"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/telemetry"
)

// EntityRepository implements ownership.EntityRepository on top of an event store.
// Load replays the entity stream; Save appends the uncommitted events at the
// version the entity was loaded at.
type EntityRepository struct {
	store  shared.EventStore
	logger *zap.Logger
}

var _ ownership.EntityRepository = (*EntityRepository)(nil)

// NewEntityRepository creates an EntityRepository over store
func NewEntityRepository(store shared.EventStore, zapLogger *zap.Logger) *EntityRepository {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &EntityRepository{
		store:  store,
		logger: zapLogger.Named("entity_repository"),
	}
}

// Load rebuilds the entity from its stream; an unknown id yields an entity not created yet
func (r *EntityRepository) Load(ctx context.Context, id string) (*ownership.Entity, error) {
	stream := ownership.StreamName(id)
	ctx, span := telemetry.StartSpan(ctx, "entity.load", telemetry.AttrEntityID, id)
	defer span.End()

	history, err := r.store.ReadStream(ctx, stream)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("read stream %s: %w", stream, err)
	}

	entity, err := ownership.RehydrateEntity(id, history)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("replay stream %s: %w", stream, err)
	}

	telemetry.SetAttributes(span, telemetry.AttrStreamVersion, entity.Version())
	logger.Enrich(ctx, r.logger).Debug("entity loaded",
		zap.String("entity_id", id),
		zap.String("stream", stream),
		zap.Int64("version", entity.Version()),
	)
	return entity, nil
}

// Save appends the entity's uncommitted events and marks them committed.
// A save without pending events does not touch the store.
func (r *EntityRepository) Save(ctx context.Context, entity *ownership.Entity) error {
	events := entity.GetUncommittedEvents()
	if len(events) == 0 {
		return nil
	}

	stream := entity.StreamName()
	expected := entity.GetVersion()
	ctx, span := telemetry.StartSpan(ctx, "entity.save",
		telemetry.AttrEntityID, entity.ID(),
		telemetry.AttrStreamVersion, expected,
		telemetry.AttrEventsCount, len(events),
	)
	defer span.End()
	log := logger.Enrich(ctx, r.logger)

	if err := r.store.AppendToStream(ctx, stream, expected, events...); err != nil {
		telemetry.RecordError(span, err)
		if shared.IsConcurrencyConflict(err) {
			log.Warn("entity save conflict",
				zap.String("entity_id", entity.ID()),
				zap.String("stream", stream),
				zap.Int64("expected_version", expected),
				zap.Error(err),
			)
			return err
		}
		return fmt.Errorf("append to stream %s: %w", stream, err)
	}

	entity.MarkCommitted()
	log.Debug("entity saved",
		zap.String("entity_id", entity.ID()),
		zap.String("stream", stream),
		zap.Int64("version", entity.Version()),
		zap.Int("events", len(events)),
	)
	return nil
}
