package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// StoredEvent is one row of an event stream
type StoredEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	StreamID      string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_entity_events_stream_version,priority:1"`
	Version       int64     `gorm:"not null;uniqueIndex:idx_entity_events_stream_version,priority:2"`
	EventType     string    `gorm:"type:varchar(100);not null"`
	AggregateID   string    `gorm:"type:varchar(100);not null;index"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	Payload       []byte    `gorm:"not null"`
	OccurredAt    time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (StoredEvent) TableName() string {
	return "entity_events"
}

// GormEventStore is the relational event store. Appends are optimistic: the stream
// head is checked inside the transaction and the unique (stream_id, version) index
// catches writers racing past that check. When an outbox saver is configured the
// appended events are written to the outbox in the same transaction.
type GormEventStore struct {
	db         *gorm.DB
	serializer *EventSerializer
	outbox     shared.OutboxEventSaver
	logger     *zap.Logger
}

// GormEventStoreOption configures a GormEventStore
type GormEventStoreOption func(*GormEventStore)

// WithOutbox enables the transactional outbox
func WithOutbox(saver shared.OutboxEventSaver) GormEventStoreOption {
	return func(s *GormEventStore) {
		s.outbox = saver
	}
}

// WithStoreLogger sets the logger
func WithStoreLogger(logger *zap.Logger) GormEventStoreOption {
	return func(s *GormEventStore) {
		s.logger = logger
	}
}

// NewGormEventStore creates a new GORM-backed event store
func NewGormEventStore(db *gorm.DB, serializer *EventSerializer, opts ...GormEventStoreOption) *GormEventStore {
	s := &GormEventStore{
		db:         db,
		serializer: serializer,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadStream returns the stream's events in version order
func (s *GormEventStore) ReadStream(ctx context.Context, stream string) ([]shared.DomainEvent, error) {
	var rows []StoredEvent
	if err := s.db.WithContext(ctx).
		Where("stream_id = ?", stream).
		Order("version ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", stream, err)
	}

	events := make([]shared.DomainEvent, 0, len(rows))
	for _, row := range rows {
		event, err := s.serializer.Deserialize(row.EventType, row.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s v%d: %w", stream, row.Version, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// StreamVersion returns the number of events in the stream
func (s *GormEventStore) StreamVersion(ctx context.Context, stream string) (int64, error) {
	return streamHead(s.db.WithContext(ctx), stream)
}

// AppendToStream appends events right after expectedVersion, atomically
func (s *GormEventStore) AppendToStream(ctx context.Context, stream string, expectedVersion int64, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]StoredEvent, 0, len(events))
	now := time.Now()
	for i, event := range events {
		payload, err := s.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", event.EventType(), err)
		}
		rows = append(rows, StoredEvent{
			ID:            event.EventID(),
			StreamID:      stream,
			Version:       expectedVersion + int64(i) + 1,
			EventType:     event.EventType(),
			AggregateID:   event.AggregateID(),
			AggregateType: event.AggregateType(),
			Payload:       payload,
			OccurredAt:    event.OccurredAt(),
			CreatedAt:     now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := streamHead(tx, stream)
		if err != nil {
			return err
		}
		if head != expectedVersion {
			return versionConflict(stream, expectedVersion, head)
		}

		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.NewConcurrencyConflictError(
					fmt.Sprintf("Stream %s was modified concurrently", stream))
			}
			return fmt.Errorf("failed to append to stream %s: %w", stream, err)
		}

		if s.outbox != nil {
			if err := s.outbox.SaveEvents(ctx, tx, expectedVersion+1, events...); err != nil {
				return fmt.Errorf("failed to write outbox: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("events appended",
		zap.String("stream", stream),
		zap.Int64("from_version", expectedVersion+1),
		zap.Int("events", len(events)),
	)
	return nil
}

// Replay feeds every stored event of the handler's types to handler, stream by
// stream in version order. It returns the number of events delivered.
func (s *GormEventStore) Replay(ctx context.Context, handler shared.EventHandler, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	types := handler.EventTypes()
	if len(types) == 0 {
		return 0, nil
	}

	var (
		delivered   int
		lastStream  string
		lastVersion int64
	)
	for {
		var rows []StoredEvent
		if err := s.db.WithContext(ctx).
			Where("event_type IN ?", types).
			Where("stream_id > ? OR (stream_id = ? AND version > ?)", lastStream, lastStream, lastVersion).
			Order("stream_id ASC, version ASC").
			Limit(batchSize).
			Find(&rows).Error; err != nil {
			return delivered, fmt.Errorf("failed to read events for replay: %w", err)
		}

		for _, row := range rows {
			event, err := s.serializer.Deserialize(row.EventType, row.Payload)
			if err != nil {
				return delivered, fmt.Errorf("failed to decode %s v%d: %w", row.StreamID, row.Version, err)
			}
			if err := handler.Handle(ctx, event); err != nil {
				return delivered, fmt.Errorf("replay %s v%d: %w", row.StreamID, row.Version, err)
			}
			delivered++
		}

		if len(rows) < batchSize {
			break
		}
		last := rows[len(rows)-1]
		lastStream, lastVersion = last.StreamID, last.Version
	}

	s.logger.Info("events replayed", zap.Int("events", delivered), zap.Strings("event_types", types))
	return delivered, nil
}

func streamHead(db *gorm.DB, stream string) (int64, error) {
	var head int64
	if err := db.Model(&StoredEvent{}).
		Where("stream_id = ?", stream).
		Select("COALESCE(MAX(version), 0)").
		Scan(&head).Error; err != nil {
		return 0, fmt.Errorf("failed to read head of stream %s: %w", stream, err)
	}
	return head, nil
}

func versionConflict(stream string, expected, actual int64) error {
	return shared.NewConcurrencyConflictError(
		fmt.Sprintf("Stream %s is at version %d, expected %d", stream, actual, expected))
}

// isUniqueViolation recognises a duplicate (stream_id, version) row. gorm translates
// it when TranslateError is on; the message check covers connections opened without it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

var (
	_ shared.EventStore          = (*GormEventStore)(nil)
	_ shared.StreamVersionReader = (*GormEventStore)(nil)
)
