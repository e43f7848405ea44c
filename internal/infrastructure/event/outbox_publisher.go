package event

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// OutboxPublisher writes appended events to the outbox inside the append transaction
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// OutboxPublisherOption customises an OutboxPublisher
type OutboxPublisherOption func(*OutboxPublisher)

// WithMaxRetries sets how many failed relays an entry survives before it is dead.
// Non-positive values keep shared.DefaultMaxRetries.
func WithMaxRetries(n int) OutboxPublisherOption {
	return func(p *OutboxPublisher) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer, opts ...OutboxPublisherOption) *OutboxPublisher {
	p := &OutboxPublisher{serializer: serializer, maxRetries: shared.DefaultMaxRetries}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishWithTx stores one outbox entry per event; events[i] sits at stream version firstVersion+i
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, firstVersion int64, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for i, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", event.EventType(), err)
		}
		entry := shared.NewOutboxEntry(event, firstVersion+int64(i), payload)
		entry.MaxRetries = p.maxRetries
		entries = append(entries, entry)
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver; tx must be a *gorm.DB transaction
func (p *OutboxPublisher) SaveEvents(ctx context.Context, tx any, firstVersion int64, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox needs a *gorm.DB transaction, got %T", tx)
	}
	return p.PublishWithTx(ctx, gormTx, firstVersion, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
