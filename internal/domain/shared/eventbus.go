package shared

import "context"

// EventHandler consumes domain events delivered by a bus or a replay.
// EventTypes lists the types it wants; nil or empty subscribes to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher hands events to their subscribers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages subscriptions. Explicit eventTypes override the
// handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is a publisher with a lifecycle
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes outbox rows for events inside the append
// transaction. tx is the store's *gorm.DB transaction; firstVersion is the
// stream version of events[0].
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, tx any, firstVersion int64, events ...DomainEvent) error
}
