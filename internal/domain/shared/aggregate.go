package shared

// AggregateRoot is the base interface for all event-sourced aggregate roots
type AggregateRoot interface {
	GetID() string
	GetVersion() int64
	StreamName() string
	GetUncommittedEvents() []DomainEvent
	MarkCommitted()
}

// EventSourcedAggregateRoot keeps the bookkeeping shared by event-sourced aggregates:
// the stream version the aggregate was rehydrated at and the events raised since.
// It never touches domain state; the embedding aggregate applies events itself.
type EventSourcedAggregateRoot struct {
	id                string
	streamPrefix      string
	version           int64
	uncommittedEvents []DomainEvent
}

// NewEventSourcedAggregateRoot creates an empty aggregate root for the given stream prefix
func NewEventSourcedAggregateRoot(streamPrefix, id string) EventSourcedAggregateRoot {
	return EventSourcedAggregateRoot{
		id:           id,
		streamPrefix: streamPrefix,
	}
}

// GetID returns the aggregate identifier
func (a *EventSourcedAggregateRoot) GetID() string {
	return a.id
}

// GetVersion returns the number of committed events reflected in the aggregate state.
// It is the expected stream version used for optimistic concurrency on save.
func (a *EventSourcedAggregateRoot) GetVersion() int64 {
	return a.version
}

// StreamName returns the deterministic stream name of this aggregate
func (a *EventSourcedAggregateRoot) StreamName() string {
	return a.streamPrefix + a.id
}

// GetUncommittedEvents returns the events raised since the last save, in order
func (a *EventSourcedAggregateRoot) GetUncommittedEvents() []DomainEvent {
	return a.uncommittedEvents
}

// HasUncommittedEvents returns true if events are waiting to be persisted
func (a *EventSourcedAggregateRoot) HasUncommittedEvents() bool {
	return len(a.uncommittedEvents) > 0
}

// MarkCommitted advances the version past the uncommitted events and clears them
func (a *EventSourcedAggregateRoot) MarkCommitted() {
	a.version += int64(len(a.uncommittedEvents))
	a.uncommittedEvents = nil
}

// RecordReplayed bumps the version for an event read back from the stream
func (a *EventSourcedAggregateRoot) RecordReplayed() {
	a.version++
}

// RecordUncommitted queues a freshly raised event for the next save
func (a *EventSourcedAggregateRoot) RecordUncommitted(event DomainEvent) {
	a.uncommittedEvents = append(a.uncommittedEvents, event)
}
