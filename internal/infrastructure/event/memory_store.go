package event

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// InMemoryEventStore keeps streams in process memory. It honours the same
// optimistic append contract as GormEventStore and can forward appended
// events to a publisher, which makes it usable as a single-process store.
type InMemoryEventStore struct {
	mu        sync.RWMutex
	streams   map[string][]shared.DomainEvent
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewInMemoryEventStore creates an empty store; publisher may be nil
func NewInMemoryEventStore(publisher shared.EventPublisher, logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:   make(map[string][]shared.DomainEvent),
		publisher: publisher,
		logger:    logger,
	}
}

// ReadStream returns a copy of the stream's events
func (s *InMemoryEventStore) ReadStream(ctx context.Context, stream string) ([]shared.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.streams[stream]), nil
}

// StreamVersion returns the number of events in the stream
func (s *InMemoryEventStore) StreamVersion(ctx context.Context, stream string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.streams[stream])), nil
}

// AppendToStream appends events when the stream is still at expectedVersion.
// Publication happens after the append; a failing subscriber is logged and
// never undoes the append.
func (s *InMemoryEventStore) AppendToStream(ctx context.Context, stream string, expectedVersion int64, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	head := int64(len(s.streams[stream]))
	if head != expectedVersion {
		s.mu.Unlock()
		return versionConflict(stream, expectedVersion, head)
	}
	s.streams[stream] = append(s.streams[stream], events...)
	s.mu.Unlock()

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish appended events",
			zap.String("stream", stream),
			zap.Int64("from_version", expectedVersion+1),
			zap.Error(err),
		)
	}
	return nil
}

// Streams returns the names of all non-empty streams, sorted
func (s *InMemoryEventStore) Streams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var (
	_ shared.EventStore          = (*InMemoryEventStore)(nil)
	_ shared.StreamVersionReader = (*InMemoryEventStore)(nil)
)
