package shared

import "context"

// EventStore appends to and reads from per-aggregate event streams.
//
// ReadStream returns every committed event of the stream in append order; an unknown
// stream yields an empty slice and no error. AppendToStream is atomic: either all events
// land right after expectedVersion or none do. When the stream head is not
// expectedVersion the returned error matches ErrConcurrencyConflict.
type EventStore interface {
	ReadStream(ctx context.Context, stream string) ([]DomainEvent, error)
	AppendToStream(ctx context.Context, stream string, expectedVersion int64, events ...DomainEvent) error
}

// StreamVersionReader is implemented by stores able to report a stream head cheaply
type StreamVersionReader interface {
	StreamVersion(ctx context.Context, stream string) (int64, error)
}
