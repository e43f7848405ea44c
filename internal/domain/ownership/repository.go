package ownership

import "context"

// StreamPrefix prefixes the id of an entity to name its event stream
const StreamPrefix = "entity_"

// StreamName returns the event stream name of the entity with the given id
func StreamName(entityID string) string {
	return StreamPrefix + entityID
}

// EntityRepository loads and saves Entity aggregates from their event stream.
//
// Load never fails for an unknown id: it returns an aggregate that is not created yet, so
// Create can be called on it. Save appends the uncommitted events right after the version the
// aggregate was loaded at and marks them committed; a concurrent append makes it fail with an
// error matching shared.ErrConcurrencyConflict.
type EntityRepository interface {
	Load(ctx context.Context, id string) (*Entity, error)
	Save(ctx context.Context, entity *Entity) error
}
