package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// schemaVersioned is implemented by events embedding shared.BaseDomainEvent
type schemaVersioned interface {
	SetSchemaVersion(version int)
}

type registeredEvent struct {
	typ            reflect.Type
	currentVersion int
	upgraders      map[int]EventUpgrader
}

// EventSerializer handles JSON serialization/deserialization of domain events.
// Every stored payload carries its schema version; older payloads are upgraded
// through the registered upgrader chain before being decoded.
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]*registeredEvent
	logger   *zap.Logger
}

// NewEventSerializer creates a new event serializer
func NewEventSerializer(logger *zap.Logger) *EventSerializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventSerializer{
		registry: make(map[string]*registeredEvent),
		logger:   logger,
	}
}

// Register registers an event type at schema version 1
func (s *EventSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	// A version 1 registration has no upgrader chain to validate.
	_ = s.RegisterVersioned(eventType, eventInstance, 1)
}

// RegisterVersioned registers an event type whose current schema is currentVersion.
// One upgrader per older version is required so that any stored payload can be read.
func (s *EventSerializer) RegisterVersioned(eventType string, eventInstance shared.DomainEvent, currentVersion int, upgraders ...EventUpgrader) error {
	chain := make(map[int]EventUpgrader, len(upgraders))
	for _, u := range upgraders {
		chain[u.SourceVersion()] = u
	}
	for v := 1; v < currentVersion; v++ {
		if _, ok := chain[v]; !ok {
			return fmt.Errorf("missing upgrader for %s v%d -> v%d", eventType, v, v+1)
		}
	}

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[eventType] = &registeredEvent{
		typ:            t,
		currentVersion: currentVersion,
		upgraders:      chain,
	}
	return nil
}

// Serialize serializes a domain event to JSON bytes, stamped with its current schema version
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	s.mu.RLock()
	reg, ok := s.registry[event.EventType()]
	s.mu.RUnlock()

	if ok {
		if versioned, isVersioned := event.(schemaVersioned); isVersioned {
			versioned.SetSchemaVersion(reg.currentVersion)
		}
	}
	return json.Marshal(event)
}

// Deserialize deserializes JSON bytes to a domain event, upgrading old payloads first
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	reg, ok := s.registry[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	payload := data
	version := ExtractVersion(data)
	if version < reg.currentVersion {
		s.logger.Debug("upgrading event payload",
			zap.String("event_type", eventType),
			zap.Int("from_version", version),
			zap.Int("to_version", reg.currentVersion),
		)
		for v := version; v < reg.currentVersion; v++ {
			upgraded, err := reg.upgraders[v].Upgrade(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to upgrade %s: %w", eventType, err)
			}
			payload = upgraded
		}
	}

	eventPtr := reflect.New(reg.typ).Interface()
	if err := json.Unmarshal(payload, eventPtr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("deserialized object does not implement DomainEvent")
	}
	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}

// CurrentVersion returns the schema version new payloads of eventType are written with
func (s *EventSerializer) CurrentVersion(eventType string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registry[eventType]
	if !ok {
		return 0, false
	}
	return reg.currentVersion, true
}

// RegisteredTypes returns all registered event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.registry))
	for t := range s.registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
