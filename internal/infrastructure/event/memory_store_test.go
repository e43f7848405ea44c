package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

func TestInMemoryEventStore(t *testing.T) {
	ctx := context.Background()

	t.Run("appends and reads in order", func(t *testing.T) {
		store := NewInMemoryEventStore(nil, nil)
		created := createdEvent(testEntityID)
		delay := ownership.NewEntityLatePaymentDelayConfiguredEvent(testEntityID, 10)

		require.NoError(t, store.AppendToStream(ctx, testStream, 0, created))
		require.NoError(t, store.AppendToStream(ctx, testStream, 1, delay))

		events, err := store.ReadStream(ctx, testStream)
		require.NoError(t, err)
		assert.Equal(t, []shared.DomainEvent{created, delay}, events)
		assert.Equal(t, []string{testStream}, store.Streams())
	})

	t.Run("rejects a stale expected version", func(t *testing.T) {
		store := NewInMemoryEventStore(nil, nil)
		require.NoError(t, store.AppendToStream(ctx, testStream, 0, createdEvent(testEntityID)))

		err := store.AppendToStream(ctx, testStream, 0, createdEvent(testEntityID))

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		version, _ := store.StreamVersion(ctx, testStream)
		assert.Equal(t, int64(1), version)
	})

	t.Run("empty append changes nothing", func(t *testing.T) {
		store := NewInMemoryEventStore(nil, nil)

		require.NoError(t, store.AppendToStream(ctx, testStream, 3))

		assert.Empty(t, store.Streams())
	})

	t.Run("read returns a copy", func(t *testing.T) {
		store := NewInMemoryEventStore(nil, nil)
		require.NoError(t, store.AppendToStream(ctx, testStream, 0, createdEvent(testEntityID)))

		events, _ := store.ReadStream(ctx, testStream)
		events[0] = nil

		again, _ := store.ReadStream(ctx, testStream)
		assert.NotNil(t, again[0])
	})

	t.Run("publishes appended events", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := newRecordingHandler()
		bus.Subscribe(handler)
		store := NewInMemoryEventStore(bus, nil)

		require.NoError(t, store.AppendToStream(ctx, testStream, 0, createdEvent(testEntityID)))

		assert.Len(t, handler.received(), 1)
	})

	t.Run("a failing subscriber does not undo the append", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := newRecordingHandler()
		handler.fail(errors.New("down"))
		bus.Subscribe(handler)
		store := NewInMemoryEventStore(bus, nil)

		require.NoError(t, store.AppendToStream(ctx, testStream, 0, createdEvent(testEntityID)))

		version, _ := store.StreamVersion(ctx, testStream)
		assert.Equal(t, int64(1), version)
	})
}
