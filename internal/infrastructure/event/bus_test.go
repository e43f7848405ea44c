package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string                           { return nil }

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers events in order to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler(ownership.EventTypeEntityCreated, ownership.EventTypeEntityLatePaymentDelayConfigured)
		bus.Subscribe(handler)

		created := createdEvent(testEntityID)
		delay := ownership.NewEntityLatePaymentDelayConfiguredEvent(testEntityID, 10)
		require.NoError(t, bus.Publish(ctx, created, delay))

		assert.Equal(t, []shared.DomainEvent{created, delay}, handler.received())
	})

	t.Run("skips handlers of other types", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := newRecordingHandler(ownership.EventTypeEntityBankAccountAdded)
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, createdEvent(testEntityID)))

		assert.Empty(t, handler.received())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := newRecordingHandler()
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx,
			createdEvent(testEntityID),
			ownership.NewEntityBankAccountRemovedEvent(testEntityID, "acc-1"),
		))

		assert.Len(t, handler.received(), 2)
	})

	t.Run("reports failures after delivering to every handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		failing := newRecordingHandler(ownership.EventTypeEntityCreated)
		failing.fail(errors.New("projection down"))
		healthy := newRecordingHandler(ownership.EventTypeEntityCreated)
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(ctx, createdEvent(testEntityID))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "projection down")
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("turns a handler panic into an error", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		bus.Subscribe(panickingHandler{}, ownership.EventTypeEntityCreated)

		err := bus.Publish(ctx, createdEvent(testEntityID))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "handler panicked")
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newRecordingHandler(ownership.EventTypeEntityCreated)
	bus.Subscribe(handler)

	bus.Unsubscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), createdEvent(testEntityID)))

	assert.Empty(t, handler.received())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, createdEvent(testEntityID)), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, createdEvent(testEntityID)))
}
