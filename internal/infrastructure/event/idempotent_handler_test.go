package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// MockIdempotencyStore is a testify mock of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// mapStore is a minimal thread-safe store used where behaviour matters more than calls
type mapStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newMapStore() *mapStore {
	return &mapStore{keys: make(map[string]struct{})}
}

func (s *mapStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *mapStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok, nil
}

func (s *mapStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *mapStore) Close() error { return nil }

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("processes a new event", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := newRecordingHandler(ownership.EventTypeEntityCreated)
		h := NewIdempotentHandler("tracker", inner, store, nil)
		event := createdEvent(testEntityID)

		store.On("MarkProcessed", ctx, "tracker:"+event.EventID().String(), 24*time.Hour).Return(true, nil)

		require.NoError(t, h.Handle(ctx, event))

		assert.Len(t, inner.received(), 1)
		assert.Equal(t, int64(1), h.Metrics().Stats().EventsProcessed)
		store.AssertExpectations(t)
	})

	t.Run("skips a redelivered event", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := newRecordingHandler()
		h := NewIdempotentHandler("tracker", inner, store, nil)

		store.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(false, nil)

		require.NoError(t, h.Handle(ctx, createdEvent(testEntityID)))

		assert.Empty(t, inner.received())
		assert.Equal(t, int64(1), h.Metrics().Stats().EventsDuplicate)
	})

	t.Run("releases the key when the handler fails", func(t *testing.T) {
		store := newMapStore()
		inner := newRecordingHandler()
		inner.fail(errors.New("read model unavailable"))
		h := NewIdempotentHandler("tracker", inner, store, nil)
		event := createdEvent(testEntityID)

		err := h.Handle(ctx, event)
		require.Error(t, err)

		processed, _ := store.IsProcessed(ctx, "tracker:"+event.EventID().String())
		assert.False(t, processed)
		assert.Equal(t, int64(1), h.Metrics().Stats().EventsFailed)

		inner.fail(nil)
		require.NoError(t, h.Handle(ctx, event))
		assert.Len(t, inner.received(), 1)
	})

	t.Run("processes anyway when the store is down", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := newRecordingHandler()
		h := NewIdempotentHandler("tracker", inner, store, nil)

		store.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

		require.NoError(t, h.Handle(ctx, createdEvent(testEntityID)))

		assert.Len(t, inner.received(), 1)
	})

	t.Run("disabled idempotency bypasses the store", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := newRecordingHandler()
		h := NewIdempotentHandler("tracker", inner, store, nil,
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
		event := createdEvent(testEntityID)

		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))

		assert.Len(t, inner.received(), 2)
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestIdempotentHandler_ConsumersDoNotShadowEachOther(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	metrics := &IdempotencyMetrics{}
	first := newRecordingHandler()
	second := newRecordingHandler()
	a := NewIdempotentHandler("tracker", first, store, nil, WithIdempotencyMetrics(metrics))
	b := NewIdempotentHandler("audit", second, store, nil, WithIdempotencyMetrics(metrics))
	event := createdEvent(testEntityID)

	require.NoError(t, a.Handle(ctx, event))
	require.NoError(t, b.Handle(ctx, event))
	require.NoError(t, a.Handle(ctx, event))

	assert.Len(t, first.received(), 1)
	assert.Len(t, second.received(), 1)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 2, EventsDuplicate: 1}, metrics.Stats())
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	inner := newRecordingHandler()
	h := NewIdempotentHandler("tracker", inner, newMapStore(), nil)
	event := createdEvent(testEntityID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(ctx, event)
		}()
	}
	wg.Wait()

	assert.Len(t, inner.received(), 1)
	assert.Equal(t, []string(nil), h.EventTypes())
}
