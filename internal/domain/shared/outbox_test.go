package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type outboxTestEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	event := &outboxTestEvent{BaseDomainEvent: NewBaseDomainEvent("TestEvent", "TestAggregate", "agg-1")}

	entry := NewOutboxEntry(event, 3, []byte(`{"id":"x"}`))

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "TestEvent", entry.EventType)
	assert.Equal(t, "agg-1", entry.AggregateID)
	assert.Equal(t, "TestAggregate", entry.AggregateType)
	assert.Equal(t, int64(3), entry.StreamVersion)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing}

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	assert.NotNil(t, entry.ProcessedAt)
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("puts a dead entry back in the queue", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "handler down",
			UpdatedAt:  time.Now().Add(-time.Hour),
		}

		err := entry.ResetForRetry()

		assert.NoError(t, err)
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
		assert.WithinDuration(t, time.Now(), entry.UpdatedAt, time.Second)
	})

	t.Run("rejects entries that are not dead", func(t *testing.T) {
		for _, status := range []OutboxStatus{
			OutboxStatusPending,
			OutboxStatusProcessing,
			OutboxStatusSent,
			OutboxStatusFailed,
		} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}

			err := entry.ResetForRetry()

			assert.ErrorIs(t, err, ErrInvalidState, status)
		}
	})
}

func TestOutboxEntry_IsDead(t *testing.T) {
	t.Run("returns true for dead entries", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusDead}
		assert.True(t, entry.IsDead())
	})

	t.Run("returns false for non-dead entries", func(t *testing.T) {
		testCases := []OutboxStatus{
			OutboxStatusPending,
			OutboxStatusProcessing,
			OutboxStatusSent,
			OutboxStatusFailed,
		}

		for _, status := range testCases {
			entry := &OutboxEntry{Status: status}
			assert.False(t, entry.IsDead())
		}
	})
}

func TestOutboxEntry_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	entry := &OutboxEntry{
		ID:         uuid.New(),
		Status:     OutboxStatusProcessing,
		RetryCount: 4, // Already retried 4 times
		MaxRetries: 5,
	}

	entry.MarkFailed("final error")

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, 5, entry.RetryCount)
	assert.Equal(t, "final error", entry.LastError)
	assert.True(t, entry.IsDead())
	assert.Nil(t, entry.NextRetryAt)
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_MarkFailed_ExponentialBackoff(t *testing.T) {
	entry := &OutboxEntry{
		ID:         uuid.New(),
		Status:     OutboxStatusProcessing,
		RetryCount: 0,
		MaxRetries: 5,
	}

	// First failure: 1s backoff
	entry.MarkFailed("error 1")
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	assert.NotNil(t, entry.NextRetryAt)
	assert.True(t, entry.CanRetry())
	firstBackoff := entry.NextRetryAt.Sub(time.Now())
	assert.True(t, firstBackoff > 0 && firstBackoff <= 2*time.Second)

	// Second failure: 2s backoff
	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("error 2")
	assert.Equal(t, 2, entry.RetryCount)
	secondBackoff := entry.NextRetryAt.Sub(time.Now())
	assert.True(t, secondBackoff > time.Second && secondBackoff <= 3*time.Second)

	// Third failure: 4s backoff
	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("error 3")
	assert.Equal(t, 3, entry.RetryCount)
	thirdBackoff := entry.NextRetryAt.Sub(time.Now())
	assert.True(t, thirdBackoff > 3*time.Second && thirdBackoff <= 5*time.Second)
}
