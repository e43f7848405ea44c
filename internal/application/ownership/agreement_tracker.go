package ownership

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// TrackedAgreement is a linked bank connection whose consent agreement will lapse
type TrackedAgreement struct {
	EntityID     string
	ConnectionID string
	AgreementID  string
	ExpiresAt    time.Time
}

// AgreementTracker follows bank connection events and remembers which connections are still
// linked and when their agreement expires. The expiry sweeper reads it to find due connections.
type AgreementTracker struct {
	mu         sync.RWMutex
	agreements map[string]TrackedAgreement
}

// NewAgreementTracker creates an empty tracker
func NewAgreementTracker() *AgreementTracker {
	return &AgreementTracker{
		agreements: make(map[string]TrackedAgreement),
	}
}

// EventTypes implements shared.EventHandler
func (t *AgreementTracker) EventTypes() []string {
	return []string{
		ownership.EventTypeEntityBankConnectionLinked,
		ownership.EventTypeEntityBankConnectionDisconnected,
		ownership.EventTypeEntityBankConnectionExpired,
	}
}

// Handle implements shared.EventHandler
func (t *AgreementTracker) Handle(_ context.Context, event shared.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := event.(type) {
	case *ownership.EntityBankConnectionLinkedEvent:
		t.agreements[ev.ConnectionID] = TrackedAgreement{
			EntityID:     ev.EntityID,
			ConnectionID: ev.ConnectionID,
			AgreementID:  ev.AgreementID,
			ExpiresAt:    ev.AgreementExpiry,
		}
	case *ownership.EntityBankConnectionDisconnectedEvent:
		delete(t.agreements, ev.ConnectionID)
	case *ownership.EntityBankConnectionExpiredEvent:
		delete(t.agreements, ev.ConnectionID)
	}
	return nil
}

// Due returns the tracked agreements expiring at or before now, oldest first
func (t *AgreementTracker) Due(now time.Time) []TrackedAgreement {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var due []TrackedAgreement
	for _, agreement := range t.agreements {
		if !agreement.ExpiresAt.After(now) {
			due = append(due, agreement)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ExpiresAt.Equal(due[j].ExpiresAt) {
			return due[i].ConnectionID < due[j].ConnectionID
		}
		return due[i].ExpiresAt.Before(due[j].ExpiresAt)
	})
	return due
}

// Len returns the number of tracked agreements
func (t *AgreementTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.agreements)
}
