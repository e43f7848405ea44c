package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared/valueobject"
)

const testEntityID = "6f1c2a9e-5b1d-4a39-9d55-0f3c2b7e8a10"

func testAddress() valueobject.AddressDTO {
	return valueobject.AddressDTO{
		Street:     "12 rue de la Paix",
		PostalCode: "75002",
		City:       "Paris",
		Country:    "France",
	}
}

func createdEvent(entityID string) *ownership.EntityCreatedEvent {
	return ownership.NewEntityCreatedEvent(entityID, "user-1", "sci", "SCI Les Tilleuls",
		"12345678901234", testAddress(), "")
}

func ptr[T any](v T) *T { return &v }

// entityEvent builds the base of an event with a timestamp that survives JSON unchanged
func entityEvent(eventType, entityID string) shared.BaseDomainEvent {
	base := shared.NewBaseDomainEvent(eventType, ownership.AggregateTypeEntity, entityID)
	base.Timestamp = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return base
}

// everyEntityEvent returns one fully populated event of each ownership event type
func everyEntityEvent(entityID string) []shared.DomainEvent {
	return []shared.DomainEvent{
		&ownership.EntityCreatedEvent{
			BaseDomainEvent:  entityEvent(ownership.EventTypeEntityCreated, entityID),
			EntityID:         entityID,
			UserID:           "user-1",
			EntityType:       ownership.EntityTypeSCI,
			Name:             "SCI Les Tilleuls",
			Siret:            "12345678901234",
			Address:          valueobject.AddressDTO{Street: "12 rue de la Paix", PostalCode: "75002", City: "Paris", Country: "France", Complement: "Bat. B"},
			LegalInformation: "Capital 1000 EUR",
		},
		&ownership.EntityUpdatedEvent{
			BaseDomainEvent:  entityEvent(ownership.EventTypeEntityUpdated, entityID),
			EntityID:         entityID,
			EntityType:       ptr(ownership.EntityTypeNomPropre),
			Name:             ptr("Jean Dupont"),
			Siret:            ptr(""),
			Address:          &valueobject.AddressDTO{Street: "3 place Bellecour", PostalCode: "69002", City: "Lyon", Country: "France"},
			LegalInformation: ptr(""),
		},
		&ownership.EntityLatePaymentDelayConfiguredEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityLatePaymentDelayConfigured, entityID),
			EntityID:        entityID,
			Days:            15,
		},
		&ownership.EntityBankAccountAddedEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankAccountAdded, entityID),
			EntityID:        entityID,
			BankAccountID:   "acc-1",
			AccountType:     ownership.BankAccountTypeBankAccount,
			Label:           "Compte courant",
			IBAN:            "FR7630006000011234567890189",
			BIC:             "AGRIFRPP",
			BankName:        "Credit Agricole",
			IsDefault:       true,
		},
		&ownership.EntityBankAccountUpdatedEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankAccountUpdated, entityID),
			EntityID:        entityID,
			BankAccountID:   "acc-1",
			Label:           ptr("Compte loyers"),
			IBAN:            ptr("FR1420041010050500013M02606"),
			BIC:             ptr(""),
			BankName:        ptr("La Banque Postale"),
			IsDefault:       ptr(false),
		},
		&ownership.EntityBankAccountRemovedEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankAccountRemoved, entityID),
			EntityID:        entityID,
			BankAccountID:   "acc-2",
		},
		&ownership.EntityBankConnectionLinkedEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankConnectionLinked, entityID),
			EntityID:        entityID,
			ConnectionID:    "conn-1",
			BankAccountID:   "acc-1",
			Provider:        "gocardless",
			InstitutionID:   "CREDIT_AGRICOLE_AGRIFRPP",
			InstitutionName: "Credit Agricole",
			RequisitionID:   "req-1",
			AgreementID:     "agr-1",
			AgreementExpiry: time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
			AccountIDs:      []string{"ext-1", "ext-2"},
		},
		&ownership.EntityBankConnectionDisconnectedEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankConnectionDisconnected, entityID),
			EntityID:        entityID,
			ConnectionID:    "conn-1",
		},
		&ownership.EntityBankConnectionExpiredEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankConnectionExpired, entityID),
			EntityID:        entityID,
			ConnectionID:    "conn-2",
		},
		&ownership.EntityBankConnectionSyncedEvent{
			BaseDomainEvent: entityEvent(ownership.EventTypeEntityBankConnectionSynced, entityID),
			EntityID:        entityID,
			ConnectionID:    "conn-3",
			LastSyncedAt:    time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC),
		},
	}
}

func newTestSerializer() *EventSerializer {
	s := NewEventSerializer(nil)
	RegisterOwnershipEvents(s)
	return s
}

// newSQLiteDB opens an isolated in-memory database with the event store tables
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would otherwise see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&StoredEvent{}, &shared.OutboxEntry{}))
	return db
}

// recordingHandler records what it receives and can be told to fail
type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{types: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.handled = append(h.handled, event)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *recordingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}
