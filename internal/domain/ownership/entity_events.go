package ownership

import (
	"time"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared/valueobject"
)

// Aggregate type constant
const AggregateTypeEntity = "Entity"

// Event type constants
const (
	EventTypeEntityCreated                    = "EntityCreated"
	EventTypeEntityUpdated                    = "EntityUpdated"
	EventTypeEntityLatePaymentDelayConfigured = "EntityLatePaymentDelayConfigured"
	EventTypeEntityBankAccountAdded           = "EntityBankAccountAdded"
	EventTypeEntityBankAccountUpdated         = "EntityBankAccountUpdated"
	EventTypeEntityBankAccountRemoved         = "EntityBankAccountRemoved"
	EventTypeEntityBankConnectionLinked       = "EntityBankConnectionLinked"
	EventTypeEntityBankConnectionDisconnected = "EntityBankConnectionDisconnected"
	EventTypeEntityBankConnectionExpired      = "EntityBankConnectionExpired"
	EventTypeEntityBankConnectionSynced       = "EntityBankConnectionSynced"
)

// EntityEvent is implemented by every event of the Entity stream.
// The unexported marker keeps the set closed to this package.
type EntityEvent interface {
	shared.DomainEvent
	entityEvent()
}

// EntityCreatedEvent carries the full initial state of an entity
type EntityCreatedEvent struct {
	shared.BaseDomainEvent
	EntityID         string                 `json:"entity_id"`
	UserID           string                 `json:"user_id"`
	EntityType       string                 `json:"entity_type"`
	Name             string                 `json:"name"`
	Siret            string                 `json:"siret,omitempty"`
	Address          valueobject.AddressDTO `json:"address"`
	LegalInformation string                 `json:"legal_information,omitempty"`
}

// NewEntityCreatedEvent creates a new EntityCreatedEvent
func NewEntityCreatedEvent(entityID, userID, entityType, name, siret string, address valueobject.AddressDTO, legalInformation string) *EntityCreatedEvent {
	return &EntityCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeEntityCreated, AggregateTypeEntity, entityID),
		EntityID:         entityID,
		UserID:           userID,
		EntityType:       entityType,
		Name:             name,
		Siret:            siret,
		Address:          address,
		LegalInformation: legalInformation,
	}
}

// EntityUpdatedEvent is a sparse patch: nil fields were not changed.
// A pointer to an empty string means the optional attribute was cleared.
type EntityUpdatedEvent struct {
	shared.BaseDomainEvent
	EntityID         string                  `json:"entity_id"`
	EntityType       *string                 `json:"entity_type,omitempty"`
	Name             *string                 `json:"name,omitempty"`
	Siret            *string                 `json:"siret,omitempty"`
	Address          *valueobject.AddressDTO `json:"address,omitempty"`
	LegalInformation *string                 `json:"legal_information,omitempty"`
}

// NewEntityUpdatedEvent creates an empty patch for the given entity
func NewEntityUpdatedEvent(entityID string) *EntityUpdatedEvent {
	return &EntityUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityUpdated, AggregateTypeEntity, entityID),
		EntityID:        entityID,
	}
}

// IsEmpty returns true if the patch changes nothing
func (e *EntityUpdatedEvent) IsEmpty() bool {
	return e.EntityType == nil && e.Name == nil && e.Siret == nil && e.Address == nil && e.LegalInformation == nil
}

// EntityLatePaymentDelayConfiguredEvent is published when the late payment delay changes
type EntityLatePaymentDelayConfiguredEvent struct {
	shared.BaseDomainEvent
	EntityID string `json:"entity_id"`
	Days     int    `json:"days"`
}

// NewEntityLatePaymentDelayConfiguredEvent creates a new EntityLatePaymentDelayConfiguredEvent
func NewEntityLatePaymentDelayConfiguredEvent(entityID string, days int) *EntityLatePaymentDelayConfiguredEvent {
	return &EntityLatePaymentDelayConfiguredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityLatePaymentDelayConfigured, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		Days:            days,
	}
}

// EntityBankAccountAddedEvent is published when a bank account or cash register is added
type EntityBankAccountAddedEvent struct {
	shared.BaseDomainEvent
	EntityID      string `json:"entity_id"`
	BankAccountID string `json:"bank_account_id"`
	AccountType   string `json:"account_type"`
	Label         string `json:"label"`
	IBAN          string `json:"iban,omitempty"`
	BIC           string `json:"bic,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	IsDefault     bool   `json:"is_default"`
}

// NewEntityBankAccountAddedEvent creates a new EntityBankAccountAddedEvent
func NewEntityBankAccountAddedEvent(entityID string, account BankAccount) *EntityBankAccountAddedEvent {
	return &EntityBankAccountAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankAccountAdded, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		BankAccountID:   account.ID,
		AccountType:     account.Type.String(),
		Label:           account.Label.String(),
		IBAN:            account.IBAN.String(),
		BIC:             account.BIC.String(),
		BankName:        account.BankName.String(),
		IsDefault:       account.IsDefault,
	}
}

// EntityBankAccountUpdatedEvent is a sparse patch of one bank account.
// A pointer to an empty string means the optional attribute was cleared.
type EntityBankAccountUpdatedEvent struct {
	shared.BaseDomainEvent
	EntityID      string  `json:"entity_id"`
	BankAccountID string  `json:"bank_account_id"`
	Label         *string `json:"label,omitempty"`
	IBAN          *string `json:"iban,omitempty"`
	BIC           *string `json:"bic,omitempty"`
	BankName      *string `json:"bank_name,omitempty"`
	IsDefault     *bool   `json:"is_default,omitempty"`
}

// NewEntityBankAccountUpdatedEvent creates an empty patch for the given account
func NewEntityBankAccountUpdatedEvent(entityID, bankAccountID string) *EntityBankAccountUpdatedEvent {
	return &EntityBankAccountUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankAccountUpdated, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		BankAccountID:   bankAccountID,
	}
}

// IsEmpty returns true if the patch changes nothing
func (e *EntityBankAccountUpdatedEvent) IsEmpty() bool {
	return e.Label == nil && e.IBAN == nil && e.BIC == nil && e.BankName == nil && e.IsDefault == nil
}

// EntityBankAccountRemovedEvent is published when a bank account is removed
type EntityBankAccountRemovedEvent struct {
	shared.BaseDomainEvent
	EntityID      string `json:"entity_id"`
	BankAccountID string `json:"bank_account_id"`
}

// NewEntityBankAccountRemovedEvent creates a new EntityBankAccountRemovedEvent
func NewEntityBankAccountRemovedEvent(entityID, bankAccountID string) *EntityBankAccountRemovedEvent {
	return &EntityBankAccountRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankAccountRemoved, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		BankAccountID:   bankAccountID,
	}
}

// EntityBankConnectionLinkedEvent is published when an open banking connection is linked to an account
type EntityBankConnectionLinkedEvent struct {
	shared.BaseDomainEvent
	EntityID        string    `json:"entity_id"`
	ConnectionID    string    `json:"connection_id"`
	BankAccountID   string    `json:"bank_account_id"`
	Provider        string    `json:"provider"`
	InstitutionID   string    `json:"institution_id"`
	InstitutionName string    `json:"institution_name"`
	RequisitionID   string    `json:"requisition_id"`
	AgreementID     string    `json:"agreement_id"`
	AgreementExpiry time.Time `json:"agreement_expiry"`
	AccountIDs      []string  `json:"account_ids"`
}

// NewEntityBankConnectionLinkedEvent creates a new EntityBankConnectionLinkedEvent
func NewEntityBankConnectionLinkedEvent(entityID string, link BankConnectionLink) *EntityBankConnectionLinkedEvent {
	return &EntityBankConnectionLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankConnectionLinked, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		ConnectionID:    link.ConnectionID,
		BankAccountID:   link.BankAccountID,
		Provider:        link.Provider,
		InstitutionID:   link.InstitutionID,
		InstitutionName: link.InstitutionName,
		RequisitionID:   link.RequisitionID,
		AgreementID:     link.AgreementID,
		AgreementExpiry: link.AgreementExpiry.UTC(),
		AccountIDs:      append([]string(nil), link.AccountIDs...),
	}
}

// EntityBankConnectionDisconnectedEvent is published when the owner disconnects a bank connection
type EntityBankConnectionDisconnectedEvent struct {
	shared.BaseDomainEvent
	EntityID     string `json:"entity_id"`
	ConnectionID string `json:"connection_id"`
}

// NewEntityBankConnectionDisconnectedEvent creates a new EntityBankConnectionDisconnectedEvent
func NewEntityBankConnectionDisconnectedEvent(entityID, connectionID string) *EntityBankConnectionDisconnectedEvent {
	return &EntityBankConnectionDisconnectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankConnectionDisconnected, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		ConnectionID:    connectionID,
	}
}

// EntityBankConnectionExpiredEvent is published when the consent agreement of a connection lapses
type EntityBankConnectionExpiredEvent struct {
	shared.BaseDomainEvent
	EntityID     string `json:"entity_id"`
	ConnectionID string `json:"connection_id"`
}

// NewEntityBankConnectionExpiredEvent creates a new EntityBankConnectionExpiredEvent
func NewEntityBankConnectionExpiredEvent(entityID, connectionID string) *EntityBankConnectionExpiredEvent {
	return &EntityBankConnectionExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankConnectionExpired, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		ConnectionID:    connectionID,
	}
}

// EntityBankConnectionSyncedEvent is published after transactions were fetched through a connection
type EntityBankConnectionSyncedEvent struct {
	shared.BaseDomainEvent
	EntityID     string    `json:"entity_id"`
	ConnectionID string    `json:"connection_id"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// NewEntityBankConnectionSyncedEvent creates a new EntityBankConnectionSyncedEvent
func NewEntityBankConnectionSyncedEvent(entityID, connectionID string, syncedAt time.Time) *EntityBankConnectionSyncedEvent {
	return &EntityBankConnectionSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntityBankConnectionSynced, AggregateTypeEntity, entityID),
		EntityID:        entityID,
		ConnectionID:    connectionID,
		LastSyncedAt:    syncedAt.UTC(),
	}
}

func (*EntityCreatedEvent) entityEvent()                    {}
func (*EntityUpdatedEvent) entityEvent()                    {}
func (*EntityLatePaymentDelayConfiguredEvent) entityEvent() {}
func (*EntityBankAccountAddedEvent) entityEvent()           {}
func (*EntityBankAccountUpdatedEvent) entityEvent()         {}
func (*EntityBankAccountRemovedEvent) entityEvent()         {}
func (*EntityBankConnectionLinkedEvent) entityEvent()       {}
func (*EntityBankConnectionDisconnectedEvent) entityEvent() {}
func (*EntityBankConnectionExpiredEvent) entityEvent()      {}
func (*EntityBankConnectionSyncedEvent) entityEvent()       {}
