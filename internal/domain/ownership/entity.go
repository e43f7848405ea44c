package ownership

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared/valueobject"
)

// Entity is the ownership entity aggregate: the legal person (SCI or individual) that owns
// properties and holds bank accounts.
//
// Entity state is only ever assigned by apply. Mutators validate the command against the
// current state, then raise events; raising applies the event immediately and queues it as
// uncommitted, so a later check within the same command sees the new state.
type Entity struct {
	shared.EventSourcedAggregateRoot

	created          bool
	ownerID          OwnerID
	entityType       EntityType
	name             EntityName
	siret            Siret
	address          valueobject.Address
	legalInformation LegalInformation
	latePaymentDelay LatePaymentDelay
	bankAccounts     map[string]*BankAccount
	bankConnections  map[string]*BankConnection
}

// EntityUpdate lists the attributes an owner wants to change.
// Absent fields are left untouched; Siret and LegalInformation set to "" clear the attribute.
type EntityUpdate struct {
	Type             shared.Optional[string]
	Name             shared.Optional[string]
	Siret            shared.Optional[string]
	Address          shared.Optional[valueobject.AddressDTO]
	LegalInformation shared.Optional[string]
}

// NewEntity returns an empty, not yet created aggregate for the given id
func NewEntity(id string) *Entity {
	return &Entity{
		EventSourcedAggregateRoot: shared.NewEventSourcedAggregateRoot(StreamPrefix, id),
		latePaymentDelay:          DefaultLatePaymentDelay(),
		bankAccounts:              make(map[string]*BankAccount),
		bankConnections:           make(map[string]*BankConnection),
	}
}

// RehydrateEntity rebuilds an aggregate by replaying its committed history in stream order
func RehydrateEntity(id string, history []shared.DomainEvent) (*Entity, error) {
	e := NewEntity(id)
	if err := e.LoadFromHistory(history...); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadFromHistory applies committed events and advances the version accordingly
func (e *Entity) LoadFromHistory(history ...shared.DomainEvent) error {
	for _, event := range history {
		entityEvent, ok := event.(EntityEvent)
		if !ok {
			return fmt.Errorf("entity %s: unexpected event %T in stream", e.GetID(), event)
		}
		if err := e.apply(entityEvent); err != nil {
			return err
		}
		e.RecordReplayed()
	}
	return nil
}

// raise applies a new event and queues it for the next save
func (e *Entity) raise(event EntityEvent) error {
	if err := e.apply(event); err != nil {
		return err
	}
	e.RecordUncommitted(event)
	return nil
}

// Create records the creation of the entity
func (e *Entity) Create(ownerID, entityType, name, siret string, address valueobject.AddressDTO, legalInformation string) error {
	if e.created {
		return shared.NewAlreadyExistsError(fmt.Sprintf("Entity %s already exists", e.GetID()))
	}
	if e.GetID() == "" {
		return shared.NewValidationError("Entity ID is required")
	}

	owner, err := NewOwnerID(ownerID)
	if err != nil {
		return err
	}
	typ, err := NewEntityType(entityType)
	if err != nil {
		return err
	}
	entityName, err := NewEntityName(name)
	if err != nil {
		return err
	}
	entitySiret, err := NewSiret(siret)
	if err != nil {
		return err
	}
	if err := checkSiretForType(typ, entitySiret); err != nil {
		return err
	}
	addr, err := address.ToAddress()
	if err != nil {
		return err
	}
	legal, err := NewLegalInformation(legalInformation)
	if err != nil {
		return err
	}

	return e.raise(NewEntityCreatedEvent(
		e.GetID(),
		owner.String(),
		typ.String(),
		entityName.String(),
		entitySiret.String(),
		addr.ToDTO(),
		legal.String(),
	))
}

// Update changes the supplied attributes. Nothing is recorded when no attribute actually changes.
func (e *Entity) Update(ownerID string, update EntityUpdate) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}

	event := NewEntityUpdatedEvent(e.GetID())
	resultingType := e.entityType
	resultingSiret := e.siret

	if raw, ok := update.Type.Get(); ok {
		typ, err := NewEntityType(raw)
		if err != nil {
			return err
		}
		resultingType = typ
		if !typ.Equals(e.entityType) {
			event.EntityType = stringPtr(typ.String())
		}
	}
	if raw, ok := update.Name.Get(); ok {
		name, err := NewEntityName(raw)
		if err != nil {
			return err
		}
		if !name.Equals(e.name) {
			event.Name = stringPtr(name.String())
		}
	}
	if raw, ok := update.Siret.Get(); ok {
		siret, err := NewSiret(raw)
		if err != nil {
			return err
		}
		resultingSiret = siret
		if !siret.Equals(e.siret) {
			event.Siret = stringPtr(siret.String())
		}
	}
	if err := checkSiretForType(resultingType, resultingSiret); err != nil {
		return err
	}
	if dto, ok := update.Address.Get(); ok {
		addr, err := dto.ToAddress()
		if err != nil {
			return err
		}
		if !addr.Equals(e.address) {
			normalized := addr.ToDTO()
			event.Address = &normalized
		}
	}
	if raw, ok := update.LegalInformation.Get(); ok {
		legal, err := NewLegalInformation(raw)
		if err != nil {
			return err
		}
		if !legal.Equals(e.legalInformation) {
			event.LegalInformation = stringPtr(legal.String())
		}
	}

	if event.IsEmpty() {
		return nil
	}
	return e.raise(event)
}

// ConfigureLatePaymentDelay sets the number of days before a rent is considered late
func (e *Entity) ConfigureLatePaymentDelay(ownerID string, days int) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}
	delay, err := NewLatePaymentDelay(days)
	if err != nil {
		return err
	}
	if delay.Equals(e.latePaymentDelay) {
		return nil
	}
	return e.raise(NewEntityLatePaymentDelayConfiguredEvent(e.GetID(), delay.Days()))
}

// checkOwner guards every owner-issued mutator: the entity must exist and belong to the caller
func (e *Entity) checkOwner(ownerID string) error {
	if !e.created {
		return shared.NewNotFoundError(fmt.Sprintf("Entity %s not found", e.GetID()))
	}
	caller, err := NewOwnerID(ownerID)
	if err != nil || !caller.Equals(e.ownerID) {
		return shared.NewUnauthorizedError("Not authorized to modify this entity")
	}
	return nil
}

// normalizeID trims bank account and connection identifiers before any lookup or event
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

// ID returns the entity identifier
func (e *Entity) ID() string {
	return e.GetID()
}

// Version returns the stream version the aggregate state reflects, uncommitted events excluded
func (e *Entity) Version() int64 {
	return e.GetVersion()
}

// IsCreated returns true once the creation event has been applied
func (e *Entity) IsCreated() bool {
	return e.created
}

// OwnerID returns the identifier of the owning user
func (e *Entity) OwnerID() string {
	return e.ownerID.String()
}

// Type returns the legal form token
func (e *Entity) Type() string {
	return e.entityType.String()
}

// Name returns the entity name
func (e *Entity) Name() string {
	return e.name.String()
}

// Siret returns the SIRET, empty when none is set
func (e *Entity) Siret() string {
	return e.siret.String()
}

// Address returns the registered address
func (e *Entity) Address() valueobject.Address {
	return e.address
}

// LegalInformation returns the legal mentions, empty when none are set
func (e *Entity) LegalInformation() string {
	return e.legalInformation.String()
}

// LatePaymentDelayDays returns the configured late payment delay
func (e *Entity) LatePaymentDelayDays() int {
	return e.latePaymentDelay.Days()
}

// BankAccount returns a copy of the bank account with the given id
func (e *Entity) BankAccount(id string) (BankAccount, bool) {
	account, ok := e.bankAccounts[normalizeID(id)]
	if !ok {
		return BankAccount{}, false
	}
	return *account, true
}

// BankAccounts returns copies of all bank accounts ordered by id
func (e *Entity) BankAccounts() []BankAccount {
	accounts := make([]BankAccount, 0, len(e.bankAccounts))
	for _, account := range e.bankAccounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts
}

// DefaultBankAccount returns the account currently marked as default, if any
func (e *Entity) DefaultBankAccount() (BankAccount, bool) {
	if account := e.defaultAccount(); account != nil {
		return *account, true
	}
	return BankAccount{}, false
}

// BankConnection returns a copy of the bank connection with the given id
func (e *Entity) BankConnection(id string) (BankConnection, bool) {
	connection, ok := e.bankConnections[normalizeID(id)]
	if !ok {
		return BankConnection{}, false
	}
	return connection.clone(), true
}

// BankConnections returns copies of all bank connections ordered by id
func (e *Entity) BankConnections() []BankConnection {
	connections := make([]BankConnection, 0, len(e.bankConnections))
	for _, connection := range e.bankConnections {
		connections = append(connections, connection.clone())
	}
	sort.Slice(connections, func(i, j int) bool {
		return connections[i].ID < connections[j].ID
	})
	return connections
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
