package ownership

import (
	"fmt"
	"strings"
	"time"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// ConnectionStatus is the lifecycle state of a bank connection
type ConnectionStatus string

// Connection statuses. Disconnected and expired are terminal; relinking creates a new connection.
const (
	ConnectionStatusLinked       ConnectionStatus = "linked"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusExpired      ConnectionStatus = "expired"
)

// BankConnection is an open banking consent attached to one of the entity's bank accounts
type BankConnection struct {
	ID              string
	BankAccountID   string
	Provider        string
	InstitutionID   string
	InstitutionName string
	RequisitionID   string
	AgreementID     string
	AgreementExpiry time.Time
	AccountIDs      []string
	Status          ConnectionStatus
	LastSyncedAt    *time.Time
}

// IsActive returns true while the connection can be used to fetch transactions
func (c BankConnection) IsActive() bool {
	return c.Status == ConnectionStatusLinked
}

func (c BankConnection) clone() BankConnection {
	c.AccountIDs = append([]string(nil), c.AccountIDs...)
	if c.LastSyncedAt != nil {
		synced := *c.LastSyncedAt
		c.LastSyncedAt = &synced
	}
	return c
}

// BankConnectionLink describes a connection obtained from an open banking provider
type BankConnectionLink struct {
	ConnectionID    string
	BankAccountID   string
	Provider        string
	InstitutionID   string
	InstitutionName string
	RequisitionID   string
	AgreementID     string
	AgreementExpiry time.Time
	AccountIDs      []string
}

// LinkBankConnection attaches a provider connection to one of the entity's bank accounts.
// It is a no-op when the account already has an active connection or the connection id is known.
func (e *Entity) LinkBankConnection(ownerID string, link BankConnectionLink) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}
	link.ConnectionID = normalizeID(link.ConnectionID)
	link.BankAccountID = normalizeID(link.BankAccountID)
	if link.ConnectionID == "" {
		return shared.NewValidationError("Bank connection ID is required")
	}
	if strings.TrimSpace(link.Provider) == "" {
		return shared.NewValidationError("Bank connection provider is required")
	}
	if _, ok := e.bankAccounts[link.BankAccountID]; !ok {
		return bankAccountNotFound(link.BankAccountID)
	}
	if _, exists := e.bankConnections[link.ConnectionID]; exists {
		return nil
	}
	if e.activeConnectionFor(link.BankAccountID) != nil {
		return nil
	}
	return e.raise(NewEntityBankConnectionLinkedEvent(e.GetID(), link))
}

// DisconnectBankConnection records the owner revoking a connection
func (e *Entity) DisconnectBankConnection(ownerID, connectionID string) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}
	connectionID = normalizeID(connectionID)
	connection, ok := e.bankConnections[connectionID]
	if !ok {
		return bankConnectionNotFound(connectionID)
	}
	if connection.Status == ConnectionStatusDisconnected {
		return nil
	}
	return e.raise(NewEntityBankConnectionDisconnectedEvent(e.GetID(), connectionID))
}

// MarkBankConnectionExpired records that the consent agreement lapsed.
// It is triggered by the system, so no owner is checked.
func (e *Entity) MarkBankConnectionExpired(connectionID string) error {
	connectionID = normalizeID(connectionID)
	connection, ok := e.bankConnections[connectionID]
	if !ok {
		return bankConnectionNotFound(connectionID)
	}
	if connection.Status != ConnectionStatusLinked {
		return nil
	}
	return e.raise(NewEntityBankConnectionExpiredEvent(e.GetID(), connectionID))
}

// MarkBankConnectionSynced records a successful transaction fetch.
// It is triggered by the system, so no owner is checked.
func (e *Entity) MarkBankConnectionSynced(connectionID string, syncedAt time.Time) error {
	connectionID = normalizeID(connectionID)
	if _, ok := e.bankConnections[connectionID]; !ok {
		return bankConnectionNotFound(connectionID)
	}
	if syncedAt.IsZero() {
		return shared.NewValidationError("Sync timestamp is required")
	}
	return e.raise(NewEntityBankConnectionSyncedEvent(e.GetID(), connectionID, syncedAt))
}

func (e *Entity) activeConnectionFor(bankAccountID string) *BankConnection {
	for _, connection := range e.bankConnections {
		if connection.BankAccountID == bankAccountID && connection.IsActive() {
			return connection
		}
	}
	return nil
}

func bankConnectionNotFound(connectionID string) error {
	return shared.NewNotFoundError(fmt.Sprintf("Bank connection %s not found", connectionID))
}
