package ownership

import (
	"time"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared/valueobject"
)

// CreateEntityCommand creates an ownership entity
type CreateEntityCommand struct {
	EntityID         string
	UserID           string
	Type             string
	Name             string
	Siret            string
	Address          valueobject.AddressDTO
	LegalInformation string
}

// UpdateEntityCommand changes the supplied attributes of an entity
type UpdateEntityCommand struct {
	EntityID         string
	UserID           string
	Type             shared.Optional[string]
	Name             shared.Optional[string]
	Siret            shared.Optional[string]
	Address          shared.Optional[valueobject.AddressDTO]
	LegalInformation shared.Optional[string]
}

// ConfigureLatePaymentDelayCommand sets the late payment delay of an entity
type ConfigureLatePaymentDelayCommand struct {
	EntityID string
	UserID   string
	Days     int
}

// AddBankAccountCommand adds a bank account or the cash register to an entity
type AddBankAccountCommand struct {
	EntityID      string
	UserID        string
	BankAccountID string
	Type          string
	Label         string
	IBAN          string
	BIC           string
	BankName      string
	IsDefault     bool
}

// UpdateBankAccountCommand changes the supplied attributes of a bank account
type UpdateBankAccountCommand struct {
	EntityID      string
	UserID        string
	BankAccountID string
	Label         shared.Optional[string]
	IBAN          shared.Optional[string]
	BIC           shared.Optional[string]
	BankName      shared.Optional[string]
	IsDefault     shared.Optional[bool]
}

// RemoveBankAccountCommand removes a bank account from an entity
type RemoveBankAccountCommand struct {
	EntityID      string
	UserID        string
	BankAccountID string
}

// LinkBankConnectionCommand attaches an open banking connection to a bank account
type LinkBankConnectionCommand struct {
	EntityID        string
	UserID          string
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

// DisconnectBankConnectionCommand revokes a bank connection
type DisconnectBankConnectionCommand struct {
	EntityID     string
	UserID       string
	ConnectionID string
}

// MarkBankConnectionExpiredCommand is issued by the system when a consent agreement lapses
type MarkBankConnectionExpiredCommand struct {
	EntityID     string
	ConnectionID string
}

// MarkBankConnectionSyncedCommand is issued by the system after a transaction import
type MarkBankConnectionSyncedCommand struct {
	EntityID     string
	ConnectionID string
	SyncedAt     time.Time
}
