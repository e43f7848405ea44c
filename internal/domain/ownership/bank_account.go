package ownership

import (
	"fmt"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// BankAccount is an account held by an entity: either a real bank account or its cash register
type BankAccount struct {
	ID        string
	Type      BankAccountType
	Label     BankAccountLabel
	IBAN      IBAN
	BIC       BIC
	BankName  BankName
	IsDefault bool
}

// BankAccountUpdate lists the account attributes an owner wants to change.
// IBAN, BIC and BankName set to "" clear the attribute.
type BankAccountUpdate struct {
	Label     shared.Optional[string]
	IBAN      shared.Optional[string]
	BIC       shared.Optional[string]
	BankName  shared.Optional[string]
	IsDefault shared.Optional[bool]
}

// AddBankAccount adds a bank account or the cash register.
// Making the new account default first un-defaults the current default account.
func (e *Entity) AddBankAccount(ownerID, accountID, accountType, label, iban, bic, bankName string, isDefault bool) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}
	accountID = normalizeID(accountID)
	if accountID == "" {
		return shared.NewValidationError("Bank account ID is required")
	}
	if _, exists := e.bankAccounts[accountID]; exists {
		return shared.NewAlreadyExistsError(fmt.Sprintf("Bank account %s already exists", accountID))
	}

	typ, err := NewBankAccountType(accountType)
	if err != nil {
		return err
	}
	accountLabel, err := NewBankAccountLabel(label)
	if err != nil {
		return err
	}
	accountIBAN, err := NewOptionalIBAN(iban)
	if err != nil {
		return err
	}
	if typ.RequiresIBAN() && accountIBAN.IsEmpty() {
		return shared.NewValidationError("IBAN is required for bank accounts")
	}
	accountBIC, err := NewOptionalBIC(bic)
	if err != nil {
		return err
	}
	accountBankName, err := NewOptionalBankName(bankName)
	if err != nil {
		return err
	}
	if typ.IsCashRegister() {
		if isDefault {
			return shared.NewValidationError("Cash register cannot be set as default")
		}
		if e.hasCashRegister() {
			return shared.NewValidationError("Only one cash register is allowed per entity")
		}
	}

	if isDefault {
		if err := e.undefaultCurrent(accountID); err != nil {
			return err
		}
	}
	return e.raise(NewEntityBankAccountAddedEvent(e.GetID(), BankAccount{
		ID:        accountID,
		Type:      typ,
		Label:     accountLabel,
		IBAN:      accountIBAN,
		BIC:       accountBIC,
		BankName:  accountBankName,
		IsDefault: isDefault,
	}))
}

// UpdateBankAccount changes the supplied attributes of an account.
// Nothing is recorded when no attribute actually changes.
func (e *Entity) UpdateBankAccount(ownerID, accountID string, update BankAccountUpdate) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}
	accountID = normalizeID(accountID)
	account, ok := e.bankAccounts[accountID]
	if !ok {
		return bankAccountNotFound(accountID)
	}

	event := NewEntityBankAccountUpdatedEvent(e.GetID(), accountID)

	if raw, ok := update.Label.Get(); ok {
		label, err := NewBankAccountLabel(raw)
		if err != nil {
			return err
		}
		if !label.Equals(account.Label) {
			event.Label = stringPtr(label.String())
		}
	}
	if raw, ok := update.IBAN.Get(); ok {
		iban, err := NewOptionalIBAN(raw)
		if err != nil {
			return err
		}
		if account.Type.RequiresIBAN() && iban.IsEmpty() {
			return shared.NewValidationError("IBAN is required for bank accounts")
		}
		if !iban.Equals(account.IBAN) {
			event.IBAN = stringPtr(iban.String())
		}
	}
	if raw, ok := update.BIC.Get(); ok {
		bic, err := NewOptionalBIC(raw)
		if err != nil {
			return err
		}
		if !bic.Equals(account.BIC) {
			event.BIC = stringPtr(bic.String())
		}
	}
	if raw, ok := update.BankName.Get(); ok {
		bankName, err := NewOptionalBankName(raw)
		if err != nil {
			return err
		}
		if !bankName.Equals(account.BankName) {
			event.BankName = stringPtr(bankName.String())
		}
	}
	if isDefault, ok := update.IsDefault.Get(); ok {
		if isDefault && account.Type.IsCashRegister() {
			return shared.NewValidationError("Cash register cannot be set as default")
		}
		if isDefault != account.IsDefault {
			event.IsDefault = boolPtr(isDefault)
		}
	}

	if event.IsEmpty() {
		return nil
	}
	if event.IsDefault != nil && *event.IsDefault {
		if err := e.undefaultCurrent(accountID); err != nil {
			return err
		}
	}
	return e.raise(event)
}

// RemoveBankAccount removes an account. Connections linked to it are left as they are.
func (e *Entity) RemoveBankAccount(ownerID, accountID string) error {
	if err := e.checkOwner(ownerID); err != nil {
		return err
	}
	accountID = normalizeID(accountID)
	if _, ok := e.bankAccounts[accountID]; !ok {
		return bankAccountNotFound(accountID)
	}
	return e.raise(NewEntityBankAccountRemovedEvent(e.GetID(), accountID))
}

// undefaultCurrent raises an un-default patch for the current default account, unless it is exceptID
func (e *Entity) undefaultCurrent(exceptID string) error {
	current := e.defaultAccount()
	if current == nil || current.ID == exceptID {
		return nil
	}
	event := NewEntityBankAccountUpdatedEvent(e.GetID(), current.ID)
	event.IsDefault = boolPtr(false)
	return e.raise(event)
}

// defaultAccount scans the accounts for the default one; the set per entity stays small
func (e *Entity) defaultAccount() *BankAccount {
	for _, account := range e.bankAccounts {
		if account.IsDefault {
			return account
		}
	}
	return nil
}

func (e *Entity) hasCashRegister() bool {
	for _, account := range e.bankAccounts {
		if account.Type.IsCashRegister() {
			return true
		}
	}
	return false
}

func bankAccountNotFound(accountID string) error {
	return shared.NewNotFoundError(fmt.Sprintf("Bank account %s not found", accountID))
}
