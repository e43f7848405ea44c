package ownership

import (
	"fmt"
)

// apply is the single reducer of the Entity stream. Events are facts that were validated when
// raised, so values are restored as recorded rather than re-validated, except for the address
// whose value object lives in another package.
func (e *Entity) apply(event EntityEvent) error {
	switch ev := event.(type) {
	case *EntityCreatedEvent:
		address, err := ev.Address.ToAddress()
		if err != nil {
			return fmt.Errorf("apply %s: %w", ev.EventType(), err)
		}
		e.created = true
		e.ownerID = OwnerID{value: ev.UserID}
		e.entityType = EntityType{value: ev.EntityType}
		e.name = EntityName{value: ev.Name}
		e.siret = Siret{value: ev.Siret}
		e.address = address
		e.legalInformation = LegalInformation{value: ev.LegalInformation}

	case *EntityUpdatedEvent:
		if ev.EntityType != nil {
			e.entityType = EntityType{value: *ev.EntityType}
		}
		if ev.Name != nil {
			e.name = EntityName{value: *ev.Name}
		}
		if ev.Siret != nil {
			e.siret = Siret{value: *ev.Siret}
		}
		if ev.Address != nil {
			address, err := ev.Address.ToAddress()
			if err != nil {
				return fmt.Errorf("apply %s: %w", ev.EventType(), err)
			}
			e.address = address
		}
		if ev.LegalInformation != nil {
			e.legalInformation = LegalInformation{value: *ev.LegalInformation}
		}

	case *EntityLatePaymentDelayConfiguredEvent:
		e.latePaymentDelay = LatePaymentDelay{days: ev.Days}

	case *EntityBankAccountAddedEvent:
		e.bankAccounts[ev.BankAccountID] = &BankAccount{
			ID:        ev.BankAccountID,
			Type:      BankAccountType{value: ev.AccountType},
			Label:     BankAccountLabel{value: ev.Label},
			IBAN:      IBAN{value: ev.IBAN},
			BIC:       BIC{value: ev.BIC},
			BankName:  BankName{value: ev.BankName},
			IsDefault: ev.IsDefault,
		}

	case *EntityBankAccountUpdatedEvent:
		account, ok := e.bankAccounts[ev.BankAccountID]
		if !ok {
			return fmt.Errorf("apply %s: bank account %s not in state", ev.EventType(), ev.BankAccountID)
		}
		if ev.Label != nil {
			account.Label = BankAccountLabel{value: *ev.Label}
		}
		if ev.IBAN != nil {
			account.IBAN = IBAN{value: *ev.IBAN}
		}
		if ev.BIC != nil {
			account.BIC = BIC{value: *ev.BIC}
		}
		if ev.BankName != nil {
			account.BankName = BankName{value: *ev.BankName}
		}
		if ev.IsDefault != nil {
			account.IsDefault = *ev.IsDefault
		}

	case *EntityBankAccountRemovedEvent:
		delete(e.bankAccounts, ev.BankAccountID)

	case *EntityBankConnectionLinkedEvent:
		e.bankConnections[ev.ConnectionID] = &BankConnection{
			ID:              ev.ConnectionID,
			BankAccountID:   ev.BankAccountID,
			Provider:        ev.Provider,
			InstitutionID:   ev.InstitutionID,
			InstitutionName: ev.InstitutionName,
			RequisitionID:   ev.RequisitionID,
			AgreementID:     ev.AgreementID,
			AgreementExpiry: ev.AgreementExpiry,
			AccountIDs:      append([]string(nil), ev.AccountIDs...),
			Status:          ConnectionStatusLinked,
		}

	case *EntityBankConnectionDisconnectedEvent:
		connection, err := e.connectionInState(ev.EventType(), ev.ConnectionID)
		if err != nil {
			return err
		}
		connection.Status = ConnectionStatusDisconnected

	case *EntityBankConnectionExpiredEvent:
		connection, err := e.connectionInState(ev.EventType(), ev.ConnectionID)
		if err != nil {
			return err
		}
		connection.Status = ConnectionStatusExpired

	case *EntityBankConnectionSyncedEvent:
		connection, err := e.connectionInState(ev.EventType(), ev.ConnectionID)
		if err != nil {
			return err
		}
		syncedAt := ev.LastSyncedAt
		connection.LastSyncedAt = &syncedAt

	default:
		return fmt.Errorf("entity %s: no reducer for event %T", e.GetID(), event)
	}
	return nil
}

func (e *Entity) connectionInState(eventType, connectionID string) (*BankConnection, error) {
	connection, ok := e.bankConnections[connectionID]
	if !ok {
		return nil, fmt.Errorf("apply %s: bank connection %s not in state", eventType, connectionID)
	}
	return connection, nil
}
