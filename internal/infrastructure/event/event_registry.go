package event

import (
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
)

// RegisterOwnershipEvents registers every event of the Entity stream with the serializer.
// The event store and the outbox processor both need it to decode stored payloads.
func RegisterOwnershipEvents(serializer *EventSerializer) {
	serializer.Register(ownership.EventTypeEntityCreated, &ownership.EntityCreatedEvent{})
	serializer.Register(ownership.EventTypeEntityUpdated, &ownership.EntityUpdatedEvent{})
	serializer.Register(ownership.EventTypeEntityLatePaymentDelayConfigured, &ownership.EntityLatePaymentDelayConfiguredEvent{})

	serializer.Register(ownership.EventTypeEntityBankAccountAdded, &ownership.EntityBankAccountAddedEvent{})
	serializer.Register(ownership.EventTypeEntityBankAccountUpdated, &ownership.EntityBankAccountUpdatedEvent{})
	serializer.Register(ownership.EventTypeEntityBankAccountRemoved, &ownership.EntityBankAccountRemovedEvent{})

	serializer.Register(ownership.EventTypeEntityBankConnectionLinked, &ownership.EntityBankConnectionLinkedEvent{})
	serializer.Register(ownership.EventTypeEntityBankConnectionDisconnected, &ownership.EntityBankConnectionDisconnectedEvent{})
	serializer.Register(ownership.EventTypeEntityBankConnectionExpired, &ownership.EntityBankConnectionExpiredEvent{})
	serializer.Register(ownership.EventTypeEntityBankConnectionSynced, &ownership.EntityBankConnectionSyncedEvent{})
}
