package ownership

import (
	"context"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
)

// Every handler loads the entity, calls the one matching mutator and saves.
// Errors are returned unchanged; handlers never inspect entity state.

// CreateEntityHandler handles CreateEntityCommand
type CreateEntityHandler struct {
	repo ownership.EntityRepository
}

// NewCreateEntityHandler creates a new CreateEntityHandler
func NewCreateEntityHandler(repo ownership.EntityRepository) *CreateEntityHandler {
	return &CreateEntityHandler{repo: repo}
}

// Handle executes the command. The load returns a not yet created entity for a new id,
// so creating an id twice fails with ALREADY_EXISTS instead of a version conflict.
func (h *CreateEntityHandler) Handle(ctx context.Context, cmd CreateEntityCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.Create(cmd.UserID, cmd.Type, cmd.Name, cmd.Siret, cmd.Address, cmd.LegalInformation); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// UpdateEntityHandler handles UpdateEntityCommand
type UpdateEntityHandler struct {
	repo ownership.EntityRepository
}

// NewUpdateEntityHandler creates a new UpdateEntityHandler
func NewUpdateEntityHandler(repo ownership.EntityRepository) *UpdateEntityHandler {
	return &UpdateEntityHandler{repo: repo}
}

// Handle executes the command
func (h *UpdateEntityHandler) Handle(ctx context.Context, cmd UpdateEntityCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.Update(cmd.UserID, ownership.EntityUpdate{
		Type:             cmd.Type,
		Name:             cmd.Name,
		Siret:            cmd.Siret,
		Address:          cmd.Address,
		LegalInformation: cmd.LegalInformation,
	}); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// ConfigureLatePaymentDelayHandler handles ConfigureLatePaymentDelayCommand
type ConfigureLatePaymentDelayHandler struct {
	repo ownership.EntityRepository
}

// NewConfigureLatePaymentDelayHandler creates a new ConfigureLatePaymentDelayHandler
func NewConfigureLatePaymentDelayHandler(repo ownership.EntityRepository) *ConfigureLatePaymentDelayHandler {
	return &ConfigureLatePaymentDelayHandler{repo: repo}
}

// Handle executes the command
func (h *ConfigureLatePaymentDelayHandler) Handle(ctx context.Context, cmd ConfigureLatePaymentDelayCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.ConfigureLatePaymentDelay(cmd.UserID, cmd.Days); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// AddBankAccountHandler handles AddBankAccountCommand
type AddBankAccountHandler struct {
	repo ownership.EntityRepository
}

// NewAddBankAccountHandler creates a new AddBankAccountHandler
func NewAddBankAccountHandler(repo ownership.EntityRepository) *AddBankAccountHandler {
	return &AddBankAccountHandler{repo: repo}
}

// Handle executes the command
func (h *AddBankAccountHandler) Handle(ctx context.Context, cmd AddBankAccountCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.AddBankAccount(cmd.UserID, cmd.BankAccountID, cmd.Type, cmd.Label, cmd.IBAN, cmd.BIC, cmd.BankName, cmd.IsDefault); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// UpdateBankAccountHandler handles UpdateBankAccountCommand
type UpdateBankAccountHandler struct {
	repo ownership.EntityRepository
}

// NewUpdateBankAccountHandler creates a new UpdateBankAccountHandler
func NewUpdateBankAccountHandler(repo ownership.EntityRepository) *UpdateBankAccountHandler {
	return &UpdateBankAccountHandler{repo: repo}
}

// Handle executes the command
func (h *UpdateBankAccountHandler) Handle(ctx context.Context, cmd UpdateBankAccountCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.UpdateBankAccount(cmd.UserID, cmd.BankAccountID, ownership.BankAccountUpdate{
		Label:     cmd.Label,
		IBAN:      cmd.IBAN,
		BIC:       cmd.BIC,
		BankName:  cmd.BankName,
		IsDefault: cmd.IsDefault,
	}); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// RemoveBankAccountHandler handles RemoveBankAccountCommand
type RemoveBankAccountHandler struct {
	repo ownership.EntityRepository
}

// NewRemoveBankAccountHandler creates a new RemoveBankAccountHandler
func NewRemoveBankAccountHandler(repo ownership.EntityRepository) *RemoveBankAccountHandler {
	return &RemoveBankAccountHandler{repo: repo}
}

// Handle executes the command
func (h *RemoveBankAccountHandler) Handle(ctx context.Context, cmd RemoveBankAccountCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.RemoveBankAccount(cmd.UserID, cmd.BankAccountID); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// LinkBankConnectionHandler handles LinkBankConnectionCommand
type LinkBankConnectionHandler struct {
	repo ownership.EntityRepository
}

// NewLinkBankConnectionHandler creates a new LinkBankConnectionHandler
func NewLinkBankConnectionHandler(repo ownership.EntityRepository) *LinkBankConnectionHandler {
	return &LinkBankConnectionHandler{repo: repo}
}

// Handle executes the command
func (h *LinkBankConnectionHandler) Handle(ctx context.Context, cmd LinkBankConnectionCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.LinkBankConnection(cmd.UserID, ownership.BankConnectionLink{
		ConnectionID:    cmd.ConnectionID,
		BankAccountID:   cmd.BankAccountID,
		Provider:        cmd.Provider,
		InstitutionID:   cmd.InstitutionID,
		InstitutionName: cmd.InstitutionName,
		RequisitionID:   cmd.RequisitionID,
		AgreementID:     cmd.AgreementID,
		AgreementExpiry: cmd.AgreementExpiry,
		AccountIDs:      cmd.AccountIDs,
	}); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// DisconnectBankConnectionHandler handles DisconnectBankConnectionCommand
type DisconnectBankConnectionHandler struct {
	repo ownership.EntityRepository
}

// NewDisconnectBankConnectionHandler creates a new DisconnectBankConnectionHandler
func NewDisconnectBankConnectionHandler(repo ownership.EntityRepository) *DisconnectBankConnectionHandler {
	return &DisconnectBankConnectionHandler{repo: repo}
}

// Handle executes the command
func (h *DisconnectBankConnectionHandler) Handle(ctx context.Context, cmd DisconnectBankConnectionCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.DisconnectBankConnection(cmd.UserID, cmd.ConnectionID); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// MarkBankConnectionExpiredHandler handles MarkBankConnectionExpiredCommand
type MarkBankConnectionExpiredHandler struct {
	repo ownership.EntityRepository
}

// NewMarkBankConnectionExpiredHandler creates a new MarkBankConnectionExpiredHandler
func NewMarkBankConnectionExpiredHandler(repo ownership.EntityRepository) *MarkBankConnectionExpiredHandler {
	return &MarkBankConnectionExpiredHandler{repo: repo}
}

// Handle executes the command
func (h *MarkBankConnectionExpiredHandler) Handle(ctx context.Context, cmd MarkBankConnectionExpiredCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.MarkBankConnectionExpired(cmd.ConnectionID); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// MarkBankConnectionSyncedHandler handles MarkBankConnectionSyncedCommand
type MarkBankConnectionSyncedHandler struct {
	repo ownership.EntityRepository
}

// NewMarkBankConnectionSyncedHandler creates a new MarkBankConnectionSyncedHandler
func NewMarkBankConnectionSyncedHandler(repo ownership.EntityRepository) *MarkBankConnectionSyncedHandler {
	return &MarkBankConnectionSyncedHandler{repo: repo}
}

// Handle executes the command
func (h *MarkBankConnectionSyncedHandler) Handle(ctx context.Context, cmd MarkBankConnectionSyncedCommand) error {
	entity, err := h.repo.Load(ctx, cmd.EntityID)
	if err != nil {
		return err
	}
	if err := entity.MarkBankConnectionSynced(cmd.ConnectionID, cmd.SyncedAt); err != nil {
		return err
	}
	return h.repo.Save(ctx, entity)
}

// Handlers groups the command handlers of the ownership entity
type Handlers struct {
	CreateEntity              *CreateEntityHandler
	UpdateEntity              *UpdateEntityHandler
	ConfigureLatePaymentDelay *ConfigureLatePaymentDelayHandler
	AddBankAccount            *AddBankAccountHandler
	UpdateBankAccount         *UpdateBankAccountHandler
	RemoveBankAccount         *RemoveBankAccountHandler
	LinkBankConnection        *LinkBankConnectionHandler
	DisconnectBankConnection  *DisconnectBankConnectionHandler
	MarkBankConnectionExpired *MarkBankConnectionExpiredHandler
	MarkBankConnectionSynced  *MarkBankConnectionSyncedHandler
}

// NewHandlers creates every handler on top of the same repository
func NewHandlers(repo ownership.EntityRepository) *Handlers {
	return &Handlers{
		CreateEntity:              NewCreateEntityHandler(repo),
		UpdateEntity:              NewUpdateEntityHandler(repo),
		ConfigureLatePaymentDelay: NewConfigureLatePaymentDelayHandler(repo),
		AddBankAccount:            NewAddBankAccountHandler(repo),
		UpdateBankAccount:         NewUpdateBankAccountHandler(repo),
		RemoveBankAccount:         NewRemoveBankAccountHandler(repo),
		LinkBankConnection:        NewLinkBankConnectionHandler(repo),
		DisconnectBankConnection:  NewDisconnectBankConnectionHandler(repo),
		MarkBankConnectionExpired: NewMarkBankConnectionExpiredHandler(repo),
		MarkBankConnectionSynced:  NewMarkBankConnectionSyncedHandler(repo),
	}
}
