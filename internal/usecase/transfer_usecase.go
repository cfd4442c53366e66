package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
)

// TransferUseCase orchestrates two-account atomic operations on top of the
// ledger's mutation primitive. Both legs of a transfer commit in one unit of
// work or not at all.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	outboxRepo   OutboxRepository
	ledger       *LedgerUseCase
	refGen       ReferenceGenerator
	idGen        IDGenerator
	retrier      Retrier

	// OnReferenceCollision, when set, is called each time a generated
	// reference hits the uniqueness constraint and is regenerated.
	OnReferenceCollision func()
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	outboxRepo OutboxRepository,
	ledger *LedgerUseCase,
	refGen ReferenceGenerator,
	idGen IDGenerator,
	retrier Retrier,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		ledger:       ledger,
		refGen:       refGen,
		idGen:        idGen,
		retrier:      retrier,
	}
}

// TransferInput represents input for initiating a transfer.
type TransferInput struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Description   string
	ScheduledAt   *time.Time
}

// Initiate validates a transfer request and either executes it immediately
// or records it for the scheduled runner. Cheap checks run first; currency
// and status are verified before any lock is taken, then re-verified under
// lock at execution time.
func (uc *TransferUseCase) Initiate(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	from, err := uc.accountRepo.GetByID(ctx, input.FromAccountID)
	if err != nil {
		return nil, err
	}

	to, err := uc.accountRepo.GetByID(ctx, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	if err := from.ValidateActive(); err != nil {
		return nil, err
	}

	if err := to.ValidateActive(); err != nil {
		return nil, err
	}

	if from.Currency != to.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	if err := from.ValidateWithdrawal(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	status := domain.TransferStatusPending
	if input.ScheduledAt != nil && input.ScheduledAt.After(now) {
		status = domain.TransferStatusScheduled
	}

	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
		Currency:      from.Currency,
		Status:        status,
		Description:   input.Description,
		ScheduledAt:   input.ScheduledAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.createWithFreshReference(ctx, transfer); err != nil {
		return nil, err
	}

	if status == domain.TransferStatusScheduled {
		return transfer, nil
	}

	return uc.Execute(ctx, transfer.ID)
}

// createWithFreshReference persists the transfer row, regenerating the
// reference on a uniqueness collision, bounded attempts.
func (uc *TransferUseCase) createWithFreshReference(ctx context.Context, transfer *domain.Transfer) error {
	var lastErr error

	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		transfer.ReferenceNumber = uc.refGen.Next(domain.OperationTransferOut.ReferencePrefix())

		err := uc.createOnce(ctx, transfer)
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrDuplicateReference) {
			return err
		}

		if uc.OnReferenceCollision != nil {
			uc.OnReferenceCollision()
		}

		lastErr = err
	}

	return errors.Join(domain.ErrReferenceExhausted, lastErr)
}

func (uc *TransferUseCase) createOnce(ctx context.Context, transfer *domain.Transfer) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return err
	}

	if transfer.Status == domain.TransferStatusScheduled {
		err = uc.outboxRepo.Create(ctx, tx, uc.transferEvent(transfer, domain.EventTypeTransferScheduled, transfer.CreatedAt))
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Execute runs a pending or scheduled transfer to a terminal state. Locks
// are taken in a fixed order: the transfer row first, then both account
// rows by ascending account ID, so opposing transfers between the same pair
// cannot deadlock. Business-rule failures mark the transfer failed with no
// ledger writes.
func (uc *TransferUseCase) Execute(ctx context.Context, id string) (*domain.Transfer, error) {
	var (
		transfer *domain.Transfer
		bizErr   error
	)

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		transfer, err = uc.executeOnce(ctx, id)
		if err != nil && isBusinessError(err) {
			// Terminal for this transfer, not transient.
			bizErr = err
			return nil
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return transfer, bizErr
}

func (uc *TransferUseCase) executeOnce(ctx context.Context, id string) (*domain.Transfer, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// A cancel racing with execution resolves on the transfer row lock:
	// whoever loses sees the terminal state here.
	if !transfer.Status.CanTransitionTo(domain.TransferStatusCompleted) {
		return transfer, domain.ErrInvalidStateTransition
	}

	ids := []int64{transfer.FromAccountID, transfer.ToAccountID}
	if ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var from, to *domain.Account

	for _, a := range accounts {
		switch a.ID {
		case transfer.FromAccountID:
			from = a
		case transfer.ToAccountID:
			to = a
		}
	}

	if from == nil || to == nil {
		return uc.failTransfer(ctx, tx, transfer, domain.ErrAccountNotFound)
	}

	// Re-validate under lock: state may have changed since initiation,
	// especially for scheduled transfers.
	if err := from.ValidateActive(); err != nil {
		return uc.failTransfer(ctx, tx, transfer, err)
	}

	if err := to.ValidateActive(); err != nil {
		return uc.failTransfer(ctx, tx, transfer, err)
	}

	if from.Currency != transfer.Currency || to.Currency != transfer.Currency {
		return uc.failTransfer(ctx, tx, transfer, domain.ErrCurrencyMismatch)
	}

	if err := from.ValidateWithdrawal(transfer.Amount); err != nil {
		return uc.failTransfer(ctx, tx, transfer, err)
	}

	now := time.Now().UTC()

	// Both legs share one reference and one unit of work.
	_, err = uc.ledger.applyMovement(ctx, tx, from, transfer.Amount.Neg(), domain.OperationTransferOut, transfer.ReferenceNumber, transfer.Description, now)
	if err != nil {
		return nil, err
	}

	_, err = uc.ledger.applyMovement(ctx, tx, to, transfer.Amount, domain.OperationTransferIn, transfer.ReferenceNumber, transfer.Description, now)
	if err != nil {
		return nil, err
	}

	err = uc.transferRepo.UpdateStatus(ctx, tx, transfer.ID, domain.TransferStatusCompleted, &now, "", now)
	if err != nil {
		return nil, err
	}

	transfer.Status = domain.TransferStatusCompleted
	transfer.CompletedAt = &now
	transfer.UpdatedAt = now

	err = uc.outboxRepo.Create(ctx, tx, uc.transferEvent(transfer, domain.EventTypeTransferCompleted, now))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transfer, nil
}

// failTransfer marks the transfer failed and commits that status with zero
// ledger writes, then surfaces the business error to the caller.
func (uc *TransferUseCase) failTransfer(ctx context.Context, tx Transaction, transfer *domain.Transfer, cause error) (*domain.Transfer, error) {
	now := time.Now().UTC()

	err := uc.transferRepo.UpdateStatus(ctx, tx, transfer.ID, domain.TransferStatusFailed, nil, cause.Error(), now)
	if err != nil {
		return nil, err
	}

	transfer.Status = domain.TransferStatusFailed
	transfer.FailureReason = cause.Error()
	transfer.UpdatedAt = now

	err = uc.outboxRepo.Create(ctx, tx, uc.transferEvent(transfer, domain.EventTypeTransferFailed, now))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transfer, cause
}

// Cancel transitions a pending or scheduled transfer to cancelled. It takes
// the same transfer row lock as Execute so a racing execution resolves
// deterministically.
func (uc *TransferUseCase) Cancel(ctx context.Context, id string) (*domain.Transfer, error) {
	var (
		transfer *domain.Transfer
		bizErr   error
	)

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		transfer, err = uc.cancelOnce(ctx, id)
		if err != nil && isBusinessError(err) {
			bizErr = err
			return nil
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return transfer, bizErr
}

func (uc *TransferUseCase) cancelOnce(ctx context.Context, id string) (*domain.Transfer, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !transfer.Cancellable() {
		return transfer, domain.ErrInvalidStateTransition
	}

	now := time.Now().UTC()

	err = uc.transferRepo.UpdateStatus(ctx, tx, transfer.ID, domain.TransferStatusCancelled, nil, "", now)
	if err != nil {
		return nil, err
	}

	transfer.Status = domain.TransferStatusCancelled
	transfer.UpdatedAt = now

	err = uc.outboxRepo.Create(ctx, tx, uc.transferEvent(transfer, domain.EventTypeTransferCancelled, now))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transfer, nil
}

// markFailed moves a transfer to failed in its own unit of work. Used by the
// scheduled runner after transient-error retries are exhausted.
func (uc *TransferUseCase) markFailed(ctx context.Context, id, reason string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if transfer.Status.IsTerminal() {
		return nil
	}

	now := time.Now().UTC()

	err = uc.transferRepo.UpdateStatus(ctx, tx, transfer.ID, domain.TransferStatusFailed, nil, reason, now)
	if err != nil {
		return err
	}

	transfer.Status = domain.TransferStatusFailed
	transfer.FailureReason = reason

	err = uc.outboxRepo.Create(ctx, tx, uc.transferEvent(transfer, domain.EventTypeTransferFailed, now))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccountInput represents input for listing transfers.
type ListTransfersByAccountInput struct {
	AccountID int64
	Limit     int
	Offset    int
}

// ListTransfersByAccount lists transfers touching an account.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, input ListTransfersByAccountInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

func (uc *TransferUseCase) transferEvent(transfer *domain.Transfer, eventType string, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transfer.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     eventType,
		Payload: domain.TransferEvent{
			TransferID:      transfer.ID,
			FromAccountID:   transfer.FromAccountID,
			ToAccountID:     transfer.ToAccountID,
			Amount:          transfer.Amount.String(),
			Currency:        transfer.Currency,
			ReferenceNumber: transfer.ReferenceNumber,
			Status:          string(transfer.Status),
		},
		CreatedAt: now,
	}
}

// isBusinessError reports whether err is a business-rule violation that must
// not be retried automatically.
func isBusinessError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrAccountNotFound,
		domain.ErrTransferNotFound,
		domain.ErrAccountInactive,
		domain.ErrAccountFrozen,
		domain.ErrInsufficientFunds,
		domain.ErrCurrencyMismatch,
		domain.ErrSameAccount,
		domain.ErrInvalidAmount,
		domain.ErrInvalidStateTransition,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}
