package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
)

// maxReferenceAttempts bounds how often an operation is restarted with a
// fresh reference after hitting the uniqueness constraint.
const maxReferenceAttempts = 3

// LedgerUseCase is the sole authorized path for mutating account balances.
// Every operation runs as one atomic unit of work: row lock, validation,
// balance update and journal append commit together or not at all.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	refGen      ReferenceGenerator
	idGen       IDGenerator
	retrier     Retrier

	// OnReferenceCollision, when set, is called each time a generated
	// reference hits the uniqueness constraint and is regenerated.
	OnReferenceCollision func()
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	refGen ReferenceGenerator,
	idGen IDGenerator,
	retrier Retrier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		refGen:      refGen,
		idGen:       idGen,
		retrier:     retrier,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}

// OperationResult is returned for a committed deposit or withdrawal.
type OperationResult struct {
	ReferenceNumber string
	BalanceAfter    decimal.Decimal
	JournalEntryID  string
	Status          domain.EntryStatus
}

// Deposit credits an account.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*OperationResult, error) {
	return uc.apply(ctx, input.AccountID, input.Amount, domain.OperationDeposit, input.Description)
}

// Withdraw debits an account.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*OperationResult, error) {
	return uc.apply(ctx, input.AccountID, input.Amount, domain.OperationWithdrawal, input.Description)
}

func (uc *LedgerUseCase) apply(
	ctx context.Context,
	accountID int64,
	amount decimal.Decimal,
	opType domain.OperationType,
	description string,
) (*OperationResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	var result *OperationResult

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		result, err = uc.applyWithFreshReference(ctx, accountID, amount, opType, description)

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// applyWithFreshReference restarts the unit of work with a newly generated
// reference whenever the insert collides with the uniqueness constraint.
func (uc *LedgerUseCase) applyWithFreshReference(
	ctx context.Context,
	accountID int64,
	amount decimal.Decimal,
	opType domain.OperationType,
	description string,
) (*OperationResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		result, err := uc.applyOnce(ctx, accountID, amount, opType, description)
		if err == nil {
			return result, nil
		}

		if !errors.Is(err, domain.ErrDuplicateReference) {
			return nil, err
		}

		if uc.OnReferenceCollision != nil {
			uc.OnReferenceCollision()
		}

		lastErr = err
	}

	return nil, errors.Join(domain.ErrReferenceExhausted, lastErr)
}

func (uc *LedgerUseCase) applyOnce(
	ctx context.Context,
	accountID int64,
	amount decimal.Decimal,
	opType domain.OperationType,
	description string,
) (*OperationResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateActive(); err != nil {
		return nil, err
	}

	signed := amount
	if opType == domain.OperationWithdrawal {
		if err := account.ValidateWithdrawal(amount); err != nil {
			return nil, err
		}

		signed = amount.Neg()
	}

	now := time.Now().UTC()
	reference := uc.refGen.Next(opType.ReferencePrefix())

	entry, err := uc.applyMovement(ctx, tx, account, signed, opType, reference, description, now)
	if err != nil {
		return nil, err
	}

	eventType := domain.EventTypeDepositCompleted
	if opType == domain.OperationWithdrawal {
		eventType = domain.EventTypeWithdrawalCompleted
	}

	err = uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload: domain.OperationCompletedEvent{
			AccountID:       account.ID,
			OperationType:   string(opType),
			Amount:          amount.String(),
			BalanceAfter:    entry.BalanceAfter.String(),
			ReferenceNumber: reference,
		},
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &OperationResult{
		ReferenceNumber: reference,
		BalanceAfter:    entry.BalanceAfter,
		JournalEntryID:  entry.ID,
		Status:          domain.EntryStatusCompleted,
	}, nil
}

// applyMovement writes one journal entry and the matching balance update
// inside the caller's transaction. It is the internal mutation primitive
// shared with the transfer use case; the account passed in must be locked.
func (uc *LedgerUseCase) applyMovement(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	signed decimal.Decimal,
	opType domain.OperationType,
	reference, description string,
	now time.Time,
) (*domain.JournalEntry, error) {
	newBalance := account.Balance.Add(signed)

	entry := &domain.JournalEntry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		OperationType:   opType,
		Amount:          signed,
		BalanceAfter:    newBalance,
		ReferenceNumber: reference,
		Status:          domain.EntryStatusCompleted,
		Description:     description,
		CreatedAt:       now,
	}

	if err := uc.journalRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	account.Balance = newBalance
	account.UpdatedAt = now

	return entry, nil
}

// GetAccount retrieves an account by ID.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing journal entries.
type ListEntriesInput struct {
	AccountID int64
	Limit     int
	Offset    int
}

// ListEntries lists journal entries for an account.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.journalRepo.GetByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}
