package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
)

// AccountUseCase manages account lifecycle. Balances are never touched here;
// all balance movement goes through LedgerUseCase.
type AccountUseCase struct {
	accountRepo AccountRepository
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository) *AccountUseCase {
	return &AccountUseCase{accountRepo: accountRepo}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	OwnerID     int64
	AccountType domain.AccountType
	Currency    string
}

// Open creates a new active account with a zero balance.
func (uc *AccountUseCase) Open(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	switch input.AccountType {
	case domain.AccountTypeChecking, domain.AccountTypeSavings, domain.AccountTypeBusiness:
	default:
		return nil, fmt.Errorf("%w: unknown account type %q", domain.ErrInvalidAccountType, input.AccountType)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		AccountNumber: newAccountNumber(),
		OwnerID:       input.OwnerID,
		AccountType:   input.AccountType,
		Balance:       decimal.Zero,
		Currency:      input.Currency,
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Get retrieves an account by ID.
func (uc *AccountUseCase) Get(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetByNumber retrieves an account by its account number.
func (uc *AccountUseCase) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.accountRepo.GetByNumber(ctx, accountNumber)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// List lists accounts with pagination.
func (uc *AccountUseCase) List(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// SetStatus moves an account to a new lifecycle status. Accounts are never
// deleted; closure is modelled as the inactive status.
func (uc *AccountUseCase) SetStatus(ctx context.Context, id int64, status domain.AccountStatus) (*domain.Account, error) {
	switch status {
	case domain.AccountStatusActive, domain.AccountStatusInactive, domain.AccountStatusFrozen:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidStateTransition, status)
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.Status == status {
		return account, nil
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}

	account.Status = status
	account.UpdatedAt = now

	return account, nil
}

// newAccountNumber produces a 12-digit account number with a fixed bank
// prefix. Uniqueness is enforced by the accounts table constraint.
func newAccountNumber() string {
	max := big.NewInt(1_000_000_0000)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1_000_000_0000)
	}

	return fmt.Sprintf("30%010d", n)
}
