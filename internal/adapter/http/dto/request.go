package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	OwnerID     int64  `json:"owner_id"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		OwnerID:     r.OwnerID,
		AccountType: domain.AccountType(r.AccountType),
		Currency:    r.Currency,
	}
}

// UpdateAccountStatusRequest represents a request to change account status.
type UpdateAccountStatusRequest struct {
	Status string `json:"status"`
}

// OperationRequest represents a deposit or withdrawal request.
type OperationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	ScheduledAt   *time.Time      `json:"scheduled_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
		ScheduledAt:   r.ScheduledAt,
	}
}
