package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"account_number"`
	OwnerID       int64           `json:"owner_id"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		OwnerID:       a.OwnerID,
		AccountType:   string(a.AccountType),
		Balance:       a.Balance,
		Currency:      a.Currency,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// OperationResponse represents the outcome of a committed deposit or
// withdrawal.
type OperationResponse struct {
	ReferenceNumber string          `json:"reference_number"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	JournalEntryID  string          `json:"journal_entry_id"`
	Status          string          `json:"status"`
}

// OperationFromResult converts a use case result to a response.
func OperationFromResult(res *usecase.OperationResult) *OperationResponse {
	return &OperationResponse{
		ReferenceNumber: res.ReferenceNumber,
		BalanceAfter:    res.BalanceAfter,
		JournalEntryID:  res.JournalEntryID,
		Status:          string(res.Status),
	}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID              string          `json:"id"`
	FromAccountID   int64           `json:"from_account_id"`
	ToAccountID     int64           `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ReferenceNumber string          `json:"reference_number"`
	Status          string          `json:"status"`
	Description     string          `json:"description,omitempty"`
	ScheduledAt     *time.Time      `json:"scheduled_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:              t.ID,
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		ReferenceNumber: t.ReferenceNumber,
		Status:          string(t.Status),
		Description:     t.Description,
		ScheduledAt:     t.ScheduledAt,
		CompletedAt:     t.CompletedAt,
		FailureReason:   t.FailureReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID              string          `json:"id"`
	AccountID       int64           `json:"account_id"`
	OperationType   string          `json:"operation_type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	ReferenceNumber string          `json:"reference_number"`
	Status          string          `json:"status"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain journal entry to a response.
func EntryFromDomain(e *domain.JournalEntry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		OperationType:   string(e.OperationType),
		Amount:          e.Amount,
		BalanceAfter:    e.BalanceAfter,
		ReferenceNumber: e.ReferenceNumber,
		Status:          string(e.Status),
		Description:     e.Description,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain journal entries to responses.
func EntriesFromDomain(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ConsistencyResponse reports the outcome of a ledger consistency check.
type ConsistencyResponse struct {
	Consistent      bool    `json:"consistent"`
	DriftedAccounts []int64 `json:"drifted_accounts,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
