package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeBusiness AccountType = "business"
)

// AccountStatus is the lifecycle status of an account. Accounts are never
// deleted; closure is modelled as a status transition.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
	AccountStatusFrozen   AccountStatus = "frozen"
)

// Account represents a bank account holding a balance in a single currency.
// Its balance is mutated only through the ledger use case.
type Account struct {
	ID            int64
	AccountNumber string
	OwnerID       int64
	AccountType   AccountType
	Balance       decimal.Decimal
	Currency      string
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateActive checks that the account may take part in an operation.
func (a *Account) ValidateActive() error {
	switch a.Status {
	case AccountStatusActive:
		return nil
	case AccountStatusFrozen:
		return ErrAccountFrozen
	default:
		return ErrAccountInactive
	}
}

// ValidateWithdrawal checks that amount can be withdrawn without the balance
// going negative.
func (a *Account) ValidateWithdrawal(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	return nil
}
