package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType identifies the kind of balance movement a journal entry
// records.
type OperationType string

const (
	OperationDeposit     OperationType = "deposit"
	OperationWithdrawal  OperationType = "withdrawal"
	OperationTransferIn  OperationType = "transfer_in"
	OperationTransferOut OperationType = "transfer_out"
)

// ReferencePrefix returns the reference-number prefix for the operation.
// Both legs of a transfer share the TRF prefix (and the same reference).
func (t OperationType) ReferencePrefix() string {
	switch t {
	case OperationDeposit:
		return "DEP"
	case OperationWithdrawal:
		return "WTH"
	default:
		return "TRF"
	}
}

// EntryStatus is the status of a journal entry.
type EntryStatus string

const (
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusFailed    EntryStatus = "failed"
)

// JournalEntry is an immutable record of one signed balance change.
// Entries are created exactly once per committed operation and never
// updated or deleted.
type JournalEntry struct {
	ID              string
	AccountID       int64
	OperationType   OperationType
	Amount          decimal.Decimal // signed: negative for debits
	BalanceAfter    decimal.Decimal // snapshot at commit time, not recomputed
	ReferenceNumber string
	Status          EntryStatus
	Description     string
	CreatedAt       time.Time
}
