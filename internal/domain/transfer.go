package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle status of a transfer.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusScheduled TransferStatus = "scheduled"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusCancelled TransferStatus = "cancelled"
	TransferStatusFailed    TransferStatus = "failed"
)

// IsTerminal reports whether no further transition may leave the status.
func (s TransferStatus) IsTerminal() bool {
	switch s {
	case TransferStatusCompleted, TransferStatusCancelled, TransferStatusFailed:
		return true
	}

	return false
}

// CanTransitionTo reports whether the status may move to next.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case TransferStatusPending, TransferStatusScheduled:
		return next == TransferStatusCompleted ||
			next == TransferStatusCancelled ||
			next == TransferStatusFailed
	}

	return false
}

// Transfer represents a money movement between two accounts of the same
// currency. A completed transfer always has exactly two journal entries
// sharing its reference number.
type Transfer struct {
	ID              string
	FromAccountID   int64
	ToAccountID     int64
	Amount          decimal.Decimal
	Currency        string
	ReferenceNumber string
	Status          TransferStatus
	Description     string
	ScheduledAt     *time.Time
	CompletedAt     *time.Time
	FailureReason   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the request-level invariants of a transfer.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// Cancellable reports whether the transfer may still be cancelled.
func (t *Transfer) Cancellable() bool {
	return t.Status == TransferStatusPending || t.Status == TransferStatusScheduled
}
