package domain

import "time"

// Event types
const (
	EventTypeDepositCompleted    = "operation.deposit.completed"
	EventTypeWithdrawalCompleted = "operation.withdrawal.completed"
	EventTypeTransferCompleted   = "transfer.completed"
	EventTypeTransferScheduled   = "transfer.scheduled"
	EventTypeTransferCancelled   = "transfer.cancelled"
	EventTypeTransferFailed      = "transfer.failed"
)

// Aggregate types
const (
	AggregateTypeAccount  = "account"
	AggregateTypeTransfer = "transfer"
)

// OutboxEvent represents a notification to be delivered after commit.
// It is written in the same unit of work as the ledger mutation and
// dispatched asynchronously, never before the commit.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// OperationCompletedEvent payload for deposits and withdrawals.
type OperationCompletedEvent struct {
	AccountID       int64  `json:"account_id"`
	OperationType   string `json:"operation_type"`
	Amount          string `json:"amount"`
	BalanceAfter    string `json:"balance_after"`
	ReferenceNumber string `json:"reference_number"`
}

// TransferEvent payload for transfer lifecycle notifications.
type TransferEvent struct {
	TransferID      string `json:"transfer_id"`
	FromAccountID   int64  `json:"from_account_id"`
	ToAccountID     int64  `json:"to_account_id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	ReferenceNumber string `json:"reference_number"`
	Status          string `json:"status"`
}
