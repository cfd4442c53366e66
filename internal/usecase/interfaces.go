package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id int64, status domain.AccountStatus, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// JournalRepository defines append-only data access for journal entries.
type JournalRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.JournalEntry, error)
	GetByReference(ctx context.Context, referenceNumber string) ([]*domain.JournalEntry, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transfer, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransferStatus, completedAt *time.Time, failureReason string, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error)
	ListDueScheduled(ctx context.Context, due time.Time, limit int) ([]*domain.Transfer, error)
}

// LedgerRepository defines ledger-wide consistency queries.
type LedgerRepository interface {
	// FindDriftedAccounts returns the IDs of accounts whose balance does not
	// equal the sum of their completed journal entries.
	FindDriftedAccounts(ctx context.Context) ([]int64, error)
}

// OutboxRepository defines data access for outbox notifications.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique row IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator produces human-traceable operation references.
type ReferenceGenerator interface {
	Next(prefix string) string
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
