package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbase/corebank/internal/usecase"
)

// Tx adapts a pgx transaction to usecase.Transaction. Repositories that run
// inside a unit of work downcast to *Tx to reach the pgx handle.
type Tx struct {
	inner pgx.Tx
}

// PgxTx returns the underlying pgx.Tx for repository queries.
func (t *Tx) PgxTx() pgx.Tx {
	return t.inner
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.inner.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.inner.Rollback(ctx)
}

type txStarter interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager starts units of work against the connection pool. It implements
// usecase.TransactionManager.
type TxManager struct {
	db txStarter
}

// NewTxManager creates a TxManager backed by the given pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(db txStarter) *TxManager {
	return &TxManager{db: db}
}

// Begin opens a new database transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &Tx{inner: tx}, nil
}
