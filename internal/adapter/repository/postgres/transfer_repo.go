package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

const transferColumns = `id, from_account_id, to_account_id, amount, currency, reference_number, status, description, scheduled_at, completed_at, failure_reason, created_at, updated_at`

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

// Create inserts a new transfer. Reference-number collisions surface as
// domain.ErrDuplicateReference.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO transfers (id, from_account_id, to_account_id, amount, currency, reference_number, status, description, scheduled_at, completed_at, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		transfer.ID,
		transfer.FromAccountID,
		transfer.ToAccountID,
		decimalToNumeric(transfer.Amount),
		transfer.Currency,
		transfer.ReferenceNumber,
		string(transfer.Status),
		transfer.Description,
		timePtrToPgTimestamptz(transfer.ScheduledAt),
		timePtrToPgTimestamptz(transfer.CompletedAt),
		transfer.FailureReason,
		timeToPgTimestamptz(transfer.CreatedAt),
		timeToPgTimestamptz(transfer.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "transfers_reference_number_key") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, transfer.ReferenceNumber)
		}

		return err
	}

	return nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	return scanTransfer(r.pool.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a transfer with a FOR UPDATE lock. The transfer
// row is locked before any account row so that execute and cancel serialize
// on it.
func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transfer, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanTransfer(pgxTx.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id))
}

// UpdateStatus moves a transfer to a new status.
func (r *TransferRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, completedAt *time.Time, failureReason string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE transfers SET status = $2, completed_at = $3, failure_reason = $4, updated_at = $5 WHERE id = $1`,
		id, string(status), timePtrToPgTimestamptz(completedAt), failureReason, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}

	return nil
}

// ListByAccount lists transfers touching an account, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE from_account_id = $1 OR to_account_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

// ListDueScheduled returns scheduled transfers whose scheduled_at has passed,
// oldest first.
func (r *TransferRepository) ListDueScheduled(ctx context.Context, due time.Time, limit int) ([]*domain.Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE status = $1 AND scheduled_at <= $2
		 ORDER BY scheduled_at LIMIT $3`,
		string(domain.TransferStatusScheduled), timeToPgTimestamptz(due), int32(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransfers(rows)
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	transfer, err := scanTransferRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return transfer, nil
}

func scanTransferRow(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer             domain.Transfer
		amount               pgtype.Numeric
		status               string
		scheduledAt          pgtype.Timestamptz
		completedAt          pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.FromAccountID,
		&transfer.ToAccountID,
		&amount,
		&transfer.Currency,
		&transfer.ReferenceNumber,
		&status,
		&transfer.Description,
		&scheduledAt,
		&completedAt,
		&transfer.FailureReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	transfer.Amount = numericToDecimal(amount)
	transfer.Status = domain.TransferStatus(status)
	transfer.ScheduledAt = pgTimestamptzToTimePtr(scheduledAt)
	transfer.CompletedAt = pgTimestamptzToTimePtr(completedAt)
	transfer.CreatedAt = createdAt.Time
	transfer.UpdatedAt = updatedAt.Time

	return &transfer, nil
}

func collectTransfers(rows pgx.Rows) ([]*domain.Transfer, error) {
	var transfers []*domain.Transfer

	for rows.Next() {
		transfer, err := scanTransferRow(rows)
		if err != nil {
			return nil, err
		}

		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}
