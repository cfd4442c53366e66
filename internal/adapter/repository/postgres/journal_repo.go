package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

const journalColumns = `id, account_id, operation_type, amount, balance_after, reference_number, status, description, created_at`

// JournalRepository implements usecase.JournalRepository. The backing table
// is append-only; there are no update or delete statements here.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Create appends a journal entry within a transaction. A reference-number
// collision on the same account surfaces as domain.ErrDuplicateReference so
// the caller can regenerate and restart the unit of work.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO journal_entries (id, account_id, operation_type, amount, balance_after, reference_number, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.AccountID,
		string(entry.OperationType),
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.BalanceAfter),
		entry.ReferenceNumber,
		string(entry.Status),
		entry.Description,
		timeToPgTimestamptz(entry.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "journal_entries_reference_account_key") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, entry.ReferenceNumber)
		}

		return err
	}

	return nil
}

// GetByAccount lists entries for an account, newest first.
func (r *JournalRepository) GetByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		accountID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetByReference retrieves the entries recorded under a reference number.
// A transfer yields two rows, a deposit or withdrawal one.
func (r *JournalRepository) GetByReference(ctx context.Context, referenceNumber string) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE reference_number = $1 ORDER BY id`,
		referenceNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*domain.JournalEntry, error) {
	var entries []*domain.JournalEntry

	for rows.Next() {
		var (
			entry                 domain.JournalEntry
			opType, status        string
			amount, balanceAfter  pgtype.Numeric
			createdAt             pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&opType,
			&amount,
			&balanceAfter,
			&entry.ReferenceNumber,
			&status,
			&entry.Description,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		entry.OperationType = domain.OperationType(opType)
		entry.Amount = numericToDecimal(amount)
		entry.BalanceAfter = numericToDecimal(balanceAfter)
		entry.Status = domain.EntryStatus(status)
		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
