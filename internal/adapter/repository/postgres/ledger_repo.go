package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// FindDriftedAccounts returns the IDs of accounts whose stored balance does
// not match the sum of their completed journal entries. Accounts without any
// entries must sit at zero.
func (r *LedgerRepository) FindDriftedAccounts(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id
		FROM accounts a
		LEFT JOIN (
			SELECT account_id, SUM(amount) AS total
			FROM journal_entries
			WHERE status = 'completed'
			GROUP BY account_id
		) j ON j.account_id = a.id
		WHERE a.balance <> COALESCE(j.total, 0)
		ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifted []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		drifted = append(drifted, id)
	}

	return drifted, rows.Err()
}
