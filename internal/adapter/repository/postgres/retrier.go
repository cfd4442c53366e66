package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Transient PostgreSQL failure codes worth retrying: deadlocks, serialization
// failures and lock timeouts.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

const defaultMaxRetries = 3

// Retrier re-runs database units of work that failed with a transient error,
// backing off exponentially between attempts. It implements usecase.Retrier.
type Retrier struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger

	// OnRetry, when set, is called once per re-run attempt.
	OnRetry func()
}

// NewRetrier creates a Retrier with default settings.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      defaultMaxRetries,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// Retry executes the operation, re-running it on transient database errors
// until it succeeds or the retry budget is spent. Non-transient errors are
// returned immediately. Duplicate references are deliberately not transient;
// the use case regenerates the reference and restarts the unit of work
// itself.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	wrapped := func() error {
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		if r.OnRetry != nil {
			r.OnRetry()
		}

		r.logger.Warn("transient database error, retrying",
			"error", err,
			"backoff", wait,
		)
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), r.maxRetries)

	return backoff.RetryNotify(wrapped, policy, notify)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return true
	default:
		return false
	}
}
