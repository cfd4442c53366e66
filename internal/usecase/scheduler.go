package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ScheduledTransferRunner periodically promotes due scheduled transfers into
// immediate execution. Business-rule failures are terminal; transient storage
// failures are retried with exponential backoff and then marked failed.
type ScheduledTransferRunner struct {
	transfers    *TransferUseCase
	transferRepo TransferRepository
	logger       *slog.Logger
	interval     time.Duration
	batchSize    int
	maxElapsed   time.Duration

	// onPermanentFailure is invoked when a transfer is given up on after
	// exhausting transient-error retries. Wired to monitoring by the caller.
	onPermanentFailure func(transferID string)
}

// RunnerConfig configures the ScheduledTransferRunner.
type RunnerConfig struct {
	Transfers          *TransferUseCase
	TransferRepo       TransferRepository
	Logger             *slog.Logger
	Interval           time.Duration // polling interval
	BatchSize          int           // transfers fetched per tick
	MaxElapsed         time.Duration // backoff budget per transfer
	OnPermanentFailure func(transferID string)
}

// NewScheduledTransferRunner creates a new ScheduledTransferRunner.
func NewScheduledTransferRunner(cfg RunnerConfig) *ScheduledTransferRunner {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}

	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = 30 * time.Second
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &ScheduledTransferRunner{
		transfers:          cfg.Transfers,
		transferRepo:       cfg.TransferRepo,
		logger:             cfg.Logger,
		interval:           cfg.Interval,
		batchSize:          cfg.BatchSize,
		maxElapsed:         cfg.MaxElapsed,
		onPermanentFailure: cfg.OnPermanentFailure,
	}
}

// Start runs the scheduler loop until the context is cancelled.
func (r *ScheduledTransferRunner) Start(ctx context.Context) error {
	r.logger.Info("scheduled transfer runner started",
		slog.Duration("interval", r.interval),
		slog.Int("batch_size", r.batchSize))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Process immediately on start
	if err := r.processDue(ctx); err != nil {
		r.logger.Error("error processing due transfers on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduled transfer runner shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := r.processDue(ctx); err != nil {
				r.logger.Error("error processing due transfers", slog.String("error", err.Error()))
			}
		}
	}
}

// processDue fetches and executes one batch of due scheduled transfers.
func (r *ScheduledTransferRunner) processDue(ctx context.Context) error {
	due, err := r.transferRepo.ListDueScheduled(ctx, time.Now().UTC(), r.batchSize)
	if err != nil {
		return err
	}

	if len(due) == 0 {
		return nil
	}

	r.logger.Info("executing due transfers", slog.Int("count", len(due)))

	for _, transfer := range due {
		r.runOne(ctx, transfer.ID)
	}

	return nil
}

// runOne executes a single transfer, retrying transient errors with
// exponential backoff. A transfer that still cannot be executed after the
// backoff budget is marked failed.
func (r *ScheduledTransferRunner) runOne(ctx context.Context, transferID string) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = r.maxElapsed

	err := backoff.Retry(func() error {
		_, err := r.transfers.Execute(ctx, transferID)
		if err == nil {
			return nil
		}

		if isBusinessError(err) {
			// Execute already marked the transfer failed; do not retry.
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(b, ctx))

	if err == nil {
		r.logger.Info("scheduled transfer executed", slog.String("transfer_id", transferID))
		return
	}

	if isBusinessError(err) {
		r.logger.Warn("scheduled transfer failed",
			slog.String("transfer_id", transferID),
			slog.String("reason", err.Error()))

		return
	}

	r.logger.Error("scheduled transfer gave up after retries",
		slog.String("transfer_id", transferID),
		slog.String("error", err.Error()))

	if markErr := r.transfers.markFailed(ctx, transferID, err.Error()); markErr != nil {
		r.logger.Error("failed to mark transfer failed",
			slog.String("transfer_id", transferID),
			slog.String("error", markErr.Error()))
	}

	if r.onPermanentFailure != nil {
		r.onPermanentFailure(transferID)
	}
}
