package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

func scheduleTransfer(f *transferFixture, id string, amount string, due time.Time) *domain.Transfer {
	transfer := &domain.Transfer{
		ID:            id,
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		Status:        domain.TransferStatusScheduled,
		ScheduledAt:   &due,
	}
	f.transferRepo.Create(context.Background(), nil, transfer)

	return transfer
}

func newRunner(f *transferFixture, onFail func(string)) *usecase.ScheduledTransferRunner {
	return usecase.NewScheduledTransferRunner(usecase.RunnerConfig{
		Transfers:          f.uc,
		TransferRepo:       f.transferRepo,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Interval:           10 * time.Millisecond,
		BatchSize:          10,
		MaxElapsed:         50 * time.Millisecond,
		OnPermanentFailure: onFail,
	})
}

func TestScheduledTransferRunner_ExecutesDue(t *testing.T) {
	f := newTransferFixture()
	f.accRepo.Seed(usdAccount(1, "150.00"))
	f.accRepo.Seed(usdAccount(2, "20.00"))

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	due := scheduleTransfer(f, "trf-due", "50.00", past)
	notDue := scheduleTransfer(f, "trf-later", "25.00", future)

	runner := newRunner(f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := runner.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	stored, _ := f.transferRepo.GetByID(context.Background(), due.ID)
	if stored.Status != domain.TransferStatusCompleted {
		t.Errorf("due transfer not executed: %s", stored.Status)
	}

	later, _ := f.transferRepo.GetByID(context.Background(), notDue.ID)
	if later.Status != domain.TransferStatusScheduled {
		t.Errorf("future transfer should stay scheduled, got %s", later.Status)
	}

	from, _ := f.accRepo.GetByID(context.Background(), 1)
	if !from.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected source balance 100.00, got %s", from.Balance)
	}
}

func TestScheduledTransferRunner_BusinessFailureNotRetried(t *testing.T) {
	f := newTransferFixture()
	f.accRepo.Seed(usdAccount(1, "10.00"))
	f.accRepo.Seed(usdAccount(2, "20.00"))

	past := time.Now().UTC().Add(-time.Minute)
	transfer := scheduleTransfer(f, "trf-poor", "50.00", past)

	var executions int

	f.transferRepo.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transfer, error) {
		executions++
		return f.transferRepo.GetByID(ctx, id)
	}

	runner := newRunner(f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	runner.Start(ctx)

	stored, _ := f.transferRepo.GetByID(context.Background(), transfer.ID)
	if stored.Status != domain.TransferStatusFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}

	// First pass executes and fails terminally; once failed the transfer is
	// no longer due, so it must not be picked up again.
	if executions != 1 {
		t.Errorf("expected exactly 1 execution attempt, got %d", executions)
	}

	if n := len(f.journalRepo.Entries()); n != 0 {
		t.Errorf("failed transfer produced %d journal entries", n)
	}
}

func TestScheduledTransferRunner_TransientFailureMarksFailed(t *testing.T) {
	f := newTransferFixture()
	f.accRepo.Seed(usdAccount(1, "150.00"))
	f.accRepo.Seed(usdAccount(2, "20.00"))

	past := time.Now().UTC().Add(-time.Minute)
	transfer := scheduleTransfer(f, "trf-flaky", "50.00", past)

	// The store keeps failing with a transient error during execution only;
	// the final mark-failed write is allowed through.
	storeErr := errors.New("connection refused")

	f.accRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
		return nil, storeErr
	}

	var failed []string

	runner := newRunner(f, func(id string) { failed = append(failed, id) })

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	runner.Start(ctx)

	stored, _ := f.transferRepo.GetByID(context.Background(), transfer.ID)
	if stored.Status != domain.TransferStatusFailed {
		t.Fatalf("expected failed after retries, got %s", stored.Status)
	}

	if len(failed) == 0 || failed[0] != transfer.ID {
		t.Errorf("permanent-failure hook not invoked: %v", failed)
	}
}
