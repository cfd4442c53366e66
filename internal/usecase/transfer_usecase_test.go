package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
	"github.com/finbase/corebank/internal/usecase/mocks"
)

type transferFixture struct {
	uc           *usecase.TransferUseCase
	accRepo      *mocks.MockAccountRepository
	transferRepo *mocks.MockTransferRepository
	journalRepo  *mocks.MockJournalRepository
	outboxRepo   *mocks.MockOutboxRepository
	txMgr        *mocks.MockTransactionManager
}

func newTransferFixture() *transferFixture {
	accRepo := mocks.NewMockAccountRepository()
	transferRepo := mocks.NewMockTransferRepository()
	journalRepo := mocks.NewMockJournalRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	txMgr := mocks.NewMockTransactionManager()
	refGen := mocks.NewMockReferenceGenerator()
	idGen := mocks.NewMockIDGenerator()
	retrier := mocks.NewMockRetrier()

	ledger := usecase.NewLedgerUseCase(txMgr, accRepo, journalRepo, outboxRepo, refGen, idGen, retrier)

	return &transferFixture{
		uc:           usecase.NewTransferUseCase(txMgr, accRepo, transferRepo, outboxRepo, ledger, refGen, idGen, retrier),
		accRepo:      accRepo,
		transferRepo: transferRepo,
		journalRepo:  journalRepo,
		outboxRepo:   outboxRepo,
		txMgr:        txMgr,
	}
}

func usdAccount(id int64, balance string) *domain.Account {
	return &domain.Account{
		ID:          id,
		AccountType: domain.AccountTypeChecking,
		Balance:     decimal.RequireFromString(balance),
		Currency:    "USD",
		Status:      domain.AccountStatusActive,
	}
}

func TestTransferUseCase_Initiate(t *testing.T) {
	f := newTransferFixture()
	f.accRepo.Seed(usdAccount(1, "150.00"))
	f.accRepo.Seed(usdAccount(2, "20.00"))

	transfer, err := f.uc.Initiate(context.Background(), usecase.TransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.RequireFromString("50.00"),
		Description:   "rent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transfer.Status != domain.TransferStatusCompleted {
		t.Errorf("expected completed, got %s", transfer.Status)
	}

	if !strings.HasPrefix(transfer.ReferenceNumber, "TRF") {
		t.Errorf("expected TRF reference, got %s", transfer.ReferenceNumber)
	}

	if transfer.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	from, _ := f.accRepo.GetByID(context.Background(), 1)
	to, _ := f.accRepo.GetByID(context.Background(), 2)

	if !from.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected source balance 100.00, got %s", from.Balance)
	}

	if !to.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("expected destination balance 70.00, got %s", to.Balance)
	}

	// Exactly two entries: equal magnitude, opposite sign, shared reference.
	entries := f.journalRepo.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}

	if !entries[0].Amount.Neg().Equal(entries[1].Amount) {
		t.Errorf("entry amounts not opposite: %s / %s", entries[0].Amount, entries[1].Amount)
	}

	if entries[0].ReferenceNumber != entries[1].ReferenceNumber {
		t.Errorf("entries do not share a reference: %s / %s", entries[0].ReferenceNumber, entries[1].ReferenceNumber)
	}

	if entries[0].ReferenceNumber != transfer.ReferenceNumber {
		t.Errorf("entry reference %s does not match transfer reference %s", entries[0].ReferenceNumber, transfer.ReferenceNumber)
	}
}

func TestTransferUseCase_InitiateValidation(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *transferFixture)
		input     usecase.TransferInput
		errorType error
	}{
		{
			name: "same account",
			setup: func(f *transferFixture) {
				f.accRepo.Seed(usdAccount(1, "100.00"))
			},
			input:     usecase.TransferInput{FromAccountID: 1, ToAccountID: 1, Amount: decimal.NewFromInt(10)},
			errorType: domain.ErrSameAccount,
		},
		{
			name:      "non-positive amount",
			setup:     func(f *transferFixture) {},
			input:     usecase.TransferInput{FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(-5)},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "missing destination",
			setup: func(f *transferFixture) {
				f.accRepo.Seed(usdAccount(1, "100.00"))
			},
			input:     usecase.TransferInput{FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(10)},
			errorType: domain.ErrAccountNotFound,
		},
		{
			name: "currency mismatch",
			setup: func(f *transferFixture) {
				f.accRepo.Seed(usdAccount(1, "100.00"))
				eur := usdAccount(2, "20.00")
				eur.Currency = "EUR"
				f.accRepo.Seed(eur)
			},
			input:     usecase.TransferInput{FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(10)},
			errorType: domain.ErrCurrencyMismatch,
		},
		{
			name: "inactive source",
			setup: func(f *transferFixture) {
				acc := usdAccount(1, "100.00")
				acc.Status = domain.AccountStatusInactive
				f.accRepo.Seed(acc)
				f.accRepo.Seed(usdAccount(2, "20.00"))
			},
			input:     usecase.TransferInput{FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(10)},
			errorType: domain.ErrAccountInactive,
		},
		{
			name: "insufficient funds",
			setup: func(f *transferFixture) {
				f.accRepo.Seed(usdAccount(1, "5.00"))
				f.accRepo.Seed(usdAccount(2, "20.00"))
			},
			input:     usecase.TransferInput{FromAccountID: 1, ToAccountID: 2, Amount: decimal.NewFromInt(10)},
			errorType: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture()
			tt.setup(f)

			_, err := f.uc.Initiate(context.Background(), tt.input)
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}

			// Rejected before any lock: no unit of work, no ledger writes.
			if n := len(f.txMgr.Transactions()); n != 0 {
				t.Errorf("expected no transactions, got %d", n)
			}

			if n := len(f.journalRepo.Entries()); n != 0 {
				t.Errorf("expected no journal entries, got %d", n)
			}
		})
	}
}

func TestTransferUseCase_Scheduled(t *testing.T) {
	f := newTransferFixture()
	f.accRepo.Seed(usdAccount(1, "150.00"))
	f.accRepo.Seed(usdAccount(2, "20.00"))

	scheduledAt := time.Now().UTC().Add(24 * time.Hour)

	transfer, err := f.uc.Initiate(context.Background(), usecase.TransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.RequireFromString("50.00"),
		ScheduledAt:   &scheduledAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transfer.Status != domain.TransferStatusScheduled {
		t.Fatalf("expected scheduled, got %s", transfer.Status)
	}

	// Balances untouched until execution.
	from, _ := f.accRepo.GetByID(context.Background(), 1)
	if !from.Balance.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("scheduled transfer touched balance: %s", from.Balance)
	}

	if n := len(f.journalRepo.Entries()); n != 0 {
		t.Errorf("expected no journal entries, got %d", n)
	}

	// Executing later completes it.
	executed, err := f.uc.Execute(context.Background(), transfer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if executed.Status != domain.TransferStatusCompleted {
		t.Errorf("expected completed, got %s", executed.Status)
	}

	if n := len(f.journalRepo.Entries()); n != 2 {
		t.Errorf("expected 2 journal entries, got %d", n)
	}
}

// Funds may evaporate between scheduling and execution; the transfer must
// fail under lock with zero ledger writes.
func TestTransferUseCase_ExecuteInsufficientAtRuntime(t *testing.T) {
	f := newTransferFixture()
	source := usdAccount(1, "150.00")
	f.accRepo.Seed(source)
	f.accRepo.Seed(usdAccount(2, "20.00"))

	scheduledAt := time.Now().UTC().Add(time.Hour)

	transfer, err := f.uc.Initiate(context.Background(), usecase.TransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.RequireFromString("100.00"),
		ScheduledAt:   &scheduledAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Drain the source before execution.
	source.Balance = decimal.RequireFromString("10.00")

	_, err = f.uc.Execute(context.Background(), transfer.ID)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	stored, _ := f.transferRepo.GetByID(context.Background(), transfer.ID)
	if stored.Status != domain.TransferStatusFailed {
		t.Errorf("expected failed, got %s", stored.Status)
	}

	if stored.FailureReason == "" {
		t.Error("expected failure reason to be recorded")
	}

	if n := len(f.journalRepo.Entries()); n != 0 {
		t.Errorf("failed transfer produced %d journal entries", n)
	}
}

func TestTransferUseCase_Cancel(t *testing.T) {
	newScheduled := func(f *transferFixture, status domain.TransferStatus) *domain.Transfer {
		transfer := &domain.Transfer{
			ID:            "trf-1",
			FromAccountID: 1,
			ToAccountID:   2,
			Amount:        decimal.NewFromInt(10),
			Currency:      "USD",
			Status:        status,
		}
		f.transferRepo.Create(context.Background(), nil, transfer)

		return transfer
	}

	t.Run("cancel scheduled", func(t *testing.T) {
		f := newTransferFixture()
		newScheduled(f, domain.TransferStatusScheduled)

		transfer, err := f.uc.Cancel(context.Background(), "trf-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if transfer.Status != domain.TransferStatusCancelled {
			t.Errorf("expected cancelled, got %s", transfer.Status)
		}
	})

	t.Run("cancel pending", func(t *testing.T) {
		f := newTransferFixture()
		newScheduled(f, domain.TransferStatusPending)

		transfer, err := f.uc.Cancel(context.Background(), "trf-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if transfer.Status != domain.TransferStatusCancelled {
			t.Errorf("expected cancelled, got %s", transfer.Status)
		}
	})

	for _, status := range []domain.TransferStatus{
		domain.TransferStatusCompleted,
		domain.TransferStatusFailed,
		domain.TransferStatusCancelled,
	} {
		t.Run("cancel "+string(status), func(t *testing.T) {
			f := newTransferFixture()
			newScheduled(f, status)

			transfer, err := f.uc.Cancel(context.Background(), "trf-1")
			if !errors.Is(err, domain.ErrInvalidStateTransition) {
				t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
			}

			if transfer.Status != status {
				t.Errorf("terminal status changed: %s -> %s", status, transfer.Status)
			}
		})
	}
}

// A cancel that wins the race makes a later execution report
// InvalidStateTransition instead of moving money.
func TestTransferUseCase_CancelThenExecute(t *testing.T) {
	f := newTransferFixture()
	f.accRepo.Seed(usdAccount(1, "150.00"))
	f.accRepo.Seed(usdAccount(2, "20.00"))

	scheduledAt := time.Now().UTC().Add(time.Hour)

	transfer, err := f.uc.Initiate(context.Background(), usecase.TransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromInt(50),
		ScheduledAt:   &scheduledAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.uc.Cancel(context.Background(), transfer.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err = f.uc.Execute(context.Background(), transfer.ID)
	if !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	if n := len(f.journalRepo.Entries()); n != 0 {
		t.Errorf("cancelled transfer produced %d journal entries", n)
	}
}

func TestTransferUseCase_GetTransfer(t *testing.T) {
	f := newTransferFixture()

	f.transferRepo.Create(context.Background(), nil, &domain.Transfer{
		ID:            "trf-123",
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromInt(100),
	})

	t.Run("get existing transfer", func(t *testing.T) {
		transfer, err := f.uc.GetTransfer(context.Background(), "trf-123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if transfer.ID != "trf-123" {
			t.Errorf("expected ID trf-123, got %s", transfer.ID)
		}
	})

	t.Run("get missing transfer", func(t *testing.T) {
		_, err := f.uc.GetTransfer(context.Background(), "nope")
		if !errors.Is(err, domain.ErrTransferNotFound) {
			t.Fatalf("expected ErrTransferNotFound, got %v", err)
		}
	})
}
