package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
	"github.com/finbase/corebank/internal/usecase/mocks"
)

func TestAccountUseCase_Open(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	uc := usecase.NewAccountUseCase(repo)

	account, err := uc.Open(context.Background(), usecase.OpenAccountInput{
		OwnerID:     7,
		AccountType: domain.AccountTypeChecking,
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if !account.Balance.IsZero() {
		t.Errorf("new account must start at zero, got %s", account.Balance)
	}

	if account.Status != domain.AccountStatusActive {
		t.Errorf("expected active status, got %s", account.Status)
	}

	if matched, _ := regexp.MatchString(`^30\d{10}$`, account.AccountNumber); !matched {
		t.Errorf("unexpected account number format: %s", account.AccountNumber)
	}
}

func TestAccountUseCase_OpenValidation(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	uc := usecase.NewAccountUseCase(repo)

	tests := []struct {
		name    string
		input   usecase.OpenAccountInput
		wantErr error
	}{
		{
			name:    "bad currency",
			input:   usecase.OpenAccountInput{OwnerID: 1, AccountType: domain.AccountTypeChecking, Currency: "XYZ"},
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name:    "bad account type",
			input:   usecase.OpenAccountInput{OwnerID: 1, AccountType: "retirement", Currency: "USD"},
			wantErr: domain.ErrInvalidAccountType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Open(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccountUseCase_SetStatus(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	repo.Seed(&domain.Account{ID: 1, Status: domain.AccountStatusActive})

	uc := usecase.NewAccountUseCase(repo)

	account, err := uc.SetStatus(context.Background(), 1, domain.AccountStatusFrozen)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	if account.Status != domain.AccountStatusFrozen {
		t.Errorf("expected frozen, got %s", account.Status)
	}

	if _, err := uc.SetStatus(context.Background(), 1, "deleted"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}

	if _, err := uc.SetStatus(context.Background(), 99, domain.AccountStatusActive); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
