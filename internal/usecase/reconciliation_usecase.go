package usecase

import (
	"context"
	"errors"
)

// ErrInconsistentLedger is returned when an account balance does not match
// its journal.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: balances drifted from journal")

// ReconciliationUseCase verifies ledger-wide invariants.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that every account balance equals the sum of its
// completed journal entries. It returns the IDs of drifted accounts, if any.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) ([]int64, error) {
	drifted, err := uc.ledgerRepo.FindDriftedAccounts(ctx)
	if err != nil {
		return nil, err
	}

	if len(drifted) > 0 {
		return drifted, ErrInconsistentLedger
	}

	return nil, nil
}
