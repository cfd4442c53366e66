package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbase/corebank/internal/adapter/http/handler"
	"github.com/finbase/corebank/internal/usecase"
)

type stubConsistencyService struct {
	checkFn func(ctx context.Context) ([]int64, error)
}

func (s *stubConsistencyService) CheckConsistency(ctx context.Context) ([]int64, error) {
	return s.checkFn(ctx)
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	service := &stubConsistencyService{
		checkFn: func(ctx context.Context) ([]int64, error) {
			return nil, nil
		},
	}

	h := handler.NewLedgerHandler(service, sharedMetrics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/consistency", nil)
	rr := httptest.NewRecorder()

	h.CheckConsistency(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Consistent bool `json:"consistent"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !resp.Consistent {
		t.Error("expected consistent ledger")
	}
}

func TestLedgerHandler_CheckConsistencyDrift(t *testing.T) {
	service := &stubConsistencyService{
		checkFn: func(ctx context.Context) ([]int64, error) {
			return []int64{3, 8}, usecase.ErrInconsistentLedger
		},
	}

	h := handler.NewLedgerHandler(service, sharedMetrics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/consistency", nil)
	rr := httptest.NewRecorder()

	h.CheckConsistency(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	var resp struct {
		Consistent      bool    `json:"consistent"`
		DriftedAccounts []int64 `json:"drifted_accounts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Consistent {
		t.Error("expected inconsistent ledger")
	}

	if len(resp.DriftedAccounts) != 2 {
		t.Errorf("expected 2 drifted accounts, got %d", len(resp.DriftedAccounts))
	}
}
