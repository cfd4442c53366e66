package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/finbase/corebank/internal/adapter/http/dto"
	"github.com/finbase/corebank/internal/infrastructure/logging"
	"github.com/finbase/corebank/internal/infrastructure/metrics"
	"github.com/finbase/corebank/internal/usecase"
)

// ConsistencyService is the reconciliation surface the handler depends on.
type ConsistencyService interface {
	CheckConsistency(ctx context.Context) ([]int64, error)
}

// LedgerHandler handles ledger-wide endpoints.
type LedgerHandler struct {
	service ConsistencyService
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(service ConsistencyService, m *metrics.Metrics, logger *logging.Logger) *LedgerHandler {
	return &LedgerHandler{service: service, metrics: m, logger: logger}
}

// CheckConsistency handles GET /api/v1/ledger/consistency.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	drifted, err := h.service.CheckConsistency(r.Context())

	switch {
	case err == nil:
		h.metrics.DriftedAccounts.Set(0)
		writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: true})
	case errors.Is(err, usecase.ErrInconsistentLedger):
		h.metrics.DriftedAccounts.Set(float64(len(drifted)))
		h.logger.ErrorCtx(r.Context(), "ledger consistency check failed",
			"drifted_accounts", len(drifted),
		)
		writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
			Consistent:      false,
			DriftedAccounts: drifted,
		})
	default:
		writeError(w, err)
	}
}
