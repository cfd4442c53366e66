package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/finbase/corebank/internal/adapter/http/dto"
	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/infrastructure/logging"
	"github.com/finbase/corebank/internal/infrastructure/metrics"
	"github.com/finbase/corebank/internal/usecase"
)

// LedgerService is the funds-movement surface the handler depends on.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.OperationResult, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.OperationResult, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error)
}

// OperationHandler handles deposits, withdrawals and journal reads.
type OperationHandler struct {
	service LedgerService
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(service LedgerService, m *metrics.Metrics, logger *logging.Logger) *OperationHandler {
	return &OperationHandler{service: service, metrics: m, logger: logger}
}

// Deposit handles POST /api/v1/accounts/{id}/deposits.
func (h *OperationHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyOperation(w, r, "deposit")
}

// Withdraw handles POST /api/v1/accounts/{id}/withdrawals.
func (h *OperationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyOperation(w, r, "withdrawal")
}

func (h *OperationHandler) applyOperation(w http.ResponseWriter, r *http.Request, operation string) {
	accountID, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid account id"})
		return
	}

	var req dto.OperationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "malformed request body"})
		return
	}

	start := time.Now()

	var result *usecase.OperationResult

	if operation == "deposit" {
		result, err = h.service.Deposit(r.Context(), usecase.DepositInput{
			AccountID:   accountID,
			Amount:      req.Amount,
			Description: req.Description,
		})
	} else {
		result, err = h.service.Withdraw(r.Context(), usecase.WithdrawInput{
			AccountID:   accountID,
			Amount:      req.Amount,
			Description: req.Description,
		})
	}

	h.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		_, reason := mapDomainError(err)
		h.metrics.OperationsRejected.WithLabelValues(operation, reason).Inc()
		h.logger.WarnCtx(r.Context(), "operation rejected",
			"operation", operation,
			"account_id", accountID,
			"error", err,
		)
		writeError(w, err)

		return
	}

	h.metrics.OperationsCompleted.WithLabelValues(operation).Inc()
	h.metrics.OperationAmount.WithLabelValues(operation).Observe(req.Amount.InexactFloat64())

	h.logger.InfoCtx(r.Context(), "operation completed",
		"operation", operation,
		"account_id", accountID,
		"reference_number", result.ReferenceNumber,
	)

	writeJSON(w, http.StatusCreated, dto.OperationFromResult(result))
}

// GetAccount handles GET /api/v1/accounts/{id} balance reads.
func (h *OperationHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid account id"})
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListEntries handles GET /api/v1/accounts/{id}/entries.
func (h *OperationHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid account id"})
		return
	}

	// Entries for a missing account are an empty page, not a 404; verify
	// the account exists first so the caller can tell the two apart.
	if _, err := h.service.GetAccount(r.Context(), accountID); err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.service.ListEntries(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		Limit:     queryInt(r, "limit", 20),
		Offset:    queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
