package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/corebank/internal/adapter/http/dto"
	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/infrastructure/logging"
	"github.com/finbase/corebank/internal/infrastructure/metrics"
	"github.com/finbase/corebank/internal/usecase"
)

// TransferService is the transfer surface the handler depends on.
type TransferService interface {
	Initiate(ctx context.Context, input usecase.TransferInput) (*domain.Transfer, error)
	GetTransfer(ctx context.Context, id string) (*domain.Transfer, error)
	Cancel(ctx context.Context, id string) (*domain.Transfer, error)
	ListTransfersByAccount(ctx context.Context, input usecase.ListTransfersByAccountInput) ([]*domain.Transfer, error)
}

// TransferHandler handles transfer endpoints.
type TransferHandler struct {
	service TransferService
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(service TransferService, m *metrics.Metrics, logger *logging.Logger) *TransferHandler {
	return &TransferHandler{service: service, metrics: m, logger: logger}
}

// Create handles POST /api/v1/transfers.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "malformed request body"})
		return
	}

	h.metrics.TransfersInitiated.Inc()

	transfer, err := h.service.Initiate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		// A business failure after the transfer row was written is still a
		// resource the caller can inspect.
		if transfer != nil && transfer.Status == domain.TransferStatusFailed {
			_, reason := mapDomainError(err)
			h.metrics.TransfersFailed.WithLabelValues(reason).Inc()
			h.logger.WarnCtx(r.Context(), "transfer failed",
				"transfer_id", transfer.ID,
				"reason", transfer.FailureReason,
			)
			writeJSON(w, http.StatusUnprocessableEntity, dto.TransferFromDomain(transfer))

			return
		}

		h.logger.WarnCtx(r.Context(), "transfer rejected", "error", err)
		writeError(w, err)

		return
	}

	if transfer.Status == domain.TransferStatusCompleted {
		h.metrics.TransfersCompleted.Inc()
	}

	h.logger.InfoCtx(r.Context(), "transfer created",
		"transfer_id", transfer.ID,
		"status", string(transfer.Status),
		"reference_number", transfer.ReferenceNumber,
	)

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// Get handles GET /api/v1/transfers/{id}.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.service.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// Cancel handles POST /api/v1/transfers/{id}/cancel.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.TransfersCancelled.Inc()

	h.logger.InfoCtx(r.Context(), "transfer cancelled", "transfer_id", transfer.ID)

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListByAccount handles GET /api/v1/accounts/{id}/transfers.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid account id"})
		return
	}

	transfers, err := h.service.ListTransfersByAccount(r.Context(), usecase.ListTransfersByAccountInput{
		AccountID: accountID,
		Limit:     queryInt(r, "limit", 20),
		Offset:    queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}
