package handler

import (
	"context"
	"net/http"

	"github.com/finbase/corebank/internal/adapter/http/dto"
	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/infrastructure/logging"
	"github.com/finbase/corebank/internal/usecase"
)

// AccountService is the account lifecycle surface the handler depends on.
type AccountService interface {
	Open(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	Get(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	SetStatus(ctx context.Context, id int64, status domain.AccountStatus) (*domain.Account, error)
}

// AccountHandler handles account lifecycle endpoints.
type AccountHandler struct {
	service AccountService
	logger  *logging.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service AccountService, logger *logging.Logger) *AccountHandler {
	return &AccountHandler{service: service, logger: logger}
}

// Open handles POST /api/v1/accounts.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "malformed request body"})
		return
	}

	account, err := h.service.Open(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.logger.WarnCtx(r.Context(), "account open rejected", "error", err)
		writeError(w, err)

		return
	}

	h.logger.InfoCtx(r.Context(), "account opened",
		"account_id", account.ID,
		"account_number", account.AccountNumber,
	)

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid account id"})
		return
	}

	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context(), usecase.ListAccountsInput{
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// SetStatus handles POST /api/v1/accounts/{id}/status.
func (h *AccountHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "invalid account id"})
		return
	}

	var req dto.UpdateAccountStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "malformed request body"})
		return
	}

	account, err := h.service.SetStatus(r.Context(), id, domain.AccountStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.InfoCtx(r.Context(), "account status changed",
		"account_id", account.ID,
		"status", string(account.Status),
	)

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
