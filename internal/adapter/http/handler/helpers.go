package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finbase/corebank/internal/adapter/http/dto"
	"github.com/finbase/corebank/internal/domain"
	"github.com/finbase/corebank/internal/usecase"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a JSON error response, translating domain errors to
// their HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status, code := mapDomainError(err)

	resp := dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	}

	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		resp.Message = "internal server error"
	}

	writeJSON(w, status, resp)
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account_not_found"
	case errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound, "transfer_not_found"
	case errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest, "same_account"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, domain.ErrAmountTooLarge):
		return http.StatusBadRequest, "amount_too_large"
	case errors.Is(err, domain.ErrInvalidCurrency):
		return http.StatusBadRequest, "invalid_currency"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest, "currency_mismatch"
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return http.StatusBadRequest, "description_too_long"
	case errors.Is(err, domain.ErrInvalidAccountType):
		return http.StatusBadRequest, "invalid_account_type"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnprocessableEntity, "account_inactive"
	case errors.Is(err, domain.ErrAccountFrozen):
		return http.StatusUnprocessableEntity, "account_frozen"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return http.StatusConflict, "ledger_inconsistent"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

// pathInt64 parses an int64 path parameter.
func pathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// queryInt parses an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}

	return n
}
