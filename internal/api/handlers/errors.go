package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/rs/zerolog"
)

// statusFor maps ledger errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidImport),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrMissingData):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError writes err with its mapped status. Client errors carry the
// error text; server errors are logged and answered with fallback.
func writeLedgerError(w http.ResponseWriter, log zerolog.Logger, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg(fallback)
		middleware.WriteError(w, status, fallback)
		return
	}
	middleware.WriteError(w, status, err.Error())
}
