package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// LedgerService is the part of service.TransactionService the HTTP API uses.
type LedgerService interface {
	List(ctx context.Context) ([]*domain.Transaction, domain.Balance, error)
	Create(ctx context.Context, req service.CreateRequest) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
	ImportBytes(ctx context.Context, raw []byte) ([]*domain.Transaction, error)
	Categories(ctx context.Context) ([]*domain.Category, error)
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	svc            LedgerService
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler. Uploaded import
// files are limited to maxUploadBytes.
func NewTransactionsHandler(svc LedgerService, maxUploadBytes int64, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, balance, err := h.svc.List(r.Context())
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"balance":      balance,
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeLedgerError(w, h.log, err, "Failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadFields are the accepted multipart field names, in lookup order.
var uploadFields = []string{"file", "csvFile"}

// ImportTransactions handles POST /api/transactions/import with the file in
// the multipart field "file" or "csvFile".
func (h *TransactionsHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := formFile(r, uploadFields...)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	transactions, err := h.svc.ImportBytes(r.Context(), raw)
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to import transactions")
		return
	}

	h.log.Info().
		Str("filename", header.Filename).
		Int("transactions", len(transactions)).
		Msg("File imported")

	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	svc LedgerService
	log zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(svc LedgerService, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		svc: svc,
		log: log,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to list categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// formFile returns the first of fields present in the parsed multipart form.
func formFile(r *http.Request, fields ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, field := range fields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		return file, header, err
	}
	return nil, nil, http.ErrMissingFile
}
