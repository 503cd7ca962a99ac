// Package api wires the HTTP handlers into a chi router.
package api

import (
	"net/http"

	"github.com/dvloznov/finance-ledger/internal/api/handlers"
	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Dependencies holds what the router needs. Publisher may be nil when
// asynchronous imports are disabled; JobStore must be set.
type Dependencies struct {
	Service        handlers.LedgerService
	Publisher      jobs.Publisher
	JobStore       jobs.JobStore
	MaxUploadBytes int64
	MaxRetries     int
	Log            zerolog.Logger
}

// NewRouter builds the HTTP handler for the ledger API.
func NewRouter(deps Dependencies) http.Handler {
	transactionsHandler := handlers.NewTransactionsHandler(deps.Service, deps.MaxUploadBytes, deps.Log)
	categoriesHandler := handlers.NewCategoriesHandler(deps.Service, deps.Log)
	importsHandler := handlers.NewImportsHandler(deps.Publisher, deps.MaxRetries, deps.Log)
	jobsHandler := handlers.NewJobsHandler(deps.JobStore, deps.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionsHandler.ListTransactions)
			r.Post("/", transactionsHandler.CreateTransaction)
			r.Post("/import", transactionsHandler.ImportTransactions)
			r.Delete("/{id}", transactionsHandler.DeleteTransaction)
		})

		r.Get("/categories", categoriesHandler.ListCategories)

		r.Post("/imports", importsHandler.EnqueueImport)

		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{id}", jobsHandler.GetJob)
	})

	return r
}
