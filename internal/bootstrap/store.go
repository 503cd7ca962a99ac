// Package bootstrap builds the runtime dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/infra/bigquery"
	"github.com/dvloznov/finance-ledger/internal/infra/sqlite"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"github.com/dvloznov/finance-ledger/internal/ledger/inmemory"
	"github.com/dvloznov/finance-ledger/internal/logger"
)

// OpenStore opens the ledger store selected by cfg.Store.Backend.
// The caller owns the returned store and must Close it.
func OpenStore(ctx context.Context, cfg *config.Config) (ledger.Store, error) {
	log := logger.FromContext(ctx)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return inmemory.NewStore(), nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		log.Info().Str("path", store.Path()).Msg("Opened SQLite store")
		return store, nil

	case config.BackendBigQuery:
		store, err := bigquery.NewStore(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.DatasetID)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		log.Info().
			Str("project", cfg.BigQuery.ProjectID).
			Str("dataset", cfg.BigQuery.DatasetID).
			Msg("Opened BigQuery store")
		return store, nil

	default:
		return nil, fmt.Errorf("OpenStore: unknown store backend %q", cfg.Store.Backend)
	}
}
