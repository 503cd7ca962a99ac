package pipeline

import (
	"context"
	"time"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"github.com/dvloznov/finance-ledger/internal/logger"
)

// Importer turns the lines of an import file into persisted transactions.
//
// Validation runs before any store call, so a rejected file writes nothing.
// When the store implements ledger.Transactor, category creation and the
// transaction insert share one store transaction. Otherwise categories
// created before a failed transaction insert are kept.
type Importer struct {
	store   ledger.Store
	parse   *Pipeline
	persist *Pipeline
}

// NewImporter creates an importer writing to store.
func NewImporter(store ledger.Store) *Importer {
	return &Importer{
		store: store,
		parse: NewPipeline(&ParseRowsStep{}),
		persist: NewPipeline(
			&ReconcileCategoriesStep{},
			&BuildTransactionsStep{},
			&InsertTransactionsStep{},
		),
	}
}

// Import parses lines and stores one transaction per data row, in row order.
func (i *Importer) Import(ctx context.Context, lines []string) ([]*domain.Transaction, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	state := &PipelineState{Lines: lines}
	if err := i.parse.Execute(ctx, state); err != nil {
		log.Warn().Err(err).Msg("Import rejected")
		return nil, err
	}

	var err error
	if tr, ok := i.store.(ledger.Transactor); ok {
		err = tr.WithinTx(ctx, func(ctx context.Context, s ledger.Store) error {
			state.Store = s
			return i.persist.Execute(ctx, state)
		})
	} else {
		state.Store = i.store
		err = i.persist.Execute(ctx, state)
	}
	if err != nil {
		log.Error().Err(err).Int("rows", len(state.Parsed.Rows)).Msg("Import failed")
		return nil, err
	}

	log.Info().
		Int("transactions", len(state.Transactions)).
		Int("categories", len(state.Categories)).
		Dur("duration", time.Since(start)).
		Msg("Import completed")

	return state.Transactions, nil
}

// ImportBytes splits raw into lines and imports them.
func (i *Importer) ImportBytes(ctx context.Context, raw []byte) ([]*domain.Transaction, error) {
	return i.Import(ctx, SplitLines(raw))
}
