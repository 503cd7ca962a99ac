package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

// PipelineStep represents a single step in the import pipeline.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	// Store is the ledger store the persisting steps write to. When the
	// backing store supports transactions it is bound to the open transaction.
	Store ledger.Store

	Lines        []string
	Parsed       *ParseResult
	Categories   map[string]*domain.Category
	Transactions []*domain.Transaction
}

// ParseRowsStep validates the raw lines. It never touches the store.
type ParseRowsStep struct{}

func (s *ParseRowsStep) Name() string { return "parse rows" }

func (s *ParseRowsStep) Execute(ctx context.Context, state *PipelineState) error {
	parsed, err := ParseRows(ctx, state.Lines)
	if err != nil {
		return err
	}
	state.Parsed = parsed
	return nil
}

// ReconcileCategoriesStep resolves every referenced category, creating missing ones.
type ReconcileCategoriesStep struct{}

func (s *ReconcileCategoriesStep) Name() string { return "reconcile categories" }

func (s *ReconcileCategoriesStep) Execute(ctx context.Context, state *PipelineState) error {
	mapping, err := NewCategoryReconciler(state.Store).Reconcile(ctx, state.Parsed.CategoryNames)
	if err != nil {
		return err
	}
	state.Categories = mapping
	return nil
}

// BuildTransactionsStep attaches the reconciled categories to new transactions.
type BuildTransactionsStep struct{}

func (s *BuildTransactionsStep) Name() string { return "build transactions" }

func (s *BuildTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	txs := make([]*domain.Transaction, 0, len(state.Parsed.Rows))
	for i, row := range state.Parsed.Rows {
		category, ok := state.Categories[row.Category]
		if !ok {
			return fmt.Errorf("row %d: category %q was not reconciled", i+1, row.Category)
		}
		txs = append(txs, &domain.Transaction{
			Title:      row.Title,
			Type:       row.Type,
			Value:      row.Value,
			CategoryID: category.ID,
			Category:   category,
		})
	}
	state.Transactions = txs
	return nil
}

// InsertTransactionsStep persists the built transactions as one batch.
type InsertTransactionsStep struct{}

func (s *InsertTransactionsStep) Name() string { return "insert transactions" }

func (s *InsertTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	return state.Store.InsertTransactions(ctx, state.Transactions)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially, stopping at the first error.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for _, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}
