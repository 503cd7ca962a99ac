// Package service exposes the ledger operations used by the HTTP API, the CLI
// and the import workers.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/dvloznov/finance-ledger/internal/pipeline"
	"github.com/shopspring/decimal"
)

// CreateRequest describes a single transaction to record.
type CreateRequest struct {
	Title    string          `json:"title"`
	Value    decimal.Decimal `json:"value"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
}

// TransactionService implements the ledger use cases on top of a ledger.Store.
type TransactionService struct {
	store    ledger.Store
	importer *pipeline.Importer
}

// NewTransactionService creates a TransactionService backed by store.
func NewTransactionService(store ledger.Store) *TransactionService {
	return &TransactionService{
		store:    store,
		importer: pipeline.NewImporter(store),
	}
}

// List returns every transaction with its category, together with the current balance.
func (s *TransactionService) List(ctx context.Context) ([]*domain.Transaction, domain.Balance, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, domain.Balance{}, fmt.Errorf("List: listing transactions: %w", err)
	}

	balance, err := s.store.Balance(ctx)
	if err != nil {
		return nil, domain.Balance{}, fmt.Errorf("List: computing balance: %w", err)
	}

	if txs == nil {
		txs = []*domain.Transaction{}
	}
	return txs, balance, nil
}

// Balance returns the balance over every stored transaction.
func (s *TransactionService) Balance(ctx context.Context) (domain.Balance, error) {
	balance, err := s.store.Balance(ctx)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("Balance: %w", err)
	}
	return balance, nil
}

// Categories returns every stored category ordered by title.
func (s *TransactionService) Categories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("Categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

// Create records one transaction. An outcome that would take the balance
// below zero fails with domain.ErrInsufficientFunds before anything is
// written. The category is reused when a category with the exact title
// exists and created otherwise.
func (s *TransactionService) Create(ctx context.Context, req CreateRequest) (*domain.Transaction, error) {
	tx, err := newTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	create := func(ctx context.Context, store ledger.Store) error {
		if tx.Type == domain.TransactionTypeOutcome {
			balance, err := store.Balance(ctx)
			if err != nil {
				return fmt.Errorf("computing balance: %w", err)
			}
			if !balance.CanWithdraw(tx.Value) {
				return fmt.Errorf("outcome of %s exceeds balance %s: %w", tx.Value, balance.Total, domain.ErrInsufficientFunds)
			}
		}

		category, err := pipeline.NewCategoryReconciler(store).ResolveOne(ctx, strings.TrimSpace(req.Category))
		if err != nil {
			return err
		}
		tx.Category = category

		if err := store.InsertTransactions(ctx, []*domain.Transaction{tx}); err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}
		return nil
	}

	if tr, ok := s.store.(ledger.Transactor); ok {
		err = tr.WithinTx(ctx, create)
	} else {
		err = create(ctx, s.store)
	}
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", tx.ID).
		Str("type", string(tx.Type)).
		Str("value", tx.Value.String()).
		Str("category", tx.Category.Title).
		Msg("Transaction created")

	return tx, nil
}

func newTransaction(req CreateRequest) (*domain.Transaction, error) {
	typ, ok := domain.ParseTransactionType(strings.TrimSpace(req.Type))
	if !ok {
		return nil, fmt.Errorf("type %q: %w", req.Type, domain.ErrInvalidTransactionType)
	}

	title := strings.TrimSpace(req.Title)
	category := strings.TrimSpace(req.Category)
	if title == "" || category == "" || req.Value.IsZero() {
		return nil, domain.ErrMissingData
	}

	return &domain.Transaction{
		Title: title,
		Value: req.Value,
		Type:  typ,
	}, nil
}

// Delete removes the transaction with id. Its category is kept.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("Delete %s: %w", id, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("transaction_id", id).Msg("Transaction deleted")
	return nil
}

// Import stores one transaction per data row of lines. See pipeline.Importer.
func (s *TransactionService) Import(ctx context.Context, lines []string) ([]*domain.Transaction, error) {
	return s.importer.Import(ctx, lines)
}

// ImportBytes imports the content of an uploaded file.
func (s *TransactionService) ImportBytes(ctx context.Context, raw []byte) ([]*domain.Transaction, error) {
	return s.importer.ImportBytes(ctx, raw)
}
