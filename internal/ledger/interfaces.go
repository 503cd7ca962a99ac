// Package ledger defines the persistence contract for transactions and categories.
package ledger

import (
	"context"
	"time"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/google/uuid"
)

// TransactionRepository provides transaction persistence and the balance aggregate.
type TransactionRepository interface {
	// ListTransactions returns every transaction in insertion order with Category populated.
	ListTransactions(ctx context.Context) ([]*domain.Transaction, error)

	// FindTransaction returns the transaction with id or domain.ErrNotFound.
	FindTransaction(ctx context.Context, id string) (*domain.Transaction, error)

	// InsertTransactions stores txs as one batch. Ids and timestamps are
	// assigned in place on the passed values.
	InsertTransactions(ctx context.Context, txs []*domain.Transaction) error

	// DeleteTransaction removes the transaction with id or returns domain.ErrNotFound.
	DeleteTransaction(ctx context.Context, id string) error

	// Balance sums every stored transaction by type.
	Balance(ctx context.Context) (domain.Balance, error)
}

// CategoryRepository provides category persistence.
type CategoryRepository interface {
	// ListCategories returns every category ordered by title.
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// FindCategoriesByTitles returns the categories whose title exactly matches one of titles.
	FindCategoriesByTitles(ctx context.Context, titles []string) ([]*domain.Category, error)

	// InsertCategories stores categories as one batch. Ids and timestamps are
	// assigned in place on the passed values.
	InsertCategories(ctx context.Context, categories []*domain.Category) error
}

// Store is the full ledger store.
type Store interface {
	TransactionRepository
	CategoryRepository

	// Close releases the underlying connection.
	Close() error
}

// Transactor is implemented by stores that can run several operations atomically.
// fn receives a Store bound to the transaction; returning an error rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// PrepareTransactions assigns ids and timestamps to txs that don't have them yet.
func PrepareTransactions(txs []*domain.Transaction, now time.Time) {
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = now
		}
		tx.UpdatedAt = now
		if tx.Category != nil && tx.CategoryID == "" {
			tx.CategoryID = tx.Category.ID
		}
	}
}

// PrepareCategories assigns ids and timestamps to categories that don't have them yet.
func PrepareCategories(categories []*domain.Category, now time.Time) {
	for _, c := range categories {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
	}
}

// UniqueTitles returns titles without duplicates, keeping first-occurrence order.
func UniqueTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
