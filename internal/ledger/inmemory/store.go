package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

// Store is an in-memory implementation of ledger.Store.
// It is safe for concurrent use. Data is lost on restart - for persistence,
// use the SQLite or BigQuery store.
type Store struct {
	mu sync.RWMutex

	transactions map[string]*domain.Transaction
	txOrder      []string

	categories map[string]*domain.Category

	now func() time.Time
}

// NewStore creates an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]*domain.Transaction),
		categories:   make(map[string]*domain.Category),
		now:          time.Now,
	}
}

// ListTransactions implements ledger.TransactionRepository.
func (s *Store) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0, len(s.txOrder))
	for _, id := range s.txOrder {
		result = append(result, s.copyTransaction(s.transactions[id]))
	}
	return result, nil
}

// FindTransaction implements ledger.TransactionRepository.
func (s *Store) FindTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return s.copyTransaction(tx), nil
}

// InsertTransactions implements ledger.TransactionRepository.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger.PrepareTransactions(txs, s.now())
	for _, tx := range txs {
		// Store a copy to avoid external modifications
		txCopy := *tx
		txCopy.Category = nil
		if _, exists := s.transactions[tx.ID]; !exists {
			s.txOrder = append(s.txOrder, tx.ID)
		}
		s.transactions[tx.ID] = &txCopy
	}
	return nil
}

// DeleteTransaction implements ledger.TransactionRepository.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.transactions, id)
	for i, existing := range s.txOrder {
		if existing == id {
			s.txOrder = append(s.txOrder[:i], s.txOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Balance implements ledger.TransactionRepository.
func (s *Store) Balance(ctx context.Context) (domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]*domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		txs = append(txs, tx)
	}
	return domain.ComputeBalance(txs), nil
}

// ListCategories implements ledger.CategoryRepository.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cCopy := *c
		result = append(result, &cCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Title == result[j].Title {
			return result[i].ID < result[j].ID
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}

// FindCategoriesByTitles implements ledger.CategoryRepository.
func (s *Store) FindCategoriesByTitles(ctx context.Context, titles []string) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		wanted[t] = struct{}{}
	}

	var result []*domain.Category
	for _, c := range s.categories {
		if _, ok := wanted[c.Title]; ok {
			cCopy := *c
			result = append(result, &cCopy)
		}
	}
	return result, nil
}

// InsertCategories implements ledger.CategoryRepository.
func (s *Store) InsertCategories(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger.PrepareCategories(categories, s.now())
	for _, c := range categories {
		cCopy := *c
		s.categories[c.ID] = &cCopy
	}
	return nil
}

// Close implements ledger.Store. It is a no-op.
func (s *Store) Close() error {
	return nil
}

// copyTransaction returns a copy of tx with its category attached.
// Callers must hold s.mu.
func (s *Store) copyTransaction(tx *domain.Transaction) *domain.Transaction {
	txCopy := *tx
	if c, ok := s.categories[tx.CategoryID]; ok {
		cCopy := *c
		txCopy.Category = &cCopy
	}
	return &txCopy
}

// Ensure Store implements ledger.Store interface.
var _ ledger.Store = (*Store)(nil)
