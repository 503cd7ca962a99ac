package inmemory

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

func TestStore_InsertAndListTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	job := &domain.Category{Title: "Job"}
	if err := s.InsertCategories(ctx, []*domain.Category{job}); err != nil {
		t.Fatalf("InsertCategories failed: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected category ID to be assigned")
	}

	txs := []*domain.Transaction{
		{Title: "Salary", Type: domain.TransactionTypeIncome, Value: decimal.NewFromInt(5000), Category: job},
		{Title: "Rent", Type: domain.TransactionTypeOutcome, Value: decimal.NewFromInt(1200), Category: job},
	}
	if err := s.InsertTransactions(ctx, txs); err != nil {
		t.Fatalf("InsertTransactions failed: %v", err)
	}

	for _, tx := range txs {
		if tx.ID == "" || tx.CreatedAt.IsZero() {
			t.Errorf("expected ID and CreatedAt to be assigned, got %+v", tx)
		}
		if tx.CategoryID != job.ID {
			t.Errorf("CategoryID = %q, want %q", tx.CategoryID, job.ID)
		}
	}

	listed, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(listed))
	}
	if listed[0].Title != "Salary" || listed[1].Title != "Rent" {
		t.Errorf("unexpected order: %s, %s", listed[0].Title, listed[1].Title)
	}
	if listed[0].Category == nil || listed[0].Category.Title != "Job" {
		t.Errorf("expected category to be attached, got %+v", listed[0].Category)
	}

	b, err := s.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !b.Total.Equal(decimal.NewFromInt(3800)) {
		t.Errorf("Total = %s, want 3800", b.Total)
	}
}

func TestStore_DeleteTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx := &domain.Transaction{Title: "Coffee", Type: domain.TransactionTypeOutcome, Value: decimal.NewFromInt(3)}
	if err := s.InsertTransactions(ctx, []*domain.Transaction{tx}); err != nil {
		t.Fatalf("InsertTransactions failed: %v", err)
	}

	if err := s.DeleteTransaction(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	if _, err := s.FindTransaction(ctx, tx.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	listed, _ := s.ListTransactions(ctx)
	if len(listed) != 0 {
		t.Errorf("expected empty list, got %d", len(listed))
	}
}

func TestStore_FindCategoriesByTitles(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	cats := []*domain.Category{{Title: "Job"}, {Title: "Housing"}, {Title: "job"}}
	if err := s.InsertCategories(ctx, cats); err != nil {
		t.Fatalf("InsertCategories failed: %v", err)
	}

	found, err := s.FindCategoriesByTitles(ctx, []string{"Job", "Food", "Job"})
	if err != nil {
		t.Fatalf("FindCategoriesByTitles failed: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Job" {
		t.Errorf("expected only exact match Job, got %+v", found)
	}

	all, _ := s.ListCategories(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(all))
	}
	if all[0].Title != "Housing" {
		t.Errorf("expected categories ordered by title, got %s first", all[0].Title)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx := &domain.Transaction{Title: "Original", Type: domain.TransactionTypeIncome, Value: decimal.NewFromInt(1)}
	_ = s.InsertTransactions(ctx, []*domain.Transaction{tx})

	tx.Title = "Mutated"
	got, err := s.FindTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("FindTransaction failed: %v", err)
	}
	if got.Title != "Original" {
		t.Errorf("store was modified through caller pointer: %s", got.Title)
	}
}
