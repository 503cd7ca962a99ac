package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger/inmemory"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) (*TransactionService, *inmemory.Store) {
	t.Helper()
	store := inmemory.NewStore()
	return NewTransactionService(store), store
}

func TestCreate_IncomeCreatesCategory(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	tx, err := svc.Create(ctx, CreateRequest{Title: "Salary", Value: decimal.NewFromInt(5000), Type: "income", Category: "Job"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tx.ID == "" || tx.Category == nil || tx.Category.Title != "Job" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.CategoryID != tx.Category.ID {
		t.Errorf("CategoryID = %q, want %q", tx.CategoryID, tx.Category.ID)
	}

	second, err := svc.Create(ctx, CreateRequest{Title: "Bonus", Value: decimal.NewFromInt(500), Type: "income", Category: "Job"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if second.CategoryID != tx.CategoryID {
		t.Errorf("expected category Job to be reused")
	}

	categories, _ := store.ListCategories(ctx)
	if len(categories) != 1 {
		t.Errorf("expected 1 category, got %d", len(categories))
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"invalid type", CreateRequest{Title: "X", Value: decimal.NewFromInt(1), Type: "transfer", Category: "C"}, domain.ErrInvalidTransactionType},
		{"capitalized type", CreateRequest{Title: "X", Value: decimal.NewFromInt(1), Type: "Income", Category: "C"}, domain.ErrInvalidTransactionType},
		{"missing title", CreateRequest{Value: decimal.NewFromInt(1), Type: "income", Category: "C"}, domain.ErrMissingData},
		{"missing category", CreateRequest{Title: "X", Value: decimal.NewFromInt(1), Type: "income"}, domain.ErrMissingData},
		{"missing value", CreateRequest{Title: "X", Type: "income", Category: "C"}, domain.ErrMissingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, store := newTestService(t)

			if _, err := svc.Create(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}

			categories, _ := store.ListCategories(ctx)
			txs, _ := store.ListTransactions(ctx)
			if len(categories) != 0 || len(txs) != 0 {
				t.Errorf("expected no writes, got %d categories and %d transactions", len(categories), len(txs))
			}
		})
	}
}

func TestCreate_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	if _, err := svc.Create(ctx, CreateRequest{Title: "Gift", Value: decimal.NewFromInt(80), Type: "income", Category: "Misc"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{Title: "Lunch", Value: decimal.NewFromInt(30), Type: "outcome", Category: "Misc"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create(ctx, CreateRequest{Title: "TV", Value: decimal.NewFromInt(100), Type: "outcome", Category: "Electronics"})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(txs))
	}
	categories, _ := store.ListCategories(ctx)
	if len(categories) != 1 {
		t.Errorf("expected no new category, got %d categories", len(categories))
	}
	b, _ := svc.Balance(ctx)
	if !b.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Total = %s, want 50", b.Total)
	}
}

func TestCreate_OutcomeUpToBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _ = svc.Create(ctx, CreateRequest{Title: "Gift", Value: decimal.NewFromInt(50), Type: "income", Category: "Misc"})

	if _, err := svc.Create(ctx, CreateRequest{Title: "Shoes", Value: decimal.NewFromInt(50), Type: "outcome", Category: "Clothes"}); err != nil {
		t.Fatalf("expected outcome equal to balance to succeed, got %v", err)
	}

	b, _ := svc.Balance(ctx)
	if !b.Total.IsZero() {
		t.Errorf("Total = %s, want 0", b.Total)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	txs, balance, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if txs == nil || len(txs) != 0 || !balance.Total.IsZero() {
		t.Errorf("expected empty list and zero balance, got %v %+v", txs, balance)
	}

	created, _ := svc.Create(ctx, CreateRequest{Title: "Salary", Value: decimal.NewFromInt(10), Type: "income", Category: "Job"})

	if err := svc.Delete(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	txs, balance, _ = svc.List(ctx)
	if len(txs) != 0 || !balance.Income.IsZero() {
		t.Errorf("expected transaction to be gone, got %d, %+v", len(txs), balance)
	}

	categories, _ := svc.Categories(ctx)
	if len(categories) != 1 {
		t.Errorf("expected category to survive delete, got %d", len(categories))
	}
}

func TestImport_ExampleFile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _ = svc.Create(ctx, CreateRequest{Title: "Seed", Value: decimal.NewFromInt(1), Type: "income", Category: "Job"})

	raw := []byte("title,type,value,category\r\nSalary,income,5000,Job\r\nRent,outcome,1200,Housing\r\nBonus,income,500,Job\r\n")
	imported, err := svc.ImportBytes(ctx, raw)
	if err != nil {
		t.Fatalf("ImportBytes failed: %v", err)
	}
	if len(imported) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(imported))
	}

	txs, balance, _ := svc.List(ctx)
	if len(txs) != 4 {
		t.Errorf("expected 4 transactions, got %d", len(txs))
	}
	if !balance.Total.Equal(decimal.NewFromInt(4301)) {
		t.Errorf("Total = %s, want 4301", balance.Total)
	}

	categories, _ := svc.Categories(ctx)
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(categories))
	}
}

func TestImport_InvalidFile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Import(ctx, []string{"title,type,value,category"}); !errors.Is(err, domain.ErrInvalidImport) {
		t.Errorf("expected ErrInvalidImport, got %v", err)
	}
	if _, err := svc.Import(ctx, []string{"h", "A,gift,1,X"}); !errors.Is(err, domain.ErrInvalidTransactionType) {
		t.Errorf("expected ErrInvalidTransactionType, got %v", err)
	}
}
