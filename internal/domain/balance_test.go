package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func tx(typ TransactionType, value string) *Transaction {
	return &Transaction{Type: typ, Value: decimal.RequireFromString(value)}
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name    string
		txs     []*Transaction
		income  string
		outcome string
		total   string
	}{
		{
			name:    "empty store",
			txs:     nil,
			income:  "0",
			outcome: "0",
			total:   "0",
		},
		{
			name: "mixed",
			txs: []*Transaction{
				tx(TransactionTypeIncome, "5000"),
				tx(TransactionTypeOutcome, "1200"),
				tx(TransactionTypeIncome, "500"),
			},
			income:  "5500",
			outcome: "1200",
			total:   "4300",
		},
		{
			name: "negative total",
			txs: []*Transaction{
				tx(TransactionTypeIncome, "10.50"),
				tx(TransactionTypeOutcome, "20.25"),
			},
			income:  "10.50",
			outcome: "20.25",
			total:   "-9.75",
		},
		{
			name: "unknown type ignored",
			txs: []*Transaction{
				tx(TransactionTypeIncome, "1"),
				tx(TransactionType("transfer"), "99"),
			},
			income:  "1",
			outcome: "0",
			total:   "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBalance(tt.txs)
			if !b.Income.Equal(decimal.RequireFromString(tt.income)) {
				t.Errorf("Income = %s, want %s", b.Income, tt.income)
			}
			if !b.Outcome.Equal(decimal.RequireFromString(tt.outcome)) {
				t.Errorf("Outcome = %s, want %s", b.Outcome, tt.outcome)
			}
			if !b.Total.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("Total = %s, want %s", b.Total, tt.total)
			}
			if !b.Total.Equal(b.Income.Sub(b.Outcome)) {
				t.Errorf("Total %s != Income - Outcome", b.Total)
			}
		})
	}
}

func TestBalance_CanWithdraw(t *testing.T) {
	b := NewBalance(decimal.NewFromInt(50), decimal.Zero)

	if b.CanWithdraw(decimal.NewFromInt(100)) {
		t.Error("expected withdrawal of 100 from 50 to be refused")
	}
	if !b.CanWithdraw(decimal.NewFromInt(50)) {
		t.Error("expected withdrawal of the whole total to be allowed")
	}
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"income", TransactionTypeIncome, true},
		{"outcome", TransactionTypeOutcome, true},
		{"Income", "", false},
		{" income", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTransactionType(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseTransactionType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStorageError(t *testing.T) {
	if StorageError("op", nil) != nil {
		t.Fatal("expected nil for nil cause")
	}

	err := StorageError("InsertCategories", context.DeadlineExceeded)
	if !errors.Is(err, ErrStorageFailure) {
		t.Error("expected error to match ErrStorageFailure")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected error to keep its cause")
	}
	if err.Error() != "InsertCategories: context deadline exceeded" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
