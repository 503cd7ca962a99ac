package bigquery

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

func TestRatToDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   *big.Rat
		want string
	}{
		{"nil is zero", nil, "0"},
		{"integer", big.NewRat(5000, 1), "5000"},
		{"fraction", big.NewRat(101, 20), "5.05"},
		{"negative", big.NewRat(-3, 2), "-1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ratToDecimal(tt.in)
			if err != nil {
				t.Fatalf("ratToDecimal failed: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ratToDecimal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewTransactionRow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := &domain.Transaction{
		ID:         "tx-1",
		Title:      "Salary",
		Value:      decimal.RequireFromString("5000.25"),
		Type:       domain.TransactionTypeIncome,
		CategoryID: "cat-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	row := newTransactionRow(tx)
	if row.Value.Cmp(big.NewRat(500025, 100)) != 0 {
		t.Errorf("Value = %s, want 5000.25", row.Value.FloatString(2))
	}
	if row.Type != "income" {
		t.Errorf("Type = %q, want income", row.Type)
	}
	if !row.CategoryID.Valid || row.CategoryID.StringVal != "cat-1" {
		t.Errorf("CategoryID = %+v, want valid cat-1", row.CategoryID)
	}

	tx.CategoryID = ""
	if newTransactionRow(tx).CategoryID.Valid {
		t.Error("expected empty category id to be NULL")
	}
}

func TestListedTransactionRow_ToDomain(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := listedTransactionRow{
		ID:                "tx-1",
		Title:             "Rent",
		Value:             big.NewRat(1200, 1),
		Type:              "outcome",
		CategoryID:        bigquery.NullString{StringVal: "cat-1", Valid: true},
		CreatedAt:         now,
		UpdatedAt:         now,
		CategoryTitle:     bigquery.NullString{StringVal: "Housing", Valid: true},
		CategoryCreatedAt: bigquery.NullTimestamp{Timestamp: now, Valid: true},
	}

	tx, err := r.toDomain()
	if err != nil {
		t.Fatalf("toDomain failed: %v", err)
	}
	if tx.Type != domain.TransactionTypeOutcome || !tx.Value.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if tx.Category == nil || tx.Category.Title != "Housing" || tx.Category.ID != "cat-1" {
		t.Errorf("expected Housing category, got %+v", tx.Category)
	}

	r.CategoryID = bigquery.NullString{}
	r.CategoryTitle = bigquery.NullString{}
	tx, _ = r.toDomain()
	if tx.Category != nil || tx.CategoryID != "" {
		t.Errorf("expected no category, got %+v", tx.Category)
	}
}

func TestBuildTransactionInsert(t *testing.T) {
	rows := []*TransactionRow{
		{ID: "a", Title: "Salary", Value: big.NewRat(1, 1), Type: "income"},
		{ID: "b", Title: "Rent", Value: big.NewRat(2, 1), Type: "outcome"},
	}

	sql, params := buildTransactionInsert(qualifiedTable("p", "d", transactionsTable), rows)

	if !strings.HasPrefix(sql, "INSERT `p.d.transactions` (id, title, value, type, category_id, created_at, updated_at)") {
		t.Errorf("unexpected statement prefix: %s", sql)
	}
	for _, want := range []string{"@id_0", "@updated_at_0", "@id_1", "@category_id_1"} {
		if !strings.Contains(sql, want) {
			t.Errorf("statement missing %s: %s", want, sql)
		}
	}
	if len(params) != 14 {
		t.Fatalf("expected 14 parameters, got %d", len(params))
	}
	if params[7].Name != "id_1" || params[7].Value != "b" {
		t.Errorf("params[7] = %+v, want id_1=b", params[7])
	}
}

func TestBuildCategoryInsert(t *testing.T) {
	rows := []*CategoryRow{{ID: "c1", Title: "Job"}}

	sql, params := buildCategoryInsert(qualifiedTable("p", "d", categoriesTable), rows)

	if !strings.Contains(sql, "`p.d.categories`") || !strings.Contains(sql, "@title_0") {
		t.Errorf("unexpected statement: %s", sql)
	}
	if len(params) != 4 || params[1].Value != "Job" {
		t.Errorf("unexpected params: %+v", params)
	}
}
