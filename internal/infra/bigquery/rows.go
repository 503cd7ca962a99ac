package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the number of fractional digits a BigQuery NUMERIC keeps.
const numericScale = 9

type CategoryRow struct {
	ID        string    `bigquery:"id"`         // REQUIRED
	Title     string    `bigquery:"title"`      // REQUIRED
	CreatedAt time.Time `bigquery:"created_at"` // REQUIRED
	UpdatedAt time.Time `bigquery:"updated_at"` // REQUIRED
}

type TransactionRow struct {
	ID         string              `bigquery:"id"`          // REQUIRED
	Title      string              `bigquery:"title"`       // REQUIRED
	Value      *big.Rat            `bigquery:"value"`       // REQUIRED NUMERIC
	Type       string              `bigquery:"type"`        // REQUIRED: income | outcome
	CategoryID bigquery.NullString `bigquery:"category_id"` // NULLABLE
	CreatedAt  time.Time           `bigquery:"created_at"`  // REQUIRED
	UpdatedAt  time.Time           `bigquery:"updated_at"`  // REQUIRED
}

// listedTransactionRow is a transaction joined with its category.
type listedTransactionRow struct {
	ID         string              `bigquery:"id"`
	Title      string              `bigquery:"title"`
	Value      *big.Rat            `bigquery:"value"`
	Type       string              `bigquery:"type"`
	CategoryID bigquery.NullString `bigquery:"category_id"`
	CreatedAt  time.Time           `bigquery:"created_at"`
	UpdatedAt  time.Time           `bigquery:"updated_at"`

	CategoryTitle     bigquery.NullString    `bigquery:"category_title"`
	CategoryCreatedAt bigquery.NullTimestamp `bigquery:"category_created_at"`
	CategoryUpdatedAt bigquery.NullTimestamp `bigquery:"category_updated_at"`
}

type balanceRow struct {
	Income  *big.Rat `bigquery:"income"`
	Outcome *big.Rat `bigquery:"outcome"`
}

func newCategoryRow(c *domain.Category) *CategoryRow {
	return &CategoryRow{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r *CategoryRow) toDomain() *domain.Category {
	return &domain.Category{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newTransactionRow(tx *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		ID:         tx.ID,
		Title:      tx.Title,
		Value:      tx.Value.Rat(),
		Type:       string(tx.Type),
		CategoryID: bigquery.NullString{StringVal: tx.CategoryID, Valid: tx.CategoryID != ""},
		CreatedAt:  tx.CreatedAt,
		UpdatedAt:  tx.UpdatedAt,
	}
}

func (r *listedTransactionRow) toDomain() (*domain.Transaction, error) {
	value, err := ratToDecimal(r.Value)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}

	tx := &domain.Transaction{
		ID:        r.ID,
		Title:     r.Title,
		Value:     value,
		Type:      domain.TransactionType(r.Type),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.CategoryID.Valid {
		tx.CategoryID = r.CategoryID.StringVal
	}
	if r.CategoryTitle.Valid {
		tx.Category = &domain.Category{
			ID:        r.CategoryID.StringVal,
			Title:     r.CategoryTitle.StringVal,
			CreatedAt: r.CategoryCreatedAt.Timestamp,
			UpdatedAt: r.CategoryUpdatedAt.Timestamp,
		}
	}
	return tx, nil
}

// ratToDecimal converts a NUMERIC value read from BigQuery. A nil value is zero.
func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(r.FloatString(numericScale))
	if err != nil {
		return decimal.Zero, fmt.Errorf("converting numeric %s: %w", r.String(), err)
	}
	return d, nil
}
