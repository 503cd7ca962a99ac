package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	// TransactionTypeIncome adds to the balance.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeOutcome subtracts from the balance.
	TransactionTypeOutcome TransactionType = "outcome"
)

// ParseTransactionType matches s exactly against the known types.
// No case folding or trimming is applied.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case TransactionTypeIncome:
		return TransactionTypeIncome, true
	case TransactionTypeOutcome:
		return TransactionTypeOutcome, true
	}
	return "", false
}

// Valid reports whether t is income or outcome.
func (t TransactionType) Valid() bool {
	_, ok := ParseTransactionType(string(t))
	return ok
}

// Category is a named bucket transactions are tagged with.
// Titles are compared case-sensitively.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is one ledger entry.
// Value is expected to be positive; the sign is carried by Type.
type Transaction struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Value      decimal.Decimal `json:"value"`
	Type       TransactionType `json:"type"`
	CategoryID string          `json:"category_id"`
	Category   *Category       `json:"category,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
