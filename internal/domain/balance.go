package domain

import "github.com/shopspring/decimal"

// Balance summarises every stored transaction. It is never persisted.
type Balance struct {
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
	Total   decimal.Decimal `json:"total"`
}

// NewBalance builds a Balance from the two sums, deriving Total.
func NewBalance(income, outcome decimal.Decimal) Balance {
	return Balance{
		Income:  income,
		Outcome: outcome,
		Total:   income.Sub(outcome),
	}
}

// ComputeBalance sums txs by type. Transactions with an unknown type are ignored.
func ComputeBalance(txs []*Transaction) Balance {
	income := decimal.Zero
	outcome := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case TransactionTypeIncome:
			income = income.Add(tx.Value)
		case TransactionTypeOutcome:
			outcome = outcome.Add(tx.Value)
		}
	}
	return NewBalance(income, outcome)
}

// CanWithdraw reports whether an outcome of value keeps Total non-negative.
func (b Balance) CanWithdraw(value decimal.Decimal) bool {
	return !b.Total.Sub(value).IsNegative()
}
