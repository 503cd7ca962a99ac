package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

const selectTransactions = `
	SELECT
		t.id, t.title, t.value, t.type, COALESCE(t.category_id, ''), t.created_at, t.updated_at,
		c.id, c.title, c.created_at, c.updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
`

// ListTransactions implements ledger.TransactionRepository.
func (s *Store) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, selectTransactions+` ORDER BY t.created_at, t.rowid`)
	if err != nil {
		return nil, domain.StorageError("ListTransactions: query", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, domain.StorageError("ListTransactions: scan", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("ListTransactions: rows", err)
	}

	return txs, nil
}

// FindTransaction implements ledger.TransactionRepository.
func (s *Store) FindTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.q.QueryRowContext(ctx, selectTransactions+` WHERE t.id = ?`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.StorageError("FindTransaction: scan", err)
	}
	return tx, nil
}

// InsertTransactions implements ledger.TransactionRepository.
// All rows are written in one database transaction.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	ledger.PrepareTransactions(txs, s.now())

	return s.batch(ctx, func(q querier) error {
		stmt, err := q.PrepareContext(ctx, `
			INSERT INTO transactions (id, title, value, type, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return domain.StorageError("InsertTransactions: prepare", err)
		}
		defer stmt.Close()

		for _, tx := range txs {
			var categoryID sql.NullString
			if tx.CategoryID != "" {
				categoryID = sql.NullString{String: tx.CategoryID, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				tx.ID,
				tx.Title,
				tx.Value.String(),
				string(tx.Type),
				categoryID,
				tx.CreatedAt,
				tx.UpdatedAt,
			); err != nil {
				return domain.StorageError(fmt.Sprintf("InsertTransactions: insert %s", tx.ID), err)
			}
		}
		return nil
	})
}

// DeleteTransaction implements ledger.TransactionRepository.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return domain.StorageError("DeleteTransaction: exec", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError("DeleteTransaction: rows affected", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Balance implements ledger.TransactionRepository.
func (s *Store) Balance(ctx context.Context) (domain.Balance, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT type, value FROM transactions`)
	if err != nil {
		return domain.Balance{}, domain.StorageError("Balance: query", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var typ, value string
		if err := rows.Scan(&typ, &value); err != nil {
			return domain.Balance{}, domain.StorageError("Balance: scan", err)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return domain.Balance{}, domain.StorageError("Balance: parse value", err)
		}
		txs = append(txs, &domain.Transaction{Type: domain.TransactionType(typ), Value: v})
	}
	if err := rows.Err(); err != nil {
		return domain.Balance{}, domain.StorageError("Balance: rows", err)
	}

	return domain.ComputeBalance(txs), nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		value     string
		typ       string
		catID     sql.NullString
		catTitle  sql.NullString
		catCreate sql.NullTime
		catUpdate sql.NullTime
	)

	if err := row.Scan(
		&tx.ID, &tx.Title, &value, &typ, &tx.CategoryID, &tx.CreatedAt, &tx.UpdatedAt,
		&catID, &catTitle, &catCreate, &catUpdate,
	); err != nil {
		return nil, err
	}

	v, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parsing value %q: %w", value, err)
	}
	tx.Value = v
	tx.Type = domain.TransactionType(typ)

	if catID.Valid {
		tx.Category = &domain.Category{
			ID:        catID.String,
			Title:     catTitle.String,
			CreatedAt: catCreate.Time,
			UpdatedAt: catUpdate.Time,
		}
	}

	return &tx, nil
}
