package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"google.golang.org/api/iterator"
)

func (s *Store) selectTransactions() string {
	return fmt.Sprintf(`
		SELECT
			t.id,
			t.title,
			t.value,
			t.type,
			t.category_id,
			t.created_at,
			t.updated_at,
			c.title AS category_title,
			c.created_at AS category_created_at,
			c.updated_at AS category_updated_at
		FROM %s t
		LEFT JOIN %s c
		  ON c.id = t.category_id
	`, s.table(transactionsTable), s.table(categoriesTable))
}

// ListTransactions implements ledger.TransactionRepository.
func (s *Store) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	q := s.client.Query(s.selectTransactions() + `ORDER BY t.created_at, t.id`)
	return s.readTransactions(ctx, "ListTransactions", q)
}

// FindTransaction implements ledger.TransactionRepository.
func (s *Store) FindTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	q := s.client.Query(s.selectTransactions() + `WHERE t.id = @id LIMIT 1`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: id},
	}

	txs, err := s.readTransactions(ctx, "FindTransaction", q)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, domain.ErrNotFound
	}
	return txs[0], nil
}

func (s *Store) readTransactions(ctx context.Context, op string, q *bigquery.Query) ([]*domain.Transaction, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, domain.StorageError(op+": query read", err)
	}

	var txs []*domain.Transaction
	for {
		var r listedTransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, domain.StorageError(op+": iter next", err)
		}
		tx, err := r.toDomain()
		if err != nil {
			return nil, domain.StorageError(op, err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// InsertTransactions implements ledger.TransactionRepository. Rows are written
// with multi-row INSERT statements of at most maxRowsPerInsert rows each.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	ledger.PrepareTransactions(txs, s.now())

	rows := make([]*TransactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = newTransactionRow(tx)
	}

	for start := 0; start < len(rows); start += maxRowsPerInsert {
		end := min(start+maxRowsPerInsert, len(rows))

		sql, params := buildTransactionInsert(s.table(transactionsTable), rows[start:end])
		q := s.client.Query(sql)
		q.Parameters = params

		if _, err := s.runDML(ctx, "InsertTransactions", q); err != nil {
			return err
		}
	}

	return nil
}

// buildTransactionInsert renders one INSERT statement for rows with a
// distinct set of named parameters per row.
func buildTransactionInsert(table string, rows []*TransactionRow) (string, []bigquery.QueryParameter) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT %s (id, title, value, type, category_id, created_at, updated_at)\nVALUES\n", table)

	params := make([]bigquery.QueryParameter, 0, len(rows)*7)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "(@id_%[1]d, @title_%[1]d, @value_%[1]d, @type_%[1]d, @category_id_%[1]d, @created_at_%[1]d, @updated_at_%[1]d)", i)

		params = append(params,
			bigquery.QueryParameter{Name: fmt.Sprintf("id_%d", i), Value: r.ID},
			bigquery.QueryParameter{Name: fmt.Sprintf("title_%d", i), Value: r.Title},
			bigquery.QueryParameter{Name: fmt.Sprintf("value_%d", i), Value: r.Value},
			bigquery.QueryParameter{Name: fmt.Sprintf("type_%d", i), Value: r.Type},
			bigquery.QueryParameter{Name: fmt.Sprintf("category_id_%d", i), Value: r.CategoryID},
			bigquery.QueryParameter{Name: fmt.Sprintf("created_at_%d", i), Value: r.CreatedAt},
			bigquery.QueryParameter{Name: fmt.Sprintf("updated_at_%d", i), Value: r.UpdatedAt},
		)
	}

	return b.String(), params
}

// DeleteTransaction implements ledger.TransactionRepository.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	q := s.client.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = @id
	`, s.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: id},
	}

	affected, err := s.runDML(ctx, "DeleteTransaction", q)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Balance implements ledger.TransactionRepository. Sums are computed by
// BigQuery on NUMERIC values.
func (s *Store) Balance(ctx context.Context) (domain.Balance, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			COALESCE(SUM(IF(type = 'income', value, 0)), 0) AS income,
			COALESCE(SUM(IF(type = 'outcome', value, 0)), 0) AS outcome
		FROM %s
	`, s.table(transactionsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return domain.Balance{}, domain.StorageError("Balance: query read", err)
	}

	var r balanceRow
	if err := it.Next(&r); err != nil && err != iterator.Done {
		return domain.Balance{}, domain.StorageError("Balance: iter next", err)
	}

	income, err := ratToDecimal(r.Income)
	if err != nil {
		return domain.Balance{}, domain.StorageError("Balance", err)
	}
	outcome, err := ratToDecimal(r.Outcome)
	if err != nil {
		return domain.Balance{}, domain.StorageError("Balance", err)
	}

	return domain.NewBalance(income, outcome), nil
}
