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

// ListCategories implements ledger.CategoryRepository.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT id, title, created_at, updated_at
		FROM %s
		ORDER BY title, id
	`, s.table(categoriesTable)))

	return readCategories(ctx, "ListCategories", q)
}

// FindCategoriesByTitles implements ledger.CategoryRepository.
func (s *Store) FindCategoriesByTitles(ctx context.Context, titles []string) ([]*domain.Category, error) {
	titles = ledger.UniqueTitles(titles)
	if len(titles) == 0 {
		return nil, nil
	}

	q := s.client.Query(fmt.Sprintf(`
		SELECT id, title, created_at, updated_at
		FROM %s
		WHERE title IN UNNEST(@titles)
		ORDER BY created_at, id
	`, s.table(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "titles", Value: titles},
	}

	return readCategories(ctx, "FindCategoriesByTitles", q)
}

func readCategories(ctx context.Context, op string, q *bigquery.Query) ([]*domain.Category, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, domain.StorageError(op+": query read", err)
	}

	var categories []*domain.Category
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, domain.StorageError(op+": iter next", err)
		}
		categories = append(categories, r.toDomain())
	}

	return categories, nil
}

// InsertCategories implements ledger.CategoryRepository.
func (s *Store) InsertCategories(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	ledger.PrepareCategories(categories, s.now())

	for start := 0; start < len(categories); start += maxRowsPerInsert {
		end := min(start+maxRowsPerInsert, len(categories))

		rows := make([]*CategoryRow, 0, end-start)
		for _, c := range categories[start:end] {
			rows = append(rows, newCategoryRow(c))
		}

		sql, params := buildCategoryInsert(s.table(categoriesTable), rows)
		q := s.client.Query(sql)
		q.Parameters = params

		if _, err := s.runDML(ctx, "InsertCategories", q); err != nil {
			return err
		}
	}

	return nil
}

func buildCategoryInsert(table string, rows []*CategoryRow) (string, []bigquery.QueryParameter) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT %s (id, title, created_at, updated_at)\nVALUES\n", table)

	params := make([]bigquery.QueryParameter, 0, len(rows)*4)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "(@id_%[1]d, @title_%[1]d, @created_at_%[1]d, @updated_at_%[1]d)", i)

		params = append(params,
			bigquery.QueryParameter{Name: fmt.Sprintf("id_%d", i), Value: r.ID},
			bigquery.QueryParameter{Name: fmt.Sprintf("title_%d", i), Value: r.Title},
			bigquery.QueryParameter{Name: fmt.Sprintf("created_at_%d", i), Value: r.CreatedAt},
			bigquery.QueryParameter{Name: fmt.Sprintf("updated_at_%d", i), Value: r.UpdatedAt},
		)
	}

	return b.String(), params
}
