package sqlite

import (
	"context"
	"strings"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

// maxTitlesPerQuery keeps IN lists well below SQLite's bound-parameter limit.
const maxTitlesPerQuery = 500

// ListCategories implements ledger.CategoryRepository.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM categories
		ORDER BY title, id
	`)
	if err != nil {
		return nil, domain.StorageError("ListCategories: query", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.StorageError("ListCategories: scan", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("ListCategories: rows", err)
	}

	return categories, nil
}

// FindCategoriesByTitles implements ledger.CategoryRepository.
func (s *Store) FindCategoriesByTitles(ctx context.Context, titles []string) ([]*domain.Category, error) {
	titles = ledger.UniqueTitles(titles)

	var categories []*domain.Category
	for start := 0; start < len(titles); start += maxTitlesPerQuery {
		end := start + maxTitlesPerQuery
		if end > len(titles) {
			end = len(titles)
		}
		chunk := titles[start:end]

		args := make([]interface{}, len(chunk))
		for i, t := range chunk {
			args[i] = t
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")

		rows, err := s.q.QueryContext(ctx, `
			SELECT id, title, created_at, updated_at
			FROM categories
			WHERE title IN (`+placeholders+`)
			ORDER BY created_at, rowid
		`, args...)
		if err != nil {
			return nil, domain.StorageError("FindCategoriesByTitles: query", err)
		}

		for rows.Next() {
			var c domain.Category
			if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
				rows.Close()
				return nil, domain.StorageError("FindCategoriesByTitles: scan", err)
			}
			categories = append(categories, &c)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, domain.StorageError("FindCategoriesByTitles: rows", err)
		}
	}

	return categories, nil
}

// InsertCategories implements ledger.CategoryRepository.
// All rows are written in one database transaction.
func (s *Store) InsertCategories(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	ledger.PrepareCategories(categories, s.now())

	return s.batch(ctx, func(q querier) error {
		stmt, err := q.PrepareContext(ctx, `
			INSERT INTO categories (id, title, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return domain.StorageError("InsertCategories: prepare", err)
		}
		defer stmt.Close()

		for _, c := range categories {
			if _, err := stmt.ExecContext(ctx, c.ID, c.Title, c.CreatedAt, c.UpdatedAt); err != nil {
				return domain.StorageError("InsertCategories: insert "+c.Title, err)
			}
		}
		return nil
	})
}
