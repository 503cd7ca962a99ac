package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"github.com/dvloznov/finance-ledger/internal/logger"
)

// CategoryReconciler matches referenced category names against stored
// categories and creates the missing ones. Titles compare case-sensitively.
type CategoryReconciler struct {
	repo ledger.CategoryRepository
}

// NewCategoryReconciler creates a reconciler backed by repo.
func NewCategoryReconciler(repo ledger.CategoryRepository) *CategoryReconciler {
	return &CategoryReconciler{repo: repo}
}

// Reconcile returns a title -> category mapping covering every name in names.
// Names without a stored match are created in one batch, at most once each.
func (r *CategoryReconciler) Reconcile(ctx context.Context, names []string) (map[string]*domain.Category, error) {
	mapping := make(map[string]*domain.Category, len(names))
	if len(names) == 0 {
		return mapping, nil
	}

	titles := ledger.UniqueTitles(names)

	existing, err := r.repo.FindCategoriesByTitles(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("Reconcile: find categories: %w", err)
	}
	for _, c := range existing {
		if _, ok := mapping[c.Title]; !ok {
			mapping[c.Title] = c
		}
	}

	var missing []*domain.Category
	for _, title := range titles {
		if _, ok := mapping[title]; ok {
			continue
		}
		missing = append(missing, &domain.Category{Title: title})
	}

	if len(missing) > 0 {
		if err := r.repo.InsertCategories(ctx, missing); err != nil {
			return nil, fmt.Errorf("Reconcile: insert categories: %w", err)
		}
		for _, c := range missing {
			mapping[c.Title] = c
		}
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Int("referenced", len(names)).
		Int("existing", len(existing)).
		Int("created", len(missing)).
		Msg("Categories reconciled")

	return mapping, nil
}

// ResolveOne returns the category titled name, creating it when absent.
func (r *CategoryReconciler) ResolveOne(ctx context.Context, name string) (*domain.Category, error) {
	mapping, err := r.Reconcile(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	return mapping[name], nil
}
