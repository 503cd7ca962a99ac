package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// mockCategoryRepository records calls and serves a fixed set of categories.
type mockCategoryRepository struct {
	existing []*domain.Category

	FindErr   error
	InsertErr error

	findCalls   [][]string
	insertCalls [][]*domain.Category
}

func (m *mockCategoryRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return m.existing, nil
}

func (m *mockCategoryRepository) FindCategoriesByTitles(ctx context.Context, titles []string) ([]*domain.Category, error) {
	m.findCalls = append(m.findCalls, titles)
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var out []*domain.Category
	for _, c := range m.existing {
		for _, t := range titles {
			if c.Title == t {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) InsertCategories(ctx context.Context, categories []*domain.Category) error {
	m.insertCalls = append(m.insertCalls, categories)
	if m.InsertErr != nil {
		return m.InsertErr
	}
	for _, c := range categories {
		c.ID = "new-" + c.Title
	}
	return nil
}

func TestCategoryReconciler_Reconcile(t *testing.T) {
	repo := &mockCategoryRepository{
		existing: []*domain.Category{{ID: "cat-housing", Title: "Housing"}},
	}
	r := NewCategoryReconciler(repo)

	names := []string{"Job", "Housing", "Job", "job", "Food", "Job"}
	mapping, err := r.Reconcile(context.Background(), names)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(repo.findCalls) != 1 || len(repo.findCalls[0]) != 4 {
		t.Errorf("expected one lookup of 4 distinct titles, got %v", repo.findCalls)
	}

	if len(repo.insertCalls) != 1 {
		t.Fatalf("expected one batch insert, got %d", len(repo.insertCalls))
	}
	created := repo.insertCalls[0]
	wantCreated := []string{"Job", "job", "Food"}
	if len(created) != len(wantCreated) {
		t.Fatalf("created %d categories, want %d", len(created), len(wantCreated))
	}
	for i, title := range wantCreated {
		if created[i].Title != title {
			t.Errorf("created[%d] = %q, want %q", i, created[i].Title, title)
		}
	}

	if got := mapping["Housing"]; got == nil || got.ID != "cat-housing" {
		t.Errorf("expected existing Housing to be reused, got %+v", got)
	}
	for _, title := range []string{"Job", "job", "Food"} {
		if got := mapping[title]; got == nil || got.ID != "new-"+title {
			t.Errorf("mapping[%q] = %+v", title, got)
		}
	}
	if len(mapping) != 4 {
		t.Errorf("expected 4 mapped titles, got %d", len(mapping))
	}
}

func TestCategoryReconciler_AllExisting(t *testing.T) {
	repo := &mockCategoryRepository{
		existing: []*domain.Category{{ID: "1", Title: "Job"}},
	}

	mapping, err := NewCategoryReconciler(repo).Reconcile(context.Background(), []string{"Job", "Job"})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(repo.insertCalls) != 0 {
		t.Errorf("expected no insert, got %d", len(repo.insertCalls))
	}
	if mapping["Job"].ID != "1" {
		t.Errorf("unexpected mapping: %+v", mapping["Job"])
	}
}

func TestCategoryReconciler_Errors(t *testing.T) {
	storageErr := domain.StorageError("FindCategoriesByTitles", errors.New("connection refused"))

	t.Run("find fails", func(t *testing.T) {
		repo := &mockCategoryRepository{FindErr: storageErr}
		_, err := NewCategoryReconciler(repo).Reconcile(context.Background(), []string{"Job"})
		if !errors.Is(err, domain.ErrStorageFailure) {
			t.Errorf("expected storage failure, got %v", err)
		}
		if len(repo.insertCalls) != 0 {
			t.Error("expected no insert after failed lookup")
		}
	})

	t.Run("insert fails", func(t *testing.T) {
		repo := &mockCategoryRepository{InsertErr: storageErr}
		_, err := NewCategoryReconciler(repo).Reconcile(context.Background(), []string{"Job"})
		if !errors.Is(err, domain.ErrStorageFailure) {
			t.Errorf("expected storage failure, got %v", err)
		}
	})
}

func TestCategoryReconciler_ResolveOne(t *testing.T) {
	repo := &mockCategoryRepository{}

	c, err := NewCategoryReconciler(repo).ResolveOne(context.Background(), "Food")
	if err != nil {
		t.Fatalf("ResolveOne failed: %v", err)
	}
	if c.Title != "Food" || c.ID != "new-Food" {
		t.Errorf("unexpected category: %+v", c)
	}
}

func TestCategoryReconciler_Empty(t *testing.T) {
	repo := &mockCategoryRepository{}

	mapping, err := NewCategoryReconciler(repo).Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(mapping) != 0 || len(repo.findCalls) != 0 {
		t.Errorf("expected no store calls for empty input")
	}
}
