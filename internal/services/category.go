package services

import (
	"context"
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/storage"
)

var (
	ErrCategoryExists = errors.New("category already exists")
	ErrCategoryInUse  = errors.New("category has recorded expenses")
)

// CategoryService manages the shared category list.
type CategoryService struct {
	store *storage.Store
}

func NewCategoryService(store *storage.Store) *CategoryService {
	return &CategoryService{store: store}
}

// Add creates a category after an advisory name check; the unique
// index backstops the check.
func (s *CategoryService) Add(ctx context.Context, name string) (*core.Category, error) {
	c := core.Category{Name: name}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.IsCategoryExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	if exists {
		return nil, ErrCategoryExists
	}

	id, err := s.store.InsertCategory(ctx, c)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrCategoryExists
	}
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	c.ID = id
	return &c, nil
}

func (s *CategoryService) Rename(ctx context.Context, categoryID int64, name string) error {
	c := core.Category{ID: categoryID, Name: name}
	if err := c.Validate(); err != nil {
		return err
	}
	err := s.store.UpdateCategory(ctx, c)
	if errors.Is(err, storage.ErrDuplicate) {
		return ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	return nil
}

// Remove deletes a category. The schema restricts the delete while
// expenses still reference it, surfaced here as ErrCategoryInUse.
func (s *CategoryService) Remove(ctx context.Context, categoryID int64) error {
	err := s.store.DeleteCategory(ctx, categoryID)
	if errors.Is(err, storage.ErrForeignKey) {
		return ErrCategoryInUse
	}
	if err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.GetAllCategories(ctx)
}

func (s *CategoryService) Search(ctx context.Context, term string) ([]core.Category, error) {
	return s.store.SearchCategories(ctx, term)
}
