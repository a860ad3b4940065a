package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/homeinv/internal/domain"
)

// categoryRepository is the subset of store.CategoryStore that CategoryService requires.
type categoryRepository interface {
	Insert(ctx context.Context, c domain.Category) (bool, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Observe(ctx context.Context) <-chan []*domain.Category
	Update(ctx context.Context, oldName string, c domain.Category) error
	Delete(ctx context.Context, name string) error
}

// categoryItemRepository is the subset of store.ItemStore that CategoryService requires.
type categoryItemRepository interface {
	ListByCategory(ctx context.Context, category string) ([]*domain.Item, error)
	UpdateBatch(ctx context.Context, items []domain.Item) error
	DeleteByCategory(ctx context.Context, category string) (int64, error)
}

type CategoryService struct {
	categories categoryRepository
	items      categoryItemRepository
	logger     *slog.Logger
}

func NewCategoryService(categories categoryRepository, items categoryItemRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, items: items, logger: logger}
}

func (s *CategoryService) AddCategory(ctx context.Context, c domain.Category) (bool, error) {
	if err := requireName("category", c.Name); err != nil {
		return false, err
	}
	return s.categories.Insert(ctx, c)
}

func (s *CategoryService) GetCategory(ctx context.Context, name string) (*domain.Category, error) {
	return s.categories.GetByName(ctx, name)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) ObserveCategories(ctx context.Context) <-chan []*domain.Category {
	return s.categories.Observe(ctx)
}

// UpdateCategory rewrites the category row and then recomputes every item
// tagged with it. Items are rewritten in one batch.
func (s *CategoryService) UpdateCategory(ctx context.Context, oldName string, updated domain.Category) error {
	if err := requireName("category", updated.Name); err != nil {
		return err
	}
	old, err := s.categories.GetByName(ctx, oldName)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if old == nil {
		return notFound("category", oldName)
	}
	if updated.Name != oldName {
		existing, err := s.categories.GetByName(ctx, updated.Name)
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if existing != nil {
			return conflict("category", updated.Name)
		}
	}

	return runSteps(ctx, s.logger, "update category", []any{"category", oldName, "new_category", updated.Name}, []step{
		single("update category row", func(ctx context.Context) error {
			return s.categories.Update(ctx, oldName, updated)
		}),
		{"recompute items", func(ctx context.Context) (int64, error) {
			affected, err := s.items.ListByCategory(ctx, oldName)
			if err != nil {
				return 0, err
			}
			if len(affected) == 0 {
				return 0, nil
			}
			batch := make([]domain.Item, 0, len(affected))
			for _, item := range affected {
				batch = append(batch, domain.ApplyCategoryChange(*item, *old, updated))
			}
			if err := s.items.UpdateBatch(ctx, batch); err != nil {
				return 0, err
			}
			return int64(len(batch)), nil
		}},
	})
}

// DeleteCategory deletes every item of the category and then the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, name string) error {
	c, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if c == nil {
		return notFound("category", name)
	}

	return runSteps(ctx, s.logger, "delete category", []any{"category", name}, []step{
		{"delete items", func(ctx context.Context) (int64, error) { return s.items.DeleteByCategory(ctx, name) }},
		single("delete category row", func(ctx context.Context) error { return s.categories.Delete(ctx, name) }),
	})
}
