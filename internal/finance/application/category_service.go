package application

import (
	"context"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) GetActiveCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.FindActiveCategories(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID int) (*domain.Category, error) {
	return s.repo.FindCategoryByID(ctx, categoryID)
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: name, IsActive: true}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeactivateCategory hides a category from pickers. Transactions that already use it keep it.
func (s *CategoryService) DeactivateCategory(ctx context.Context, categoryID int) error {
	return s.repo.SetCategoryActive(ctx, categoryID, false)
}

// DeleteCategory fails with a ReferentialIntegrityError while any transaction uses the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID int) error {
	return s.repo.DeleteCategory(ctx, categoryID)
}
