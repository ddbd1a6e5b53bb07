package domain

import (
	"context"
	"unicode/utf8"

	"github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

const maxCategoryNameLength = 128

type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.NewFieldValidationError("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(c.Name) > maxCategoryNameLength {
		return errors.NewFieldValidationError("name", "Ensure this field has no more than 128 characters.")
	}
	return nil
}

type CategoryRepository interface {
	FindActiveCategories(ctx context.Context) ([]Category, error)
	FindCategoryByID(ctx context.Context, categoryID int) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	SetCategoryActive(ctx context.Context, categoryID int, active bool) error
	DeleteCategory(ctx context.Context, categoryID int) error
}
