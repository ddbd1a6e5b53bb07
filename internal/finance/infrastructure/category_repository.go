package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindActiveCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, is_active FROM categories WHERE is_active = TRUE ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsActive); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) FindCategoryByID(ctx context.Context, categoryID int) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name, is_active FROM categories WHERE id = $1", categoryID).
		Scan(&category.ID, &category.Name, &category.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category %d: %w", categoryID, err)
	}
	return category, nil
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO categories (name, is_active) VALUES ($1, $2) RETURNING id", category.Name, category.IsActive,
	).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) SetCategoryActive(ctx context.Context, categoryID int, active bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE categories SET is_active = $1 WHERE id = $2", active, categoryID)
	if err != nil {
		return fmt.Errorf("set category %d active: %w", categoryID, err)
	}
	return requireAffected(result, financeErrors.ErrCategoryNotFound)
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, categoryID int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", categoryID)
	if err != nil {
		return translateDeleteError(err, "category", categoryID)
	}
	return requireAffected(result, financeErrors.ErrCategoryNotFound)
}
