package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartinventory/pos/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY name`
	insertCategorySQL = `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	renameCategorySQL = `UPDATE categories SET name = $1 WHERE id = $2`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*catalog.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, catalog.ErrEmptyName
	}

	c := catalog.Category{Name: name}
	if err := r.pool.QueryRow(ctx, insertCategorySQL, name).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("creating category %q: %w", name, err)
	}
	return &c, nil
}

// Rename changes a category's name.
func (r *CategoryRepository) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.ErrEmptyName
	}

	tag, err := r.pool.Exec(ctx, renameCategorySQL, name, id)
	if err != nil {
		return fmt.Errorf("renaming category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}
