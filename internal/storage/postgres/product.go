package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartinventory/pos/internal/domain/catalog"
)

const (
	productColumns = `p.id, p.name, p.category_id, c.name, p.selling_price, p.cost_price, p.tax_rate, p.stock, p.sales_count`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON p.category_id = c.id ORDER BY p.id`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON p.category_id = c.id WHERE p.id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON p.category_id = c.id WHERE p.id = ANY($1)`

	searchProductsSQL = `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON p.category_id = c.id
		WHERE lower(p.name) LIKE lower($1) || '%' ORDER BY p.name`

	insertProductSQL = `INSERT INTO products (name, category_id, selling_price, cost_price, tax_rate, stock)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	restockProductSQL = `UPDATE products SET stock = stock + $1 WHERE id = $2`
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products with their category names, ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// SearchByPrefix returns products whose name starts with prefix,
// case-insensitively.
func (r *ProductRepository) SearchByPrefix(ctx context.Context, prefix string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, searchProductsSQL, prefix)
	if err != nil {
		return nil, fmt.Errorf("searching products %q: %w", prefix, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product and returns it with its assigned ID.
func (r *ProductRepository) Create(ctx context.Context, p catalog.NewProduct) (*catalog.Product, error) {
	if p.Name == "" {
		return nil, catalog.ErrEmptyName
	}
	if p.SellingPrice.IsNegative() || p.CostPrice.IsNegative() || p.Stock < 0 {
		return nil, catalog.ErrNegativeAmount
	}

	var id int64
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Name, p.CategoryID, p.SellingPrice, p.CostPrice, p.TaxRate, p.Stock,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating product %q: %w", p.Name, err)
	}

	return r.GetByID(ctx, id)
}

// Restock increases a product's stock by qty.
func (r *ProductRepository) Restock(ctx context.Context, id int64, qty int) error {
	if qty <= 0 {
		return catalog.ErrNegativeAmount
	}

	tag, err := r.pool.Exec(ctx, restockProductSQL, qty, id)
	if err != nil {
		return fmt.Errorf("restocking product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.CategoryName,
		&p.SellingPrice, &p.CostPrice, &p.TaxRate, &p.Stock, &p.SalesCount,
	)
	return p, err
}
