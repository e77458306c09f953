// Package catalog holds the product and category model of the store.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrEmptyName is returned when a product or category name is blank.
	ErrEmptyName = errors.New("name required")
	// ErrNegativeAmount is returned when a price, stock or restock quantity
	// is outside its allowed range.
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Product is a catalog item available for sale. TaxRate is the GST
// percentage applied to the line when GST is enabled.
type Product struct {
	ID           int64
	Name         string
	CategoryID   int64
	CategoryName string
	SellingPrice decimal.Decimal
	CostPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	Stock        int
	SalesCount   int
}

// Category groups products for reporting.
type Category struct {
	ID   int64
	Name string
}

// NewProduct is the input for creating a product.
type NewProduct struct {
	Name         string
	CategoryID   int64
	SellingPrice decimal.Decimal
	CostPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	Stock        int
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	SearchByPrefix(ctx context.Context, prefix string) ([]Product, error)
	Create(ctx context.Context, p NewProduct) (*Product, error)
	Restock(ctx context.Context, id int64, qty int) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Rename(ctx context.Context, id int64, name string) error
}
