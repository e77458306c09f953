package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartinventory/pos/internal/domain/customer"
)

const (
	customerColumns = `mobile, name, email, total_spent, total_visits, joined_at`

	getCustomerSQL   = `SELECT ` + customerColumns + ` FROM customers WHERE mobile = $1`
	listCustomersSQL = `SELECT ` + customerColumns + ` FROM customers ORDER BY joined_at DESC`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByMobile returns the customer with the given mobile number.
func (r *CustomerRepository) GetByMobile(ctx context.Context, mobile string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerSQL, mobile)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", mobile, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", mobile, err)
	}
	return &c, nil
}

// List returns all customers, newest first.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.Mobile, &c.Name, &c.Email, &c.TotalSpent, &c.TotalVisits, &c.JoinedAt)
	return c, err
}
