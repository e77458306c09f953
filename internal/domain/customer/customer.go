// Package customer holds the customer model. Customers are keyed by their
// mobile number and created on their first billing interaction.
package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no customer exists for a mobile number.
var ErrNotFound = errors.New("customer not found")

// Customer is a buyer identified by a validated 10-digit mobile number.
type Customer struct {
	Mobile      string
	Name        string
	Email       string
	TotalSpent  decimal.Decimal
	TotalVisits int
	JoinedAt    time.Time
}

// Repository defines persistence operations for customers. Spend/visit
// counters are updated inside the checkout transaction, not here.
type Repository interface {
	GetByMobile(ctx context.Context, mobile string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
}
