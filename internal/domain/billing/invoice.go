// Package billing implements cart checkout: total computation with GST,
// atomic stock decrement, and immutable invoice records.
package billing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// PaymentMode enumerates how an invoice was paid.
type PaymentMode string

const (
	PaymentCash PaymentMode = "CASH"
	PaymentCard PaymentMode = "CARD"
	PaymentUPI  PaymentMode = "UPI"
)

// ErrInvalidPaymentMode is returned for payment modes outside the enum.
var ErrInvalidPaymentMode = errors.New("invalid payment mode")

// ParsePaymentMode maps a wire string onto a PaymentMode.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case PaymentCash, PaymentCard, PaymentUPI:
		return PaymentMode(s), nil
	}
	return "", ErrInvalidPaymentMode
}

// LineItem is one product position on an invoice. UnitCost is recorded for
// gross-profit reporting and never exposed to customers.
type LineItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
}

// Invoice is a completed sale. Invoices are append-only: once created they
// are never updated or deleted.
type Invoice struct {
	ID             string
	CustomerMobile string
	CustomerName   string
	Operator       string
	Items          []LineItem
	Subtotal       decimal.Decimal
	GSTAmount      decimal.Decimal
	Total          decimal.Decimal
	PaymentMode    PaymentMode
	CreatedAt      time.Time
}

// Repository defines persistence for invoices. Create must apply the stock
// decrement, the invoice insert and the customer stat update as a single
// transaction: either all of it commits or none of it does.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, limit int) ([]Invoice, error)
}

// LineTotal returns price x qty x (1 + ratePercent/100) rounded to currency
// precision.
func LineTotal(price decimal.Decimal, qty int, ratePercent decimal.Decimal) decimal.Decimal {
	line := price.Mul(decimal.NewFromInt(int64(qty)))
	tax := line.Mul(ratePercent).Div(decimal.NewFromInt(100))
	return line.Add(tax).Round(2)
}
