package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/pos/internal/domain/catalog"
	"github.com/smartinventory/pos/internal/domain/customer"
	"github.com/smartinventory/pos/internal/domain/settings"
	"github.com/smartinventory/pos/internal/upi"
	"github.com/smartinventory/pos/internal/validate"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNameRequired = errors.New("customer name required for new customers")
)

// ProductNotFoundError indicates a cart references a product that does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a cart line has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// InsufficientStockError indicates a requested quantity exceeds available
// stock. The checkout is aborted before any mutation.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// CardError wraps a card validation failure with the failing field.
type CardError struct {
	Field string
	Err   error
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card %s: %s", e.Field, e.Err)
}

func (e *CardError) Unwrap() error { return e.Err }

// CartItem is one requested line in a checkout.
type CartItem struct {
	ProductID int64
	Quantity  int
}

// CardDetails carries the card fields collected for CARD payments. The CVV
// is checked for shape and never persisted.
type CardDetails struct {
	HolderName string
	Number     string
	Expiry     string // MM/YY
	CVV        string
}

// CheckoutRequest holds the input for a checkout.
type CheckoutRequest struct {
	CustomerMobile string
	CustomerName   string
	PaymentMode    PaymentMode
	Card           *CardDetails
	Items          []CartItem
}

// CheckoutResult holds the created invoice and, for UPI payments, the
// payment reference URI to present as a QR payload.
type CheckoutResult struct {
	Invoice    *Invoice
	PaymentURI string
}

// Service encapsulates the checkout business logic.
type Service struct {
	products  catalog.ProductRepository
	customers customer.Repository
	invoices  Repository
	settings  settings.Repository

	now func() time.Time
}

// NewService creates a checkout Service with the required dependencies.
func NewService(
	products catalog.ProductRepository,
	customers customer.Repository,
	invoices Repository,
	st settings.Repository,
) *Service {
	return &Service{
		products:  products,
		customers: customers,
		invoices:  invoices,
		settings:  st,
		now:       time.Now,
	}
}

// Checkout validates the customer and payment details, fetches products in a
// single batch, verifies stock availability, computes GST-inclusive totals
// and persists the invoice. Stock decrement and invoice insert happen in one
// transaction inside the repository; a failed stock re-check under row locks
// surfaces as InsufficientStockError with no state change.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest, operator string) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := validate.Mobile(req.CustomerMobile); err != nil {
		return nil, errors.Wrap(err, "customer mobile")
	}

	name, err := s.resolveCustomerName(ctx, req.CustomerMobile, req.CustomerName)
	if err != nil {
		return nil, err
	}

	if req.PaymentMode == PaymentCard {
		if err := s.validateCard(req.Card); err != nil {
			return nil, err
		}
	}

	cfg, err := s.storeConfig(ctx)
	if err != nil {
		return nil, err
	}

	items, subtotal, gst, err := s.buildLineItems(ctx, req.Items, cfg)
	if err != nil {
		return nil, err
	}

	now := s.now()
	inv := &Invoice{
		ID:             fmt.Sprintf("INV%d", now.Unix()),
		CustomerMobile: req.CustomerMobile,
		CustomerName:   name,
		Operator:       operator,
		Items:          items,
		Subtotal:       subtotal.Round(2),
		GSTAmount:      gst.Round(2),
		Total:          subtotal.Add(gst).Round(2),
		PaymentMode:    req.PaymentMode,
		CreatedAt:      now,
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "create invoice")
	}

	res := &CheckoutResult{Invoice: inv}
	if req.PaymentMode == PaymentUPI {
		res.PaymentURI = upi.PaymentURI(cfg.UPIID, cfg.StoreName, inv.Total, "Bill Payment")
	}
	return res, nil
}

// resolveCustomerName returns the stored name for known customers. New
// customers must supply a name; they are inserted by the checkout
// transaction alongside the invoice.
func (s *Service) resolveCustomerName(ctx context.Context, mobile, provided string) (string, error) {
	c, err := s.customers.GetByMobile(ctx, mobile)
	switch {
	case err == nil:
		return c.Name, nil
	case errors.Is(err, customer.ErrNotFound):
		if provided == "" {
			return "", ErrNameRequired
		}
		return provided, nil
	default:
		return "", errors.Wrap(err, "lookup customer")
	}
}

func (s *Service) validateCard(card *CardDetails) error {
	if card == nil {
		return &CardError{Field: "details", Err: validate.ErrInvalidFormat}
	}
	if !validHolderName(card.HolderName) {
		return &CardError{Field: "holder name", Err: validate.ErrInvalidFormat}
	}
	if err := validate.CardNumber(card.Number); err != nil {
		return &CardError{Field: "number", Err: err}
	}
	if len(card.CVV) != 3 || !allDigits(card.CVV) {
		return &CardError{Field: "cvv", Err: validate.ErrInvalidFormat}
	}
	month, year, err := validate.ParseExpiry(card.Expiry)
	if err != nil {
		return &CardError{Field: "expiry", Err: err}
	}
	if err := validate.Expiry(month, year, s.now()); err != nil {
		return &CardError{Field: "expiry", Err: err}
	}
	return nil
}

func (s *Service) storeConfig(ctx context.Context) (settings.Store, error) {
	raw, err := s.settings.All(ctx)
	if err != nil {
		return settings.Store{}, errors.Wrap(err, "load settings")
	}
	return settings.FromMap(raw), nil
}

// buildLineItems batch-fetches products, validates quantities against stock
// and accumulates the subtotal and GST amount.
func (s *Service) buildLineItems(
	ctx context.Context,
	cart []CartItem,
	cfg settings.Store,
) ([]LineItem, decimal.Decimal, decimal.Decimal, error) {
	// Lines repeating a product are merged so the stock check runs against
	// the combined quantity.
	merged := make([]CartItem, 0, len(cart))
	lineFor := make(map[int64]int, len(cart))
	for _, it := range cart {
		if it.Quantity <= 0 {
			return nil, decimal.Zero, decimal.Zero, &InvalidQuantityError{ProductID: it.ProductID}
		}
		if i, ok := lineFor[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		lineFor[it.ProductID] = len(merged)
		merged = append(merged, it)
	}

	ids := make([]int64, len(merged))
	for i, it := range merged {
		ids[i] = it.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, errors.Wrap(err, "get products")
	}
	byID := make(map[int64]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]LineItem, len(merged))
	subtotal := decimal.Zero
	gst := decimal.Zero
	for i, it := range merged {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, decimal.Zero, decimal.Zero, &ProductNotFoundError{ProductID: it.ProductID}
		}
		// All-or-nothing precheck; the transaction re-checks under row locks.
		if it.Quantity > p.Stock {
			return nil, decimal.Zero, decimal.Zero, &InsufficientStockError{
				ProductID: p.ID,
				Requested: it.Quantity,
				Available: p.Stock,
			}
		}

		qty := decimal.NewFromInt(int64(it.Quantity))
		line := p.SellingPrice.Mul(qty)
		subtotal = subtotal.Add(line)
		if cfg.GSTEnabled {
			rate := p.TaxRate
			if rate.IsZero() {
				rate = cfg.GSTPercent
			}
			gst = gst.Add(line.Mul(rate).Div(decimal.NewFromInt(100)))
		}

		items[i] = LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.SellingPrice,
			UnitCost:    p.CostPrice,
		}
	}

	return items, subtotal, gst, nil
}

func validHolderName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == ' ':
		default:
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
