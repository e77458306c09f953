package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartinventory/pos/internal/domain/billing"
)

const (
	lockStockSQL = `SELECT id, stock FROM products WHERE id = ANY($1) FOR UPDATE`

	decrementStockSQL = `UPDATE products
		SET stock = stock - $1, sales_count = sales_count + $1 WHERE id = $2`

	upsertCustomerSQL = `INSERT INTO customers (mobile, name)
		VALUES ($1, $2) ON CONFLICT (mobile) DO NOTHING`

	bumpCustomerStatsSQL = `UPDATE customers
		SET total_spent = total_spent + $1, total_visits = total_visits + 1
		WHERE mobile = $2`

	insertInvoiceSQL = `INSERT INTO invoices
		(id, customer_mobile, operator_username, subtotal, gst_amount, total_amount, payment_mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertInvoiceItemSQL = `INSERT INTO invoice_items
		(invoice_id, product_id, quantity, unit_price, unit_cost)
		VALUES ($1, $2, $3, $4, $5)`

	invoiceColumns = `i.id, i.customer_mobile, c.name, i.operator_username,
		i.subtotal, i.gst_amount, i.total_amount, i.payment_mode, i.created_at`

	getInvoiceSQL = `SELECT ` + invoiceColumns + `
		FROM invoices i JOIN customers c ON i.customer_mobile = c.mobile WHERE i.id = $1`

	listInvoicesSQL = `SELECT ` + invoiceColumns + `
		FROM invoices i JOIN customers c ON i.customer_mobile = c.mobile
		ORDER BY i.created_at DESC LIMIT $1`

	getInvoiceItemsSQL = `SELECT ii.product_id, p.name, ii.quantity, ii.unit_price, ii.unit_cost
		FROM invoice_items ii JOIN products p ON ii.product_id = p.id
		WHERE ii.invoice_id = $1 ORDER BY ii.id`
)

// ErrInvoiceNotFound is returned when a requested invoice does not exist.
var ErrInvoiceNotFound = errors.New("invoice not found")

var _ billing.Repository = (*InvoiceRepository)(nil)

// InvoiceRepository implements billing.Repository backed by PostgreSQL.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository returns an InvoiceRepository that uses the given pool.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// Create persists an invoice atomically: the customer row, the stock
// decrement, the invoice with its items, and the customer stat update all
// commit together or not at all. Stock is re-checked under row locks so
// concurrent checkouts cannot oversell; a shortfall surfaces as
// billing.InsufficientStockError and rolls everything back.
func (r *InvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, upsertCustomerSQL, inv.CustomerMobile, inv.CustomerName); err != nil {
		return fmt.Errorf("upserting customer %q: %w", inv.CustomerMobile, err)
	}

	if err := r.decrementStock(ctx, tx, inv.Items); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, insertInvoiceSQL,
		inv.ID, inv.CustomerMobile, inv.Operator,
		inv.Subtotal, inv.GSTAmount, inv.Total,
		string(inv.PaymentMode), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting invoice %q: %w", inv.ID, err)
	}

	for _, item := range inv.Items {
		_, err := tx.Exec(ctx, insertInvoiceItemSQL,
			inv.ID, item.ProductID, item.Quantity, item.UnitPrice, item.UnitCost)
		if err != nil {
			return fmt.Errorf("inserting invoice item %d: %w", item.ProductID, err)
		}
	}

	if _, err := tx.Exec(ctx, bumpCustomerStatsSQL, inv.Total, inv.CustomerMobile); err != nil {
		return fmt.Errorf("updating customer stats %q: %w", inv.CustomerMobile, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}

// decrementStock locks the sold products, verifies every requested quantity
// is available, then applies the decrements. Runs inside the checkout tx.
func (r *InvoiceRepository) decrementStock(ctx context.Context, tx pgx.Tx, items []billing.LineItem) error {
	// Items may repeat a product; availability and the decrement are both
	// computed on the combined quantity per product.
	need := make(map[int64]int, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := need[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		need[item.ProductID] += item.Quantity
	}

	rows, err := tx.Query(ctx, lockStockSQL, ids)
	if err != nil {
		return fmt.Errorf("locking stock rows: %w", err)
	}

	type stockRow struct {
		ID    int64
		Stock int
	}
	locked, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (stockRow, error) {
		var s stockRow
		err := row.Scan(&s.ID, &s.Stock)
		return s, err
	})
	if err != nil {
		return fmt.Errorf("scanning stock rows: %w", err)
	}

	available := make(map[int64]int, len(locked))
	for _, s := range locked {
		available[s.ID] = s.Stock
	}

	// All-or-nothing: verify every product before mutating anything.
	for _, id := range ids {
		stock, ok := available[id]
		if !ok {
			return &billing.ProductNotFoundError{ProductID: id}
		}
		if need[id] > stock {
			return &billing.InsufficientStockError{
				ProductID: id,
				Requested: need[id],
				Available: stock,
			}
		}
	}

	for _, id := range ids {
		if _, err := tx.Exec(ctx, decrementStockSQL, need[id], id); err != nil {
			return fmt.Errorf("decrementing stock for product %d: %w", id, err)
		}
	}
	return nil
}

// GetByID returns an invoice with its line items.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*billing.Invoice, error) {
	rows, err := r.pool.Query(ctx, getInvoiceSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice %q: %w", id, err)
	}

	inv, err := pgx.CollectExactlyOneRow(rows, scanInvoice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("getting invoice %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, getInvoiceItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice items %q: %w", id, err)
	}
	inv.Items, err = pgx.CollectRows(itemRows, scanInvoiceItem)
	if err != nil {
		return nil, fmt.Errorf("scanning invoice items %q: %w", id, err)
	}

	return &inv, nil
}

// List returns the most recent invoices without their items.
func (r *InvoiceRepository) List(ctx context.Context, limit int) ([]billing.Invoice, error) {
	rows, err := r.pool.Query(ctx, listInvoicesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return pgx.CollectRows(rows, scanInvoice)
}

func scanInvoice(row pgx.CollectableRow) (billing.Invoice, error) {
	var (
		inv  billing.Invoice
		mode string
	)
	err := row.Scan(
		&inv.ID, &inv.CustomerMobile, &inv.CustomerName, &inv.Operator,
		&inv.Subtotal, &inv.GSTAmount, &inv.Total, &mode, &inv.CreatedAt,
	)
	inv.PaymentMode = billing.PaymentMode(mode)
	return inv, err
}

func scanInvoiceItem(row pgx.CollectableRow) (billing.LineItem, error) {
	var item billing.LineItem
	err := row.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.UnitCost)
	return item, err
}
