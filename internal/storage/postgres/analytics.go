package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/pos/internal/domain/analytics"
)

const (
	summarySQL = `SELECT
			COALESCE(SUM(total_amount), 0),
			COUNT(*),
			COALESCE(SUM((SELECT SUM(ii.unit_cost * ii.quantity) FROM invoice_items ii WHERE ii.invoice_id = i.id)), 0)
		FROM invoices i
		WHERE i.created_at >= $1 AND i.created_at < $2`

	turnoverSQL = `SELECT COALESCE(SUM(sales_count), 0) FROM products`

	retentionSQL = `SELECT COUNT(*), COUNT(*) FILTER (WHERE total_visits > 1) FROM customers`

	revenueByCategorySQL = `SELECT c.name,
			COALESCE(SUM(ii.unit_price * ii.quantity), 0),
			COALESCE(SUM(ii.quantity), 0)
		FROM invoice_items ii
		JOIN products p ON ii.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		GROUP BY c.name ORDER BY 2 DESC`

	countByPaymentModeSQL = `SELECT payment_mode, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM invoices GROUP BY payment_mode ORDER BY 2 DESC`

	countByHourSQL = `SELECT EXTRACT(HOUR FROM created_at)::int, COUNT(*)
		FROM invoices GROUP BY 1 ORDER BY 1`

	countByWeekdaySQL = `SELECT EXTRACT(DOW FROM created_at)::int, COUNT(*)
		FROM invoices GROUP BY 1 ORDER BY 1`

	topProductsSQL = `SELECT id, name, sales_count FROM products
		WHERE sales_count > 0 ORDER BY sales_count DESC, id LIMIT $1`

	dailySeriesSQL = `SELECT created_at::date, COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM invoices WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1 ORDER BY 1`
)

var _ analytics.Repository = (*AnalyticsRepository)(nil)

// AnalyticsRepository computes dashboard aggregates with SQL.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository returns an AnalyticsRepository that uses the given pool.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Summary computes the headline figures for invoices created in [from, to).
func (r *AnalyticsRepository) Summary(ctx context.Context, from, to time.Time) (*analytics.Summary, error) {
	var s analytics.Summary
	err := r.pool.QueryRow(ctx, summarySQL, from, to).Scan(&s.Revenue, &s.Orders, &s.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("computing summary: %w", err)
	}

	if s.Orders > 0 {
		s.AvgOrderValue = s.Revenue.DivRound(decimal.NewFromInt(s.Orders), 2)
	}
	s.GrossProfit = s.Revenue.Sub(s.TotalCost)
	if s.Revenue.IsPositive() {
		s.GrossMarginPct = s.GrossProfit.Div(s.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	if err := r.pool.QueryRow(ctx, turnoverSQL).Scan(&s.InventoryTurnover); err != nil {
		return nil, fmt.Errorf("computing turnover: %w", err)
	}

	var total, returning int64
	if err := r.pool.QueryRow(ctx, retentionSQL).Scan(&total, &returning); err != nil {
		return nil, fmt.Errorf("computing retention: %w", err)
	}
	if total > 0 {
		s.RetentionRatePct = decimal.NewFromInt(returning).
			Div(decimal.NewFromInt(total)).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &s, nil
}

// RevenueByCategory groups item revenue and units sold by product category.
func (r *AnalyticsRepository) RevenueByCategory(ctx context.Context) ([]analytics.CategoryRevenue, error) {
	rows, err := r.pool.Query(ctx, revenueByCategorySQL)
	if err != nil {
		return nil, fmt.Errorf("revenue by category: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.CategoryRevenue, error) {
		var cr analytics.CategoryRevenue
		err := row.Scan(&cr.Category, &cr.Revenue, &cr.UnitsSold)
		return cr, err
	})
}

// CountByPaymentMode groups order count and volume by payment mode.
func (r *AnalyticsRepository) CountByPaymentMode(ctx context.Context) ([]analytics.PaymentPattern, error) {
	rows, err := r.pool.Query(ctx, countByPaymentModeSQL)
	if err != nil {
		return nil, fmt.Errorf("count by payment mode: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.PaymentPattern, error) {
		var pp analytics.PaymentPattern
		err := row.Scan(&pp.Mode, &pp.Orders, &pp.Volume)
		return pp, err
	})
}

// CountByHour groups order count by hour of day.
func (r *AnalyticsRepository) CountByHour(ctx context.Context) ([]analytics.HourCount, error) {
	rows, err := r.pool.Query(ctx, countByHourSQL)
	if err != nil {
		return nil, fmt.Errorf("count by hour: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.HourCount, error) {
		var hc analytics.HourCount
		err := row.Scan(&hc.Hour, &hc.Orders)
		return hc, err
	})
}

// weekdayNames maps PostgreSQL's EXTRACT(DOW) ordering, Sunday first.
var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// CountByWeekday groups order count by day of week.
func (r *AnalyticsRepository) CountByWeekday(ctx context.Context) ([]analytics.WeekdayCount, error) {
	rows, err := r.pool.Query(ctx, countByWeekdaySQL)
	if err != nil {
		return nil, fmt.Errorf("count by weekday: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.WeekdayCount, error) {
		var (
			wc  analytics.WeekdayCount
			dow int
		)
		if err := row.Scan(&dow, &wc.Orders); err != nil {
			return wc, err
		}
		if dow < 0 || dow > 6 {
			return wc, fmt.Errorf("day of week out of range: %d", dow)
		}
		wc.Weekday = weekdayNames[dow]
		return wc, nil
	})
}

// TopProducts returns the best sellers by lifetime units sold.
func (r *AnalyticsRepository) TopProducts(ctx context.Context, limit int) ([]analytics.TopProduct, error) {
	rows, err := r.pool.Query(ctx, topProductsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.TopProduct, error) {
		var tp analytics.TopProduct
		err := row.Scan(&tp.ProductID, &tp.Name, &tp.UnitsSold)
		return tp, err
	})
}

// DailySeries returns per-day revenue and order counts for [from, to).
func (r *AnalyticsRepository) DailySeries(ctx context.Context, from, to time.Time) ([]analytics.DailyPoint, error) {
	rows, err := r.pool.Query(ctx, dailySeriesSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.DailyPoint, error) {
		var dp analytics.DailyPoint
		err := row.Scan(&dp.Date, &dp.Revenue, &dp.Orders)
		return dp, err
	})
}
