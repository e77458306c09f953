// Package analytics computes dashboard aggregates over the invoice history
// and a linear trend projection of daily revenue.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the headline figures for a date range. AvgOrderValue is
// defined as zero when there are no orders.
type Summary struct {
	Revenue           decimal.Decimal
	Orders            int64
	AvgOrderValue     decimal.Decimal
	TotalCost         decimal.Decimal
	GrossProfit       decimal.Decimal
	GrossMarginPct    decimal.Decimal
	InventoryTurnover int64
	RetentionRatePct  decimal.Decimal
}

// CategoryRevenue is revenue and units sold grouped by product category.
type CategoryRevenue struct {
	Category  string
	Revenue   decimal.Decimal
	UnitsSold int64
}

// PaymentPattern is order count and volume grouped by payment mode.
type PaymentPattern struct {
	Mode   string
	Orders int64
	Volume decimal.Decimal
}

// HourCount is order count grouped by hour of day (0-23).
type HourCount struct {
	Hour   int
	Orders int64
}

// WeekdayCount is order count grouped by day of week.
type WeekdayCount struct {
	Weekday string
	Orders  int64
}

// TopProduct is a best-seller row ordered by units sold.
type TopProduct struct {
	ProductID int64
	Name      string
	UnitsSold int64
}

// DailyPoint is one day of the revenue series used for trend projection.
type DailyPoint struct {
	Date    time.Time
	Revenue decimal.Decimal
	Orders  int64
}

// Repository defines the aggregate queries over persisted invoices.
type Repository interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
	RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error)
	CountByPaymentMode(ctx context.Context) ([]PaymentPattern, error)
	CountByHour(ctx context.Context) ([]HourCount, error)
	CountByWeekday(ctx context.Context) ([]WeekdayCount, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	DailySeries(ctx context.Context, from, to time.Time) ([]DailyPoint, error)
}
