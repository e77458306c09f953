package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/smartinventory/pos/internal/domain/analytics"
)

const (
	defaultTopProducts  = 5
	maxTopProducts      = 100
	defaultForecastDays = 7
	maxForecastDays     = 365
	// forecastWindow is how much history feeds the trend fit.
	forecastWindow = 30 * 24 * time.Hour
)

// parseRange reads optional from/to query parameters (YYYY-MM-DD). The
// default range is the last 30 days up to now.
func parseRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	from := now.Add(-forecastWindow)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, badRequestf("invalid from date")
		}
		from = v
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, badRequestf("invalid to date")
		}
		// Inclusive end date.
		to = v.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func (h *Handler) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r, time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.analytics.Summary(r.Context(), from, to)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("revenue", func(e *jx.Encoder) { e.Float64(s.Revenue.InexactFloat64()) })
			e.Field("orders", func(e *jx.Encoder) { e.Int64(s.Orders) })
			e.Field("avg_order_value", func(e *jx.Encoder) { e.Float64(s.AvgOrderValue.InexactFloat64()) })
			e.Field("total_cost", func(e *jx.Encoder) { e.Float64(s.TotalCost.InexactFloat64()) })
			e.Field("gross_profit", func(e *jx.Encoder) { e.Float64(s.GrossProfit.InexactFloat64()) })
			e.Field("gross_margin_pct", func(e *jx.Encoder) { e.Float64(s.GrossMarginPct.InexactFloat64()) })
			e.Field("inventory_turnover", func(e *jx.Encoder) { e.Int64(s.InventoryTurnover) })
			e.Field("retention_rate_pct", func(e *jx.Encoder) { e.Float64(s.RetentionRatePct.InexactFloat64()) })
		})
	})
}

func (h *Handler) analyticsCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.analytics.RevenueByCategory(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, cr := range rows {
				e.Obj(func(e *jx.Encoder) {
					e.Field("category", func(e *jx.Encoder) { e.Str(cr.Category) })
					e.Field("revenue", func(e *jx.Encoder) { e.Float64(cr.Revenue.InexactFloat64()) })
					e.Field("units_sold", func(e *jx.Encoder) { e.Int64(cr.UnitsSold) })
				})
			}
		})
	})
}

func (h *Handler) analyticsPayments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.analytics.CountByPaymentMode(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, pp := range rows {
				e.Obj(func(e *jx.Encoder) {
					e.Field("mode", func(e *jx.Encoder) { e.Str(pp.Mode) })
					e.Field("orders", func(e *jx.Encoder) { e.Int64(pp.Orders) })
					e.Field("volume", func(e *jx.Encoder) { e.Float64(pp.Volume.InexactFloat64()) })
				})
			}
		})
	})
}

func (h *Handler) analyticsHours(w http.ResponseWriter, r *http.Request) {
	rows, err := h.analytics.CountByHour(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, hc := range rows {
				e.Obj(func(e *jx.Encoder) {
					e.Field("hour", func(e *jx.Encoder) { e.Int(hc.Hour) })
					e.Field("orders", func(e *jx.Encoder) { e.Int64(hc.Orders) })
				})
			}
		})
	})
}

func (h *Handler) analyticsWeekdays(w http.ResponseWriter, r *http.Request) {
	rows, err := h.analytics.CountByWeekday(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, wc := range rows {
				e.Obj(func(e *jx.Encoder) {
					e.Field("weekday", func(e *jx.Encoder) { e.Str(wc.Weekday) })
					e.Field("orders", func(e *jx.Encoder) { e.Int64(wc.Orders) })
				})
			}
		})
	})
}

func (h *Handler) analyticsTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopProducts
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxTopProducts {
			respondError(w, r, badRequestf("invalid limit"))
			return
		}
		limit = v
	}

	rows, err := h.analytics.TopProducts(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, tp := range rows {
				e.Obj(func(e *jx.Encoder) {
					e.Field("product_id", func(e *jx.Encoder) { e.Int64(tp.ProductID) })
					e.Field("name", func(e *jx.Encoder) { e.Str(tp.Name) })
					e.Field("units_sold", func(e *jx.Encoder) { e.Int64(tp.UnitsSold) })
				})
			}
		})
	})
}

func (h *Handler) analyticsForecast(w http.ResponseWriter, r *http.Request) {
	days := defaultForecastDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxForecastDays {
			respondError(w, r, badRequestf("invalid days"))
			return
		}
		days = v
	}

	now := time.Now()
	series, err := h.analytics.DailySeries(r.Context(), now.Add(-forecastWindow), now)
	if err != nil {
		respondError(w, r, err)
		return
	}

	points, err := analytics.Forecast(series, days)
	if err != nil {
		if errors.Is(err, analytics.ErrNotEnoughData) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range points {
				e.Obj(func(e *jx.Encoder) {
					e.Field("day", func(e *jx.Encoder) { e.Int(p.DayIndex) })
					e.Field("revenue", func(e *jx.Encoder) { e.Float64(p.Revenue) })
				})
			}
		})
	})
}
