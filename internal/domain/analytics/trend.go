package analytics

import (
	"github.com/go-faster/errors"
	"github.com/montanaflynn/stats"
)

// ErrNotEnoughData is returned when fewer than two data points are available
// for a trend fit.
var ErrNotEnoughData = errors.New("not enough data points for trend")

// ForecastPoint is one projected future day. Revenue is the fitted value of
// the regression line, not a prediction with error bounds: the projection is
// a display heuristic only.
type ForecastPoint struct {
	DayIndex int
	Revenue  float64
}

// Forecast fits a first-degree polynomial to (day-index, revenue) pairs by
// least squares and extrapolates the next days points. Day indices start at
// zero in series order.
func Forecast(series []DailyPoint, days int) ([]ForecastPoint, error) {
	if len(series) < 2 {
		return nil, ErrNotEnoughData
	}
	if days <= 0 {
		return nil, nil
	}

	coords := make(stats.Series, len(series))
	for i, p := range series {
		coords[i] = stats.Coordinate{X: float64(i), Y: p.Revenue.InexactFloat64()}
	}

	fitted, err := stats.LinearRegression(coords)
	if err != nil {
		return nil, errors.Wrap(err, "linear regression")
	}

	// Recover slope and intercept from the fitted line's endpoints; the
	// regression output is exact on the OLS line so any two points do.
	first, last := fitted[0], fitted[len(fitted)-1]
	slope := (last.Y - first.Y) / (last.X - first.X)
	intercept := first.Y - slope*first.X

	out := make([]ForecastPoint, days)
	for i := range days {
		x := float64(len(series) + i)
		out[i] = ForecastPoint{
			DayIndex: len(series) + i,
			Revenue:  intercept + slope*x,
		}
	}
	return out, nil
}
