// Package forecast converts period snapshots to monthly run-rates and
// projects fiscal-year totals from them.
package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/metrics"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// DaysPerMonth is the average month length, 365.25 / 12.
var DaysPerMonth = decimal.RequireFromString("30.4375")

// RunRate converts a snapshot covering days days into per-month rates.
// Every figure is scaled the same way, derived ones included.
func RunRate(s metrics.Snapshot, days int) (metrics.Snapshot, error) {
	if days <= 0 {
		return metrics.Snapshot{}, model.NewConfigError("run_rate.days", "day count must be positive, got %d", days)
	}
	n := decimal.NewFromInt(int64(days))
	return s.Map(func(v decimal.Decimal) decimal.Decimal {
		return v.Div(n).Mul(DaysPerMonth)
	}), nil
}

// Forecast adds daysRemaining days of the monthly rates to the year-to-date
// actuals. A negative day count is treated as zero. Gross profit is
// recomputed from the projected revenue and COGS.
func Forecast(ytd, monthly metrics.Snapshot, daysRemaining int) metrics.Snapshot {
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	rem := decimal.NewFromInt(int64(daysRemaining))
	projected := monthly.Map(func(v decimal.Decimal) decimal.Decimal {
		return v.Div(DaysPerMonth).Mul(rem)
	})

	out := ytd.Add(projected)
	out.GrossProfit = out.Revenue.Sub(out.COGS)
	return out
}

// DaysRemaining returns the whole days from asOf to fiscalYearEnd, never
// less than zero.
func DaysRemaining(asOf, fiscalYearEnd time.Time) int {
	days := model.DaysBetween(asOf, fiscalYearEnd)
	if days < 0 {
		return 0
	}
	return days
}

// MonthsRemaining expresses a day count in average months, floored at zero.
func MonthsRemaining(daysRemaining int) decimal.Decimal {
	if daysRemaining <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(daysRemaining)).Div(DaysPerMonth)
}
