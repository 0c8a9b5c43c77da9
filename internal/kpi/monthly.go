// Package kpi rolls classified transactions up into calendar months with
// margin ratios and month-over-month changes.
package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/metrics"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Month is one calendar month of the rollup. Ratios are decimals (0.25 is
// 25%) and are null when the denominator is zero.
type Month struct {
	Month string `json:"month"` // YYYY-MM
	Label string `json:"label"` // "Aug 2025"
	metrics.Snapshot

	GrossMarginPct decimal.NullDecimal `json:"gross_margin_pct"`
	NetMarginPct   decimal.NullDecimal `json:"net_margin_pct"`
	SDEMarginPct   decimal.NullDecimal `json:"sde_margin_pct"`
	OverheadPct    decimal.NullDecimal `json:"overhead_pct"`
	COGSPct        decimal.NullDecimal `json:"cogs_pct"`

	RevenueMoMDelta   decimal.NullDecimal `json:"revenue_mom_delta"`
	RevenueMoMPct     decimal.NullDecimal `json:"revenue_mom_pct"`
	NetProfitMoMDelta decimal.NullDecimal `json:"net_profit_mom_delta"`
	NetProfitMoMPct   decimal.NullDecimal `json:"net_profit_mom_pct"`
	SDEMoMDelta       decimal.NullDecimal `json:"sde_mom_delta"`
	SDEMoMPct         decimal.NullDecimal `json:"sde_mom_pct"`
}

// Monthly groups dated rows by calendar month, oldest first. Revenue rows
// dated before revenueStart contribute nothing; a zero revenueStart keeps
// all revenue. Undated rows are skipped.
func Monthly(txns []model.Transaction, revenueStart time.Time) []Month {
	groups := make(map[string][]model.Transaction)
	for _, t := range txns {
		if !t.HasDate() {
			continue
		}
		if t.IsRevenue && !revenueStart.IsZero() && model.Day(t.Date).Before(model.Day(revenueStart)) {
			t.Amount = decimal.Zero
		}
		key := t.Date.Format("2006-01")
		groups[key] = append(groups[key], t)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Month, 0, len(keys))
	for i, k := range keys {
		rows := groups[k]
		m := Month{
			Month:    k,
			Label:    rows[0].Date.Format("Jan 2006"),
			Snapshot: metrics.Aggregate(rows),
		}
		m.GrossMarginPct = Ratio(m.GrossProfit, m.Revenue)
		m.NetMarginPct = Ratio(m.NetProfit, m.Revenue)
		m.SDEMarginPct = Ratio(m.SDE, m.Revenue)
		m.OverheadPct = Ratio(m.Overhead, m.Revenue)
		m.COGSPct = Ratio(m.COGS, m.Revenue)

		if i > 0 {
			prev := out[i-1]
			m.RevenueMoMDelta, m.RevenueMoMPct = change(prev.Revenue, m.Revenue)
			m.NetProfitMoMDelta, m.NetProfitMoMPct = change(prev.NetProfit, m.NetProfit)
			m.SDEMoMDelta, m.SDEMoMPct = change(prev.SDE, m.SDE)
		}
		out = append(out, m)
	}
	return out
}

// Ratio returns num/den, or an invalid NullDecimal when den is zero.
func Ratio(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Div(den))
}

func change(prev, cur decimal.Decimal) (delta, pct decimal.NullDecimal) {
	diff := cur.Sub(prev)
	return decimal.NewNullDecimal(diff), Ratio(diff, prev)
}
