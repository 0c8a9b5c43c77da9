package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/accounts"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// OwnerParams bounds the owner period. The legacy window is
// [PeriodStart, RevenueStart) and the steady window is
// [RevenueStart, CurrentDate].
type OwnerParams struct {
	PeriodStart  time.Time
	RevenueStart time.Time
	CurrentDate  time.Time
	// JobCostPrefixes marks legacy overhead rows that are really job costs.
	// Empty uses accounts.DefaultJobCostPrefixes.
	JobCostPrefixes accounts.PrefixSet
}

// Validate checks that the three dates are set and ordered.
func (p OwnerParams) Validate() error {
	if p.PeriodStart.IsZero() || p.RevenueStart.IsZero() || p.CurrentDate.IsZero() {
		return model.NewConfigError("periods", "period_start, revenue_start and current date are required")
	}
	if model.Day(p.RevenueStart).Before(model.Day(p.PeriodStart)) {
		return model.NewConfigError("periods.revenue_start", "%s is before period_start %s",
			p.RevenueStart.Format(model.DateFormat), p.PeriodStart.Format(model.DateFormat))
	}
	if model.Day(p.CurrentDate).Before(model.Day(p.RevenueStart)) {
		return model.NewConfigError("periods.current_date", "%s is before revenue_start %s",
			p.CurrentDate.Format(model.DateFormat), p.RevenueStart.Format(model.DateFormat))
	}
	return nil
}

// Period is the whole owner window, PeriodStart through CurrentDate.
func (p OwnerParams) Period() model.Window {
	return model.Window{Start: model.Day(p.PeriodStart), End: model.Day(p.CurrentDate)}
}

// Steady is the window from RevenueStart through CurrentDate.
func (p OwnerParams) Steady() model.Window {
	return model.Window{Start: model.Day(p.RevenueStart), End: model.Day(p.CurrentDate)}
}

// InLegacy reports whether d falls in [PeriodStart, RevenueStart).
func (p OwnerParams) InLegacy(d time.Time) bool {
	if d.IsZero() {
		return false
	}
	d = model.Day(d)
	return !d.Before(model.Day(p.PeriodStart)) && d.Before(model.Day(p.RevenueStart))
}

// OwnerSnapshot is the owner-period snapshot plus the legacy sub-totals
// that explain what the transition window contributed.
type OwnerSnapshot struct {
	Snapshot
	LegacyCOGS                 decimal.Decimal `json:"legacy_cogs"`
	LegacyJulyTotalExpense     decimal.Decimal `json:"legacy_july_total_expense"`
	LegacyJulyExcludedJobCost  decimal.Decimal `json:"legacy_july_excluded_job_cost"`
	LegacyJulyIncludedOverhead decimal.Decimal `json:"legacy_july_included_overhead"`
}

// Owner computes owner-period metrics from classified, flagged rows.
//
// Revenue, COGS and other expense come from the steady window only. Legacy
// overhead counts toward the headline unless its account prefix is a job
// cost. Addbacks span the whole period.
func Owner(txns []model.Transaction, p OwnerParams) (OwnerSnapshot, error) {
	if err := p.Validate(); err != nil {
		return OwnerSnapshot{}, err
	}
	jobCost := p.JobCostPrefixes
	if len(jobCost) == 0 {
		jobCost = accounts.DefaultJobCostPrefixes()
	}
	steady := p.Steady()

	var (
		revenue, cogs, other         decimal.Decimal
		steadyOverhead               decimal.Decimal
		legacyCOGS, legacyOther      decimal.Decimal
		legacyJobCost, legacyIncOver decimal.Decimal
		period                       []model.Transaction
	)
	for _, t := range txns {
		switch {
		case steady.Contains(t.Date):
			switch {
			case t.IsRevenue:
				revenue = revenue.Add(t.Amount)
			case t.IsCOGS:
				cogs = cogs.Add(t.Amount)
			case t.IsOverhead:
				steadyOverhead = steadyOverhead.Add(t.Amount)
			case t.IsOtherExpense:
				other = other.Add(t.Amount)
			}
		case p.InLegacy(t.Date):
			switch {
			case t.IsCOGS:
				legacyCOGS = legacyCOGS.Add(t.Amount)
			case t.IsOverhead && isJobCost(t, jobCost):
				legacyJobCost = legacyJobCost.Add(t.Amount)
			case t.IsOverhead:
				legacyIncOver = legacyIncOver.Add(t.Amount)
			case t.IsOtherExpense:
				legacyOther = legacyOther.Add(t.Amount)
			}
		default:
			continue
		}
		period = append(period, t)
	}

	out := OwnerSnapshot{
		Snapshot: NewSnapshot(
			abs(revenue),
			abs(cogs),
			abs(steadyOverhead.Add(legacyIncOver)),
			abs(other),
			Addbacks(period),
		),
		LegacyCOGS:                 abs(legacyCOGS),
		LegacyJulyTotalExpense:     abs(legacyCOGS.Add(legacyJobCost).Add(legacyIncOver).Add(legacyOther)),
		LegacyJulyExcludedJobCost:  abs(legacyJobCost),
		LegacyJulyIncludedOverhead: abs(legacyIncOver),
	}
	return out, nil
}

func isJobCost(t model.Transaction, jobCost accounts.PrefixSet) bool {
	if t.AccountPrefix != "" {
		return jobCost.Contains(t.AccountPrefix)
	}
	return jobCost.MatchesAccount(t.Account)
}

// LegacyOverheadAddIn returns the overhead magnitude of rows in w whose
// account is one of the selected accounts.
func LegacyOverheadAddIn(txns []model.Transaction, w model.Window, selected []string) decimal.Decimal {
	if len(selected) == 0 {
		return decimal.Zero
	}
	chosen := make(map[string]bool, len(selected))
	for _, a := range selected {
		chosen[a] = true
	}
	return abs(sumWhere(txns, func(t model.Transaction) bool {
		return t.IsOverhead && chosen[t.Account] && w.Contains(t.Date)
	}))
}

// ApplyLegacyOverheadAddIn adds amount to overhead and carries it through
// net profit and SDE. A zero amount returns s unchanged.
func ApplyLegacyOverheadAddIn(s Snapshot, amount decimal.Decimal) Snapshot {
	if amount.IsZero() {
		return s
	}
	s.Overhead = s.Overhead.Add(amount)
	s.NetProfit = s.NetProfit.Sub(amount)
	s.SDE = s.SDE.Sub(amount)
	return s
}
