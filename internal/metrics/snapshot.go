// Package metrics aggregates classified ledger rows into period snapshots and
// applies the owner-period legacy window policy.
package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Snapshot holds the headline figures for one window. The five source
// figures are non-negative magnitudes; the rest are derived from them.
type Snapshot struct {
	Revenue      decimal.Decimal `json:"revenue"`
	COGS         decimal.Decimal `json:"cogs"`
	Overhead     decimal.Decimal `json:"overhead"`
	OtherExpense decimal.Decimal `json:"other_expense"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	Addbacks     decimal.Decimal `json:"addbacks"`
	SDE          decimal.Decimal `json:"sde"`
}

// NewSnapshot builds a snapshot from the five magnitudes and derives
// gross profit, net profit and SDE.
func NewSnapshot(revenue, cogs, overhead, otherExpense, addbacks decimal.Decimal) Snapshot {
	s := Snapshot{
		Revenue:      revenue,
		COGS:         cogs,
		Overhead:     overhead,
		OtherExpense: otherExpense,
		Addbacks:     addbacks,
	}
	return s.derive()
}

func (s Snapshot) derive() Snapshot {
	s.GrossProfit = s.Revenue.Sub(s.COGS)
	s.NetProfit = s.Revenue.Sub(s.COGS.Add(s.Overhead).Add(s.OtherExpense))
	s.SDE = s.NetProfit.Add(s.Addbacks)
	return s
}

// Map applies f to every figure, derived ones included.
func (s Snapshot) Map(f func(decimal.Decimal) decimal.Decimal) Snapshot {
	return Snapshot{
		Revenue:      f(s.Revenue),
		COGS:         f(s.COGS),
		Overhead:     f(s.Overhead),
		OtherExpense: f(s.OtherExpense),
		GrossProfit:  f(s.GrossProfit),
		NetProfit:    f(s.NetProfit),
		Addbacks:     f(s.Addbacks),
		SDE:          f(s.SDE),
	}
}

// Add returns the field-wise sum of s and o. Derived figures are summed
// too, not recomputed.
func (s Snapshot) Add(o Snapshot) Snapshot {
	return Snapshot{
		Revenue:      s.Revenue.Add(o.Revenue),
		COGS:         s.COGS.Add(o.COGS),
		Overhead:     s.Overhead.Add(o.Overhead),
		OtherExpense: s.OtherExpense.Add(o.OtherExpense),
		GrossProfit:  s.GrossProfit.Add(o.GrossProfit),
		NetProfit:    s.NetProfit.Add(o.NetProfit),
		Addbacks:     s.Addbacks.Add(o.Addbacks),
		SDE:          s.SDE.Add(o.SDE),
	}
}

// Magnitude sums the raw signed amounts and flips the total if it is
// negative. The flip applies to the group total, never per row.
func Magnitude(amounts ...decimal.Decimal) decimal.Decimal {
	return abs(decimal.Sum(decimal.Zero, amounts...))
}

func abs(sum decimal.Decimal) decimal.Decimal {
	if sum.IsNegative() {
		return sum.Neg()
	}
	return sum
}

func sumWhere(txns []model.Transaction, keep func(model.Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if keep(t) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Addbacks sums flagged rows. When any flagged row is positive only the
// positive rows count; otherwise the negative rows are summed and negated.
// This keeps a debit and its matching credit from cancelling or doubling.
func Addbacks(txns []model.Transaction) decimal.Decimal {
	positive, negative := decimal.Zero, decimal.Zero
	anyPositive := false
	for _, t := range txns {
		if !t.AddbackFlag {
			continue
		}
		switch {
		case t.Amount.IsPositive():
			anyPositive = true
			positive = positive.Add(t.Amount)
		case t.Amount.IsNegative():
			negative = negative.Add(t.Amount)
		}
	}
	if anyPositive {
		return positive
	}
	return negative.Neg()
}

// Aggregate computes a snapshot over txns. Rows are not filtered by date;
// callers pass the rows of the window they want, see InWindow.
func Aggregate(txns []model.Transaction) Snapshot {
	return NewSnapshot(
		abs(sumWhere(txns, func(t model.Transaction) bool { return t.IsRevenue })),
		abs(sumWhere(txns, func(t model.Transaction) bool { return t.IsCOGS })),
		abs(sumWhere(txns, func(t model.Transaction) bool { return t.IsOverhead })),
		abs(sumWhere(txns, func(t model.Transaction) bool { return t.IsOtherExpense })),
		Addbacks(txns),
	)
}

// InWindow returns the rows of txns dated within w, in input order.
func InWindow(txns []model.Transaction, w model.Window) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
