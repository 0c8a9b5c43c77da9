// Package reconcile pairs ledger lines with bank register lines and
// compares cash and accrual views of the same window.
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// DefaultDateTolerance is the default matching window in days either side.
const DefaultDateTolerance = 14

// Pair is one ledger line matched to one bank line.
type Pair struct {
	LedgerID          string          `json:"ledger_id"`
	BankID            string          `json:"bank_id"`
	LedgerDate        time.Time       `json:"ledger_date"`
	LedgerAmount      decimal.Decimal `json:"ledger_amount"`
	LedgerDescription string          `json:"ledger_description"`
	LedgerAccount     string          `json:"ledger_account,omitempty"`
	BankDate          time.Time       `json:"bank_date"`
	BankAmount        decimal.Decimal `json:"bank_amount"`
	BankDescription   string          `json:"bank_description"`
	DaysApart         int             `json:"days_apart"`
}

// Result holds the outcome of Match. Every input row appears exactly once,
// either in a pair or in its side's unmatched list.
type Result struct {
	Matched         []Pair        `json:"matched"`
	UnmatchedLedger []model.Entry `json:"unmatched_ledger"`
	UnmatchedBank   []model.Entry `json:"unmatched_bank"`
}

// Match greedily pairs ledger lines with bank lines of the same amount
// (rounded to cents) dated within tolDays of each other. Ledger lines are
// visited in input order; each takes the closest unused bank line, the
// earliest input row winning ties. Signs are compared as given.
func Match(ledger, bank []model.Entry, tolDays int) (Result, error) {
	if tolDays < 0 {
		return Result{}, model.NewConfigError("reconciliation.date_tolerance_days", "must be >= 0, got %d", tolDays)
	}

	groups := make(map[string][]int)
	for i, b := range bank {
		k := amountKey(b.Amount)
		groups[k] = append(groups[k], i)
	}

	used := make([]bool, len(bank))
	res := Result{
		Matched:         []Pair{},
		UnmatchedLedger: []model.Entry{},
		UnmatchedBank:   []model.Entry{},
	}
	for _, l := range ledger {
		best, bestDiff := -1, 0
		if !l.Date.IsZero() {
			for _, i := range groups[amountKey(l.Amount)] {
				if used[i] || bank[i].Date.IsZero() {
					continue
				}
				diff := absInt(model.DaysBetween(l.Date, bank[i].Date))
				if diff > tolDays {
					continue
				}
				if best < 0 || diff < bestDiff {
					best, bestDiff = i, diff
				}
			}
		}
		if best < 0 {
			res.UnmatchedLedger = append(res.UnmatchedLedger, l)
			continue
		}
		used[best] = true
		b := bank[best]
		res.Matched = append(res.Matched, Pair{
			LedgerID:          l.ID,
			BankID:            b.ID,
			LedgerDate:        l.Date,
			LedgerAmount:      l.Amount,
			LedgerDescription: l.Description,
			LedgerAccount:     l.Account,
			BankDate:          b.Date,
			BankAmount:        b.Amount,
			BankDescription:   b.Description,
			DaysApart:         bestDiff,
		})
	}
	for i, b := range bank {
		if !used[i] {
			res.UnmatchedBank = append(res.UnmatchedBank, b)
		}
	}
	return res, nil
}

func amountKey(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Summary counts the outcome of a match and totals the unmatched amounts.
type Summary struct {
	Matched               int             `json:"total_matched"`
	UnmatchedLedger       int             `json:"total_unmatched_ledger"`
	UnmatchedLedgerAmount decimal.Decimal `json:"unmatched_ledger_amount"`
	UnmatchedBank         int             `json:"total_unmatched_bank"`
	UnmatchedBankAmount   decimal.Decimal `json:"unmatched_bank_amount"`
}

// Summary reports counts and unmatched totals for r.
func (r Result) Summary() Summary {
	return Summary{
		Matched:               len(r.Matched),
		UnmatchedLedger:       len(r.UnmatchedLedger),
		UnmatchedLedgerAmount: total(r.UnmatchedLedger),
		UnmatchedBank:         len(r.UnmatchedBank),
		UnmatchedBankAmount:   total(r.UnmatchedBank),
	}
}

func total(entries []model.Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}
