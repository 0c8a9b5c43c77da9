package reconcile

import (
	"strings"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// NormalizeLedger turns ledger transactions into reconciliation entries.
// Undated and zero-amount rows are dropped. A non-empty accountFilter keeps
// only rows whose account contains it, case-insensitively.
func NormalizeLedger(txns []model.Transaction, accountFilter string) []model.Entry {
	filter := strings.ToLower(strings.TrimSpace(accountFilter))
	var out []model.Entry
	for _, t := range txns {
		if !t.HasDate() || t.Amount.IsZero() {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(t.Account), filter) {
			continue
		}
		out = append(out, model.Entry{
			ID:          t.ID,
			Date:        model.Day(t.Date),
			Amount:      t.Amount,
			Description: describe(t.Name, t.Memo),
			Account:     t.Account,
		})
	}
	return out
}

// describe joins the non-blank parts with " | ".
func describe(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}

// NormalizeBank drops undated and zero-amount bank lines and truncates
// dates to whole days.
func NormalizeBank(entries []model.Entry) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if e.Date.IsZero() || e.Amount.IsZero() {
			continue
		}
		e.Date = model.Day(e.Date)
		e.Description = strings.TrimSpace(e.Description)
		out = append(out, e)
	}
	return out
}

// Negate returns entries with every amount sign-flipped, for ledgers whose
// cash account is recorded opposite to the bank's convention.
func Negate(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		e.Amount = e.Amount.Neg()
		out[i] = e
	}
	return out
}
