package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// AccountRow is one (account, account type) line of the per-account summary.
type AccountRow struct {
	Account        string               `json:"account"`
	AccountType    string               `json:"account_type"`
	Prefix         string               `json:"account_prefix,omitempty"`
	Classification model.Classification `json:"classification"`
	Amount         decimal.Decimal      `json:"amount"` // signed sum, source convention
	Count          int                  `json:"count"`
	IsAddback      bool                 `json:"is_addback"`
}

// Summary provides in-memory lookup over per-account totals.
type Summary struct {
	rows      []AccountRow
	byAccount map[string]int
}

// NewSummary groups classified transactions within w by account and account
// type, in first-seen order. Accounts listed in addbackAccounts are marked.
func NewSummary(txns []model.Transaction, w model.Window, addbackAccounts []string) *Summary {
	flagged := make(map[string]bool, len(addbackAccounts))
	for _, a := range addbackAccounts {
		flagged[a] = true
	}

	type key struct{ account, accountType string }
	index := make(map[key]int)
	var rows []AccountRow
	for _, t := range txns {
		if !w.Contains(t.Date) {
			continue
		}
		k := key{t.Account, t.AccountType}
		i, seen := index[k]
		if !seen {
			i = len(rows)
			index[k] = i
			rows = append(rows, AccountRow{
				Account:        t.Account,
				AccountType:    t.AccountType,
				Prefix:         t.AccountPrefix,
				Classification: t.Classification,
				IsAddback:      flagged[t.Account],
			})
		}
		rows[i].Amount = rows[i].Amount.Add(t.Amount)
		rows[i].Count++
	}

	byAccount := make(map[string]int, len(rows))
	for i, r := range rows {
		if _, ok := byAccount[r.Account]; !ok {
			byAccount[r.Account] = i
		}
	}
	return &Summary{rows: rows, byAccount: byAccount}
}

// All returns all summary rows.
func (s *Summary) All() []AccountRow {
	return s.rows
}

// Get returns the first summary row for an account name.
func (s *Summary) Get(account string) (AccountRow, bool) {
	i, ok := s.byAccount[account]
	if !ok {
		return AccountRow{}, false
	}
	return s.rows[i], true
}

// ByClassification returns all rows of the given classification.
func (s *Summary) ByClassification(c model.Classification) []AccountRow {
	var result []AccountRow
	for _, r := range s.rows {
		if r.Classification == c {
			result = append(result, r)
		}
	}
	return result
}

// Total returns the signed sum across all rows.
func (s *Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.rows {
		total = total.Add(r.Amount)
	}
	return total
}
