package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification is the mutually exclusive P&L bucket of a ledger row.
type Classification string

const (
	ClassUnclassified Classification = "Unclassified"
	ClassRevenue      Classification = "Revenue"
	ClassCOGS         Classification = "COGS"
	ClassOverhead     Classification = "Overhead"
	ClassOtherExpense Classification = "OtherExpense"
)

// Transaction is one row of the normalized general-ledger export.
type Transaction struct {
	ID          string
	Date        time.Time // zero if the source date was unparseable
	Account     string
	AccountType string
	Name        string
	Memo        string
	Amount      decimal.Decimal // sign convention depends on the source ledger

	// Derived by the pipeline.
	AccountPrefix  string // "" when the account has no numeric prefix
	Classification Classification
	IsRevenue      bool
	IsCOGS         bool
	IsOverhead     bool
	IsOtherExpense bool
	AddbackFlag    bool
	AddbackReasons []string // rule/token names in match order
}

// HasDate reports whether the row carries a usable calendar date.
func (t Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// IsCost reports whether the row is classified as COGS, Overhead or OtherExpense.
func (t Transaction) IsCost() bool {
	return t.IsCOGS || t.IsOverhead || t.IsOtherExpense
}

// Day truncates a time to its UTC calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clone returns a copy of txns whose reason slices are not shared with the input.
func Clone(txns []Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	copy(out, txns)
	for i := range out {
		if out[i].AddbackReasons != nil {
			out[i].AddbackReasons = append([]string(nil), out[i].AddbackReasons...)
		}
	}
	return out
}
