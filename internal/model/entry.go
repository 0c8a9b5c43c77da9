package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one dated amount on either side of a bank reconciliation: a
// ledger line or a bank register line.
type Entry struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Account     string          `json:"account,omitempty"` // ledger side only
}
