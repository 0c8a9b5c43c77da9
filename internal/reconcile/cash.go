package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Basis is a three-line P&L.
type Basis struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// CashVsAccrual compares the bank's cash view with the ledger's accrual
// view of one window.
type CashVsAccrual struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Cash    Basis  `json:"cash"`
	Accrual Basis  `json:"accrual"`
	// Diff is accrual minus cash.
	Diff Basis `json:"diff"`
}

// CashBasis sums bank inflows and outflows dated within w.
func CashBasis(bank []model.Entry, w model.Window) Basis {
	in, out := decimal.Zero, decimal.Zero
	for _, e := range bank {
		if !w.Contains(e.Date) {
			continue
		}
		if e.Amount.IsPositive() {
			in = in.Add(e.Amount)
		} else {
			out = out.Sub(e.Amount)
		}
	}
	return Basis{Revenue: in, Expenses: out, Net: in.Sub(out)}
}

// AccrualBasis reads the ledger by account type: income rows flipped
// positive, cost of goods sold and expense rows as magnitudes.
func AccrualBasis(txns []model.Transaction, w model.Window) Basis {
	income, cogs, expense := decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range txns {
		if !w.Contains(t.Date) {
			continue
		}
		typ := strings.ToLower(t.AccountType)
		if strings.Contains(typ, "income") {
			income = income.Add(t.Amount)
		}
		if strings.Contains(typ, "cost of goods sold") {
			cogs = cogs.Add(t.Amount)
		}
		if strings.Contains(typ, "expense") && !strings.Contains(typ, "income") {
			expense = expense.Add(t.Amount)
		}
	}
	revenue := income.Neg()
	expenses := cogs.Abs().Add(expense.Abs())
	return Basis{Revenue: revenue, Expenses: expenses, Net: revenue.Sub(expenses)}
}

// CompareCashAccrual builds both views over w and their difference.
func CompareCashAccrual(txns []model.Transaction, bank []model.Entry, w model.Window) CashVsAccrual {
	cash := CashBasis(bank, w)
	accrual := AccrualBasis(txns, w)
	return CashVsAccrual{
		Start:   w.Start.Format(model.DateFormat),
		End:     w.End.Format(model.DateFormat),
		Cash:    cash,
		Accrual: accrual,
		Diff: Basis{
			Revenue:  accrual.Revenue.Sub(cash.Revenue),
			Expenses: accrual.Expenses.Sub(cash.Expenses),
			Net:      accrual.Net.Sub(cash.Net),
		},
	}
}
