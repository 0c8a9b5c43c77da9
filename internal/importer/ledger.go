package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/id"
	"github.com/cleared-dev/ownerkpi/internal/ledger"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// headerScanRows bounds the search for the real header row below any
// report title lines.
const headerScanRows = 30

// LedgerFile is a parsed general-ledger export.
type LedgerFile struct {
	Transactions []model.Transaction
	// HeaderRow is the 1-based row the header was found on.
	HeaderRow int
	Issues    []ledger.Issue
}

// ParseLedger turns raw rows into transactions. It never fails: rows
// without a usable date are dropped and reported, unparseable amounts
// become zero and are reported.
func ParseLedger(rows [][]string) *LedgerFile {
	out := &LedgerFile{}
	if len(rows) == 0 {
		out.Issues = append(out.Issues, ledger.Issue{Field: "file", Message: "no rows"})
		return out
	}

	hdr := findHeader(rows)
	out.HeaderRow = hdr + 1
	cols := newColumns(rows[hdr])

	dateCol, hasDate := cols.first("date", "txn_date", "transaction_date", "posting_date")
	if !hasDate {
		out.Issues = append(out.Issues, ledger.Issue{Row: out.HeaderRow, Field: "date", Message: "no date column"})
	}
	amountCol, hasAmount := cols.first("amount")
	debitCol, hasDebit := cols.first("debit")
	creditCol, hasCredit := cols.first("credit")
	if !hasAmount && !hasDebit && !hasCredit {
		out.Issues = append(out.Issues, ledger.Issue{Row: out.HeaderRow, Field: "amount", Message: "no amount or debit/credit columns"})
	}
	for _, name := range []string{"account", "account_type", "name", "memo"} {
		if _, ok := cols[name]; !ok {
			out.Issues = append(out.Issues, ledger.Issue{Row: out.HeaderRow, Field: name, Message: "missing column, treated as blank"})
		}
	}
	col := func(name string) int {
		if i, ok := cols[name]; ok {
			return i
		}
		return -1
	}

	for i := hdr + 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1
		if blankRow(row) {
			continue
		}

		date, ok := ParseDate(cell(row, dateCol))
		if !ok {
			out.Issues = append(out.Issues, ledger.Issue{Row: rowNum, Field: "date",
				Message: fmt.Sprintf("unparseable date %q, row dropped", cell(row, dateCol))})
			continue
		}

		var amount decimal.Decimal
		if hasAmount {
			amount = parseAmountCell(out, rowNum, "amount", cell(row, amountCol))
		} else {
			debit := parseAmountCell(out, rowNum, "debit", cell(row, debitCol))
			credit := parseAmountCell(out, rowNum, "credit", cell(row, creditCol))
			amount = debit.Sub(credit)
		}

		out.Transactions = append(out.Transactions, model.Transaction{
			ID:          id.FormatRowID(id.SourceLedger, len(out.Transactions)),
			Date:        date,
			Account:     textCell(row, col("account")),
			AccountType: textCell(row, col("account_type")),
			Name:        textCell(row, col("name")),
			Memo:        textCell(row, col("memo")),
			Amount:      amount,
		})
	}
	return out
}

// findHeader returns the index of the first row holding both a "date" and
// an "account" cell, or 0.
func findHeader(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		var date, account bool
		for _, c := range rows[i] {
			switch strings.ToLower(strings.TrimSpace(c)) {
			case "date":
				date = true
			case "account":
				account = true
			}
		}
		if date && account {
			return i
		}
	}
	return 0
}

func parseAmountCell(f *LedgerFile, row int, field, s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		f.Issues = append(f.Issues, ledger.Issue{Row: row, Field: field, Message: err.Error() + ", treated as zero"})
		return decimal.Zero
	}
	return d
}

// textCell treats the "nan" literal some exporters write as blank.
func textCell(row []string, i int) string {
	s := cell(row, i)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}
