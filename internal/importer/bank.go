package importer

import (
	"fmt"

	"github.com/cleared-dev/ownerkpi/internal/id"
	"github.com/cleared-dev/ownerkpi/internal/ledger"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// BankFile is a parsed bank register export.
type BankFile struct {
	Entries []model.Entry
	Issues  []ledger.Issue
}

// ParseBank reads a bank register whose first row is the header. Chase
// style exports ("Posting Date", "Description", "Amount") are accepted
// alongside plain "Date"/"Amount" registers. Missing date or amount
// columns are an error; bad cells degrade to issues.
func ParseBank(rows [][]string) (*BankFile, error) {
	if len(rows) == 0 {
		return &BankFile{}, nil
	}
	cols := newColumns(rows[0])

	dateCol, ok := cols.first("date", "transaction_date", "posting_date")
	if !ok {
		return nil, fmt.Errorf("bank register is missing a date column")
	}
	amountCol, ok := cols.first("amount")
	if !ok {
		return nil, fmt.Errorf("bank register is missing an amount column")
	}
	descCol, _ := cols.first("description", "transaction_description", "memo")

	out := &BankFile{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		date, ok := ParseDate(cell(row, dateCol))
		if !ok {
			out.Issues = append(out.Issues, ledger.Issue{Row: rowNum, Field: "date",
				Message: fmt.Sprintf("unparseable date %q, row dropped", cell(row, dateCol))})
			continue
		}
		amount, err := ParseAmount(cell(row, amountCol))
		if err != nil {
			out.Issues = append(out.Issues, ledger.Issue{Row: rowNum, Field: "amount", Message: err.Error() + ", row dropped"})
			continue
		}
		out.Entries = append(out.Entries, model.Entry{
			ID:          id.FormatRowID(id.SourceBank, len(out.Entries)),
			Date:        date,
			Amount:      amount,
			Description: cell(row, descCol),
		})
	}
	return out, nil
}
