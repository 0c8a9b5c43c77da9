// Package ledger reads and writes the classified transaction table and
// checks it for data-quality problems.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Header is the CSV header of a classified ledger export.
const Header = "id,date,account,account_type,name,memo,amount,account_prefix,classification,is_revenue,is_cogs,is_overhead,is_other_expense,addback_flag,addback_reason"

const (
	numFields        = 15
	colID            = 0
	colDate          = 1
	colAccount       = 2
	colAccountType   = 3
	colName          = 4
	colMemo          = 5
	colAmount        = 6
	colPrefix        = 7
	colClass         = 8
	colIsRevenue     = 9
	colIsCOGS        = 10
	colIsOverhead    = 11
	colIsOtherExp    = 12
	colAddbackFlag   = 13
	colAddbackReason = 14
)

// reasonSep joins reason-trail entries in a single cell.
const reasonSep = ", "

// ReadTransactions reads a classified ledger CSV written by WriteTransactions.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes txns with a header row.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID
	if t.HasDate() {
		row[colDate] = t.Date.Format(model.DateFormat)
	}
	row[colAccount] = t.Account
	row[colAccountType] = t.AccountType
	row[colName] = t.Name
	row[colMemo] = t.Memo
	row[colAmount] = t.Amount.StringFixed(2)
	row[colPrefix] = t.AccountPrefix
	row[colClass] = string(t.Classification)
	row[colIsRevenue] = strconv.FormatBool(t.IsRevenue)
	row[colIsCOGS] = strconv.FormatBool(t.IsCOGS)
	row[colIsOverhead] = strconv.FormatBool(t.IsOverhead)
	row[colIsOtherExp] = strconv.FormatBool(t.IsOtherExpense)
	row[colAddbackFlag] = strconv.FormatBool(t.AddbackFlag)
	row[colAddbackReason] = strings.Join(t.AddbackReasons, reasonSep)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var date time.Time
	if record[colDate] != "" {
		d, err := time.Parse(model.DateFormat, record[colDate])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
		date = d
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	flags := make([]bool, 0, 5)
	for _, col := range []int{colIsRevenue, colIsCOGS, colIsOverhead, colIsOtherExp, colAddbackFlag} {
		b, err := parseBool(record[col])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing column %d: %w", col, err)
		}
		flags = append(flags, b)
	}

	var reasons []string
	if record[colAddbackReason] != "" {
		reasons = strings.Split(record[colAddbackReason], reasonSep)
	}

	return model.Transaction{
		ID:             record[colID],
		Date:           date,
		Account:        record[colAccount],
		AccountType:    record[colAccountType],
		Name:           record[colName],
		Memo:           record[colMemo],
		Amount:         amount,
		AccountPrefix:  record[colPrefix],
		Classification: model.Classification(record[colClass]),
		IsRevenue:      flags[0],
		IsCOGS:         flags[1],
		IsOverhead:     flags[2],
		IsOtherExpense: flags[3],
		AddbackFlag:    flags[4],
		AddbackReasons: reasons,
	}, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
