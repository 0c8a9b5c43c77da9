package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/ownerkpi/internal/ledger"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

func readFixture(t *testing.T, name string) [][]string {
	t.Helper()
	rows, err := DefaultRegistry().ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return rows
}

func TestParseLedger_Fixture(t *testing.T) {
	f := ParseLedger(readFixture(t, "ledger.csv"))

	assert.Equal(t, 4, f.HeaderRow)
	require.Len(t, f.Transactions, 9)

	first := f.Transactions[0]
	assert.Equal(t, "gl-00001", first.ID)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "4000 Sales", first.Account)
	assert.Equal(t, "Income", first.AccountType)
	assert.Equal(t, "Cust A", first.Name)
	assert.Equal(t, "Inv 1", first.Memo)
	assert.Equal(t, "-1000.00", first.Amount.StringFixed(2), "debit minus credit")

	assert.Equal(t, "200.00", f.Transactions[1].Amount.StringFixed(2))
	assert.Equal(t, "gl-00009", f.Transactions[8].ID)

	require.Len(t, f.Issues, 1)
	assert.Equal(t, 14, f.Issues[0].Row)
	assert.Equal(t, "date", f.Issues[0].Field)
	assert.Contains(t, f.Issues[0].Message, "TOTAL")
}

func TestParseLedger_AmountColumn(t *testing.T) {
	rows := [][]string{
		{"Date", "Account", "Account Type", "Name", "Memo", "Amount", "Unnamed: 6", "Account"},
		{"2025-08-01T00:00:00", "Rent", "Expense", "nan", "", "$1,250.50", "junk", "ignored"},
		{"8/2/25", "Sales", "Income", "Cust", "x", "abc", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"2025/08/03 10:15", "Fees", "Expense", "Bank", "fee", "(3.00)", "", ""},
	}
	f := ParseLedger(rows)

	require.Len(t, f.Transactions, 3)
	assert.Equal(t, 1, f.HeaderRow)
	assert.Equal(t, "1250.50", f.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "Rent", f.Transactions[0].Account, "first duplicate column wins")
	assert.Equal(t, "", f.Transactions[0].Name)
	assert.True(t, f.Transactions[1].Amount.IsZero())
	assert.Equal(t, time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), f.Transactions[1].Date)
	assert.Equal(t, "-3.00", f.Transactions[2].Amount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC), f.Transactions[2].Date)

	require.Len(t, f.Issues, 1)
	assert.Equal(t, "amount", f.Issues[0].Field)
	assert.Equal(t, 3, f.Issues[0].Row)
}

func TestParseLedger_MissingColumns(t *testing.T) {
	f := ParseLedger([][]string{{"Date", "Account"}, {"08/01/2025", "Rent"}})
	require.Len(t, f.Transactions, 1)
	assert.True(t, f.Transactions[0].Amount.IsZero())
	assert.Equal(t, "", f.Transactions[0].AccountType)

	var fields []string
	for _, i := range f.Issues {
		fields = append(fields, i.Field)
	}
	assert.ElementsMatch(t, []string{"amount", "account_type", "name", "memo"}, fields)

	empty := ParseLedger(nil)
	assert.Empty(t, empty.Transactions)
	require.Len(t, empty.Issues, 1)
}

func TestParseBank_Fixture(t *testing.T) {
	f, err := ParseBank(readFixture(t, "bank.csv"))
	require.NoError(t, err)
	require.Len(t, f.Entries, 4)
	assert.Empty(t, f.Issues)

	assert.Equal(t, "bank-00001", f.Entries[0].ID)
	assert.Equal(t, "CUST B DEPOSIT", f.Entries[0].Description)
	assert.Equal(t, "2000.00", f.Entries[0].Amount.StringFixed(2))
	assert.Equal(t, "-500.00", f.Entries[1].Amount.StringFixed(2))
	assert.Equal(t, "-100.00", f.Entries[2].Amount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC), f.Entries[3].Date)
}

func TestParseBank_Errors(t *testing.T) {
	_, err := ParseBank([][]string{{"Description", "Amount"}})
	assert.ErrorContains(t, err, "date column")

	_, err = ParseBank([][]string{{"Transaction Date", "Memo"}})
	assert.ErrorContains(t, err, "amount column")

	f, err := ParseBank([][]string{
		{"Transaction Date", "Transaction Description", "Amount"},
		{"NOTADATE", "x", "1"},
		{"08/01/2025", "y", "NOTANUMBER"},
		{"08/02/2025", "z", "4"},
	})
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	assert.Equal(t, "z", f.Entries[0].Description)
	assert.Equal(t, "bank-00001", f.Entries[0].ID)
	require.Len(t, f.Issues, 2)
	assert.Equal(t, 2, f.Issues[0].Row)
	assert.Equal(t, 3, f.Issues[1].Row)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"08/05/2025", "2025-08-05", true},
		{"8/5/2025", "2025-08-05", true},
		{"8/5/25", "2025-08-05", true},
		{"08/05/2025 13:45:00", "2025-08-05", true},
		{"2025-08-05", "2025-08-05", true},
		{"2025-08-05T09:00:00Z", "2025-08-05", true},
		{"2025/8/5", "2025-08-05", true},
		{"08-05-25", "2025-08-05", true},
		{" ", "", false},
		{"TOTAL", "", false},
		{"13/45/2025", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDate(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1,234.56", "1234.56", false},
		{"$99", "99.00", false},
		{"- $28800.3", "-28800.30", false},
		{"(12.50)", "-12.50", false},
		{"-7", "-7.00", false},
		{"", "0.00", false},
		{" 12", "12.00", false},
		{"n/a", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestCSVReader_Windows1252(t *testing.T) {
	// "Café" with é encoded as 0xE9 and a UTF-8 BOM-free header.
	data := "Date,Account,Name,Amount\n08/01/2025,Meals,Caf\xe9 Rouge,12.00\n"
	rows, err := (&CSVReader{}).Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Café Rouge", rows[1][2])
}

func TestCSVReader_BOMAndRaggedRows(t *testing.T) {
	data := "\xef\xbb\xbfTitle\nDate,Account,Amount\n08/01/2025,Rent,5\n"
	rows, err := (&CSVReader{}).Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Title"}, rows[0])
}

func TestXLSXReader(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"Ledger export"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]any{"Date", "Account", "Account Type", "Name", "Memo", "Amount"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A4", &[]any{"08/05/2025", "Sales", "Income", "Cust B", "Inv 2", "-2000"}))

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	f, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.HeaderRow)
	require.Len(t, f.Transactions, 1)
	assert.Equal(t, "-2000.00", f.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "Sales", f.Transactions[0].Account)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("csv"))

	r.Register(&CSVReader{})
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get(".csv"))
	assert.Panics(t, func() { r.Register(&CSVReader{}) })

	d := DefaultRegistry()
	assert.Equal(t, "xlsx", d.Get("xlsx").Format())
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "ledger.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	_, err := DefaultRegistry().ReadFile(txt)
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = LoadLedger(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = LoadBank(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestLoadLedger_ClassifiedCSV(t *testing.T) {
	src, err := LoadLedger(filepath.Join("..", "..", "testdata", "ledger.csv"))
	require.NoError(t, err)

	txns := src.Transactions
	txns[6].Classification = model.ClassOverhead
	txns[6].IsOverhead = true
	txns[6].AddbackFlag = true
	txns[6].AddbackReasons = []string{"token=nathan", "account=6200 Meals"}

	path := filepath.Join(t.TempDir(), "classified.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, ledger.WriteTransactions(f, txns))
	require.NoError(t, f.Close())

	got, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.HeaderRow)
	assert.Empty(t, got.Issues)
	require.Len(t, got.Transactions, len(txns))
	assert.Equal(t, "gl-00007", got.Transactions[6].ID)
	assert.True(t, got.Transactions[6].AddbackFlag)
	assert.Equal(t, []string{"token=nathan", "account=6200 Meals"}, got.Transactions[6].AddbackReasons)
	assert.Equal(t, "-1000", got.Transactions[0].Amount.String())
}
