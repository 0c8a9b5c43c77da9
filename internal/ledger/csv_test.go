package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:             "gl-00001",
			Date:           date(2025, 8, 15),
			Account:        "Meals",
			AccountType:    "Expense",
			Name:           "Rest A",
			Memo:           "Lunch, with Nathan",
			Amount:         dec("100"),
			Classification: model.ClassOverhead,
			IsOverhead:     true,
			AddbackFlag:    true,
			AddbackReasons: []string{"token=nathan", "account=Meals"},
		},
		{
			ID:             "gl-00002",
			Date:           date(2025, 8, 16),
			Account:        "705.140 · POOL",
			AccountType:    "Expense",
			Amount:         dec("-12.5"),
			AccountPrefix:  "705",
			Classification: model.ClassCOGS,
			IsCOGS:         true,
		},
		{
			ID:             "gl-00003",
			Account:        "Suspense",
			Amount:         dec("3"),
			Classification: model.ClassUnclassified,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, Header, lines[0])
	assert.Contains(t, lines[1], `"Lunch, with Nathan"`)
	assert.Contains(t, lines[2], "-12.50")

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := range txns {
		assert.Equal(t, txns[i].ID, got[i].ID)
		assert.Equal(t, txns[i].Date, got[i].Date)
		assert.Equal(t, txns[i].Account, got[i].Account)
		assert.Equal(t, txns[i].Memo, got[i].Memo)
		assert.True(t, txns[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, txns[i].Classification, got[i].Classification)
		assert.Equal(t, txns[i].IsCOGS, got[i].IsCOGS)
		assert.Equal(t, txns[i].IsOverhead, got[i].IsOverhead)
		assert.Equal(t, txns[i].AddbackFlag, got[i].AddbackFlag)
		assert.Equal(t, txns[i].AddbackReasons, got[i].AddbackReasons)
	}
	assert.False(t, got[2].HasDate())
}

func TestReadTransactions_Empty(t *testing.T) {
	txns, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, txns)

	txns, err = ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestUnmarshalTransaction_Errors(t *testing.T) {
	good := MarshalTransaction(model.Transaction{ID: "gl-00001", Date: date(2025, 8, 1), Amount: dec("1")})

	tests := []struct {
		name   string
		mutate func([]string) []string
		want   string
	}{
		{"short row", func(r []string) []string { return r[:3] }, "expected 15 fields"},
		{"bad date", func(r []string) []string { r[colDate] = "08/01/2025"; return r }, "parsing date"},
		{"bad amount", func(r []string) []string { r[colAmount] = "abc"; return r }, "parsing amount"},
		{"bad flag", func(r []string) []string { r[colIsCOGS] = "maybe"; return r }, "parsing column"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := append([]string(nil), good...)
			_, err := UnmarshalTransaction(tc.mutate(rec))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
