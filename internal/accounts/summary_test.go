package accounts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func summaryFixture() []model.Transaction {
	return []model.Transaction{
		{Date: day(2025, 7, 10), Account: "Revenue Account", AccountType: "Income", Amount: decimal.NewFromInt(1000), Classification: model.ClassRevenue},
		{Date: day(2025, 7, 15), Account: "COGS Account", AccountType: "Cost of Goods Sold", Amount: decimal.NewFromInt(-500), Classification: model.ClassCOGS},
		{Date: day(2025, 8, 5), Account: "Overhead Account", AccountType: "Expense", Amount: decimal.NewFromInt(-200), Classification: model.ClassOverhead},
		{Date: day(2025, 8, 6), Account: "Overhead Account", AccountType: "Expense", Amount: decimal.NewFromInt(-25), Classification: model.ClassOverhead},
		{Date: day(2025, 8, 10), Account: "Other Account", AccountType: "Other Expense", Amount: decimal.NewFromInt(-50), Classification: model.ClassOtherExpense},
		{Date: day(2025, 6, 30), Account: "Old Account", AccountType: "Expense", Amount: decimal.NewFromInt(-9), Classification: model.ClassOverhead},
	}
}

func TestNewSummary(t *testing.T) {
	w := model.Window{Start: day(2025, 7, 1), End: day(2025, 12, 1)}
	s := NewSummary(summaryFixture(), w, nil)

	rows := s.All()
	require.Len(t, rows, 4)
	assert.Equal(t, "Revenue Account", rows[0].Account)
	assert.Equal(t, model.ClassCOGS, rows[1].Classification)
	assert.Equal(t, "-225", rows[2].Amount.String())
	assert.Equal(t, 2, rows[2].Count)
	assert.Equal(t, "225", s.Total().String())

	for _, r := range rows {
		assert.False(t, r.IsAddback)
	}

	_, ok := s.Get("Old Account")
	assert.False(t, ok, "rows outside the window are excluded")
}

func TestNewSummary_AddbackAccounts(t *testing.T) {
	w := model.Window{Start: day(2025, 7, 1), End: day(2025, 12, 1)}
	s := NewSummary(summaryFixture(), w, []string{"COGS Account", "Overhead Account"})

	cogs, ok := s.Get("COGS Account")
	require.True(t, ok)
	assert.True(t, cogs.IsAddback)

	rev, ok := s.Get("Revenue Account")
	require.True(t, ok)
	assert.False(t, rev.IsAddback)

	overhead := s.ByClassification(model.ClassOverhead)
	require.Len(t, overhead, 1)
	assert.True(t, overhead[0].IsAddback)
}
