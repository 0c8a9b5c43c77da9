package kpi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

func row(date string, class model.Classification, amount string, addback bool) model.Transaction {
	t := model.Transaction{
		Amount:         decimal.RequireFromString(amount),
		Classification: class,
		IsRevenue:      class == model.ClassRevenue,
		IsCOGS:         class == model.ClassCOGS,
		IsOverhead:     class == model.ClassOverhead,
		IsOtherExpense: class == model.ClassOtherExpense,
		AddbackFlag:    addback,
	}
	if date != "" {
		t.Date, _ = time.Parse(model.DateFormat, date)
	}
	return t
}

func assertNull(t *testing.T, want string, got decimal.NullDecimal, msg string) {
	t.Helper()
	require.True(t, got.Valid, "%s should be defined", msg)
	assert.True(t, decimal.RequireFromString(want).Equal(got.Decimal.Round(4)), "%s: want %s, got %s", msg, want, got.Decimal)
}

func ledger() []model.Transaction {
	return []model.Transaction{
		row("2025-09-05", model.ClassRevenue, "-2000", false),
		row("2025-07-10", model.ClassRevenue, "-999", false),
		row("2025-07-11", model.ClassOverhead, "100", false),
		row("2025-08-05", model.ClassRevenue, "-1000", false),
		row("2025-08-06", model.ClassCOGS, "200", false),
		row("2025-08-07", model.ClassOverhead, "100", false),
		row("2025-08-08", model.ClassOverhead, "50", true),
		row("2025-09-06", model.ClassCOGS, "400", false),
		row("2025-09-07", model.ClassOverhead, "200", false),
		row("2025-09-08", model.ClassOverhead, "0", true),
		row("", model.ClassOverhead, "9999", false),
	}
}

func TestMonthly(t *testing.T) {
	months := Monthly(ledger(), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, months, 3)
	jul, aug, sep := months[0], months[1], months[2]

	assert.Equal(t, "2025-07", jul.Month)
	assert.Equal(t, "Jul 2025", jul.Label)
	assert.True(t, jul.Revenue.IsZero(), "revenue before the boundary is excluded")
	assert.False(t, jul.GrossMarginPct.Valid, "no margin without revenue")
	assert.False(t, jul.RevenueMoMDelta.Valid, "first month has no prior")
	assert.False(t, jul.SDEMoMPct.Valid)

	assert.Equal(t, "Aug 2025", aug.Label)
	assert.True(t, decimal.NewFromInt(1000).Equal(aug.Revenue))
	assert.True(t, decimal.NewFromInt(200).Equal(aug.COGS))
	assert.True(t, decimal.NewFromInt(150).Equal(aug.Overhead))
	assert.True(t, aug.OtherExpense.IsZero())
	assert.True(t, decimal.NewFromInt(650).Equal(aug.NetProfit))
	assert.True(t, decimal.NewFromInt(50).Equal(aug.Addbacks))
	assert.True(t, decimal.NewFromInt(700).Equal(aug.SDE))
	assert.True(t, aug.NetProfit.Equal(aug.GrossProfit.Sub(aug.Overhead).Sub(aug.OtherExpense)))

	assertNull(t, "0.8", aug.GrossMarginPct, "gross margin")
	assertNull(t, "0.65", aug.NetMarginPct, "net margin")
	assertNull(t, "0.7", aug.SDEMarginPct, "sde margin")
	assertNull(t, "0.15", aug.OverheadPct, "overhead pct")
	assertNull(t, "0.2", aug.COGSPct, "cogs pct")

	assertNull(t, "1000", aug.RevenueMoMDelta, "aug revenue delta")
	assert.False(t, aug.RevenueMoMPct.Valid, "prior month revenue was zero")

	assert.True(t, decimal.NewFromInt(2000).Equal(sep.Revenue))
	assert.True(t, decimal.NewFromInt(1400).Equal(sep.NetProfit))
	assert.True(t, decimal.NewFromInt(1400).Equal(sep.SDE))
	assertNull(t, "1000", sep.RevenueMoMDelta, "revenue delta")
	assertNull(t, "1", sep.RevenueMoMPct, "revenue pct")
	assertNull(t, "750", sep.NetProfitMoMDelta, "net delta")
	assertNull(t, "1.1538", sep.NetProfitMoMPct, "net pct")
	assertNull(t, "700", sep.SDEMoMDelta, "sde delta")
	assertNull(t, "1", sep.SDEMoMPct, "sde pct")
}

func TestMonthly_NoRevenueBoundary(t *testing.T) {
	months := Monthly(ledger(), time.Time{})
	require.Len(t, months, 3)
	assert.True(t, decimal.NewFromInt(999).Equal(months[0].Revenue))
}

func TestMonthly_Empty(t *testing.T) {
	assert.Empty(t, Monthly(nil, time.Time{}))
	assert.Empty(t, Monthly([]model.Transaction{row("", model.ClassRevenue, "-5", false)}, time.Time{}))
}

func TestMonthly_DoesNotMutateInput(t *testing.T) {
	in := ledger()
	_ = Monthly(in, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, decimal.NewFromInt(-999).Equal(in[1].Amount))
}

func TestRatio(t *testing.T) {
	assert.False(t, Ratio(decimal.NewFromInt(5), decimal.Zero).Valid)
	r := Ratio(decimal.NewFromInt(1), decimal.NewFromInt(4))
	require.True(t, r.Valid)
	assert.Equal(t, "0.25", r.Decimal.String())
}
