package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

func TestCheck_Clean(t *testing.T) {
	txns := []model.Transaction{
		{ID: "gl-00001", Date: date(2025, 8, 1), Account: "Sales", AccountType: "Income", Amount: dec("-10.25"), Classification: model.ClassRevenue, IsRevenue: true},
		{ID: "gl-00002", Date: date(2025, 8, 2), Account: "Rent", AccountType: "Expense", Amount: dec("500"), Classification: model.ClassOverhead, IsOverhead: true},
	}
	assert.Empty(t, Check(txns))
}

func TestCheck_Issues(t *testing.T) {
	txns := []model.Transaction{
		{ID: "gl-00001", Date: date(2025, 8, 1), Account: "Checking", AccountType: "Bank", Amount: dec("5"), Classification: model.ClassUnclassified},
		{ID: "gl-00001", Date: date(2025, 8, 1), Account: "Rent", AccountType: "Expense", Amount: dec("5"), Classification: model.ClassOverhead, IsOverhead: true},
		{ID: "gl-00003", Account: " ", AccountType: "", Amount: dec("1.005"), Classification: model.ClassUnclassified},
	}

	issues := Check(txns)
	fields := make([]string, 0, len(issues))
	for _, i := range issues {
		fields = append(fields, i.Field+"@"+i.ID)
	}
	assert.ElementsMatch(t, []string{
		"account_type@gl-00001",
		"id@gl-00001",
		"date@gl-00003",
		"account@gl-00003",
		"account_type@gl-00003",
		"amount@gl-00003",
	}, fields)
}

func TestIssue_String(t *testing.T) {
	assert.Equal(t, `account_type [gl-00001]: unrecognized account type "Bank"`,
		Issue{ID: "gl-00001", Field: "account_type", Message: `unrecognized account type "Bank"`}.String())
	assert.Equal(t, "date [row 7]: bad", Issue{Row: 7, Field: "date", Message: "bad"}.String())
	assert.Equal(t, "amount: bad", Issue{Field: "amount", Message: "bad"}.String())
	require.NotEmpty(t, Check([]model.Transaction{{}}))
}
