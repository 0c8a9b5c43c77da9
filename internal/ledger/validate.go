package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Issue is a non-fatal data-quality finding. Row is the 1-based source row
// when known, otherwise 0.
type Issue struct {
	Row     int    `json:"row,omitempty"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	where := i.ID
	if where == "" && i.Row > 0 {
		where = fmt.Sprintf("row %d", i.Row)
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", i.Field, i.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", i.Field, where, i.Message)
}

// Check reports data-quality problems in classified transactions. It never
// fails; every finding is returned as an Issue.
func Check(txns []model.Transaction) []Issue {
	var issues []Issue
	hundred := decimal.NewFromInt(100)
	seen := make(map[string]bool, len(txns))

	for _, t := range txns {
		if t.ID != "" {
			if seen[t.ID] {
				issues = append(issues, Issue{ID: t.ID, Field: "id", Message: "duplicate row ID"})
			}
			seen[t.ID] = true
		}

		if !t.HasDate() {
			issues = append(issues, Issue{ID: t.ID, Field: "date", Message: "missing or unparseable date"})
		}

		if strings.TrimSpace(t.Account) == "" {
			issues = append(issues, Issue{ID: t.ID, Field: "account", Message: "blank account"})
		}

		if t.Classification == model.ClassUnclassified || t.Classification == "" {
			typ := strings.TrimSpace(t.AccountType)
			msg := "blank account type"
			if typ != "" {
				msg = fmt.Sprintf("unrecognized account type %q", typ)
			}
			issues = append(issues, Issue{ID: t.ID, Field: "account_type", Message: msg})
		}

		scaled := t.Amount.Mul(hundred)
		if !scaled.Equal(scaled.Floor()) {
			issues = append(issues, Issue{ID: t.ID, Field: "amount", Message: fmt.Sprintf("amount %s has more than 2 decimal places", t.Amount)})
		}
	}
	return issues
}
