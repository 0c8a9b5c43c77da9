// Package classify assigns each ledger row to exactly one P&L bucket from its
// account type text and chart-of-accounts prefix.
package classify

import (
	"strings"

	"github.com/cleared-dev/ownerkpi/internal/accounts"
	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Classifier tags transactions as Revenue, OtherExpense, COGS, Overhead or
// Unclassified.
type Classifier struct {
	cogsPrefixes accounts.PrefixSet
}

// New returns a Classifier. A nil or empty prefix set falls back to
// accounts.DefaultCOGSPrefixes.
func New(cogsPrefixes accounts.PrefixSet) *Classifier {
	if len(cogsPrefixes) == 0 {
		cogsPrefixes = accounts.DefaultCOGSPrefixes()
	}
	return &Classifier{cogsPrefixes: cogsPrefixes}
}

// Classify returns a classified copy of txns. The input is not modified.
func (c *Classifier) Classify(txns []model.Transaction) []model.Transaction {
	out := model.Clone(txns)
	for i := range out {
		c.apply(&out[i])
	}
	return out
}

// Row returns the classification of a single transaction.
func (c *Classifier) Row(t model.Transaction) model.Classification {
	acctType := strings.ToLower(strings.TrimSpace(t.AccountType))
	acct := strings.ToLower(t.Account)

	// Order matters: each later check only sees rows not already tagged.
	if strings.Contains(acctType, "income") || strings.Contains(acct, "income") {
		return model.ClassRevenue
	}
	if strings.Contains(acctType, "other expense") || strings.Contains(acctType, "other income") {
		return model.ClassOtherExpense
	}

	explicitCOGS := strings.Contains(acctType, "cost of goods sold") || strings.Contains(acctType, "cogs")
	if !explicitCOGS && !strings.Contains(acctType, "expense") {
		return model.ClassUnclassified
	}

	prefix, _ := accounts.ExtractPrefix(t.Account)
	if explicitCOGS || c.cogsPrefixes.Contains(prefix) {
		return model.ClassCOGS
	}
	return model.ClassOverhead
}

func (c *Classifier) apply(t *model.Transaction) {
	t.AccountPrefix, _ = accounts.ExtractPrefix(t.Account)

	class := c.Row(*t)
	t.Classification = class
	t.IsRevenue = class == model.ClassRevenue
	t.IsCOGS = class == model.ClassCOGS
	t.IsOverhead = class == model.ClassOverhead
	t.IsOtherExpense = class == model.ClassOtherExpense
}

// Counts tallies rows per classification.
func Counts(txns []model.Transaction) map[model.Classification]int {
	counts := make(map[model.Classification]int)
	for _, t := range txns {
		counts[t.Classification]++
	}
	return counts
}
