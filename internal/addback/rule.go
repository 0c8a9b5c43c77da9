package addback

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// PayrollRuleName names the built-in recurring payroll rule.
const PayrollRuleName = "weekly_payroll_addback_2880"

// DefaultTolerance is the amount tolerance used when a rule omits one.
var DefaultTolerance = decimal.RequireFromString("0.01")

// DefaultPayrollStart is the first day the built-in payroll rule applies.
var DefaultPayrollStart = time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

// Rule is a declarative addback matcher. Every populated predicate must
// match; within a contains list every token must be present.
type Rule struct {
	Name            string
	AccountContains []string
	NameContains    []string
	MemoContains    []string
	Amount          *decimal.Decimal
	AmountTolerance *decimal.Decimal
	EffectiveDate   time.Time // zero = always effective
}

// Validate rejects rules that would match everything or carry bad numbers.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return model.NewConfigError("rule.name", "addback rule missing required name")
	}
	if len(nonBlank(r.AccountContains)) == 0 &&
		len(nonBlank(r.NameContains)) == 0 &&
		len(nonBlank(r.MemoContains)) == 0 &&
		r.Amount == nil {
		return model.NewConfigError("rule."+r.Name, "rule has no predicates and would match every transaction")
	}
	if r.AmountTolerance != nil {
		if r.Amount == nil {
			return model.NewConfigError("rule."+r.Name, "amount_tolerance set without amount")
		}
		if r.AmountTolerance.IsNegative() {
			return model.NewConfigError("rule."+r.Name, "amount_tolerance must be >= 0, got %s", r.AmountTolerance)
		}
	}
	return nil
}

// Tolerance returns the effective absolute amount tolerance.
func (r Rule) Tolerance() decimal.Decimal {
	if r.AmountTolerance == nil {
		return DefaultTolerance
	}
	return *r.AmountTolerance
}

// Matches reports whether the rule applies to t.
func (r Rule) Matches(t model.Transaction) bool {
	if !r.EffectiveDate.IsZero() {
		if !t.HasDate() || model.Day(t.Date).Before(model.Day(r.EffectiveDate)) {
			return false
		}
	}
	if !containsAll(t.Account, r.AccountContains) ||
		!containsAll(t.Name, r.NameContains) ||
		!containsAll(t.Memo, r.MemoContains) {
		return false
	}
	if r.Amount != nil {
		diff := t.Amount.Abs().Sub(r.Amount.Abs()).Abs()
		if diff.GreaterThan(r.Tolerance()) {
			return false
		}
	}
	return true
}

// Reason is the reason-trail entry recorded for a match.
func (r Rule) Reason() string {
	return "rule=" + r.Name
}

// DefaultRules returns the built-in rule set. A zero payrollStart uses
// DefaultPayrollStart.
func DefaultRules(payrollStart time.Time) []Rule {
	if payrollStart.IsZero() {
		payrollStart = DefaultPayrollStart
	}
	amount := decimal.NewFromInt(2880)
	tol := decimal.NewFromInt(25)
	return []Rule{
		{
			Name:            PayrollRuleName,
			MemoContains:    []string{"payroll"},
			Amount:          &amount,
			AmountTolerance: &tol,
			EffectiveDate:   model.Day(payrollStart),
		},
	}
}

func containsAll(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if !strings.Contains(h, n) {
			return false
		}
	}
	return true
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
