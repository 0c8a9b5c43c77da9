// Package addback flags transactions whose costs are added back to net
// profit when computing seller's discretionary earnings.
package addback

import (
	"strings"
	"time"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// Options configures a Detector.
type Options struct {
	// Rules are caller-supplied structured rules, applied after the
	// built-in defaults. When empty, token matching is used instead.
	Rules []Rule
	// CustomTokens extend DefaultTokens in token mode.
	CustomTokens []string
	// Accounts flags every row whose account equals one of these names.
	Accounts []string
	// PayrollStart is the effective date of the built-in payroll rule.
	PayrollStart time.Time
}

// Detector applies addback rules, tokens and account overrides.
type Detector struct {
	rules    []Rule
	tokens   []string
	accounts []string
}

// NewDetector validates the rule list and builds a Detector.
func NewDetector(opts Options) (*Detector, error) {
	rules := append(DefaultRules(opts.PayrollStart), opts.Rules...)

	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.Name] {
			return nil, model.NewConfigError("rule."+r.Name, "duplicate rule name")
		}
		seen[r.Name] = true
	}

	d := &Detector{rules: rules}
	if len(opts.Rules) == 0 {
		d.tokens = normalizeTokens(append(append([]string(nil), DefaultTokens...), opts.CustomTokens...))
	}
	for _, a := range opts.Accounts {
		if a = strings.TrimSpace(a); a != "" {
			d.accounts = append(d.accounts, a)
		}
	}
	return d, nil
}

// Rules returns the effective ordered rule list, defaults first.
func (d *Detector) Rules() []Rule {
	return d.rules
}

// Tokens returns the active free tokens, or nil when structured rules are in use.
func (d *Detector) Tokens() []string {
	return d.tokens
}

// Detect returns a flagged copy of txns. A row's flag is the OR of every
// matching rule, token and account override; its reasons list each
// contributor once, in rule order.
func (d *Detector) Detect(txns []model.Transaction) []model.Transaction {
	out := model.Clone(txns)
	for i := range out {
		t := &out[i]
		for _, r := range d.rules {
			if r.Matches(*t) {
				flag(t, r.Reason())
			}
		}
		// Free tokens only ever flag cost rows.
		if t.IsCost() {
			for _, tok := range d.tokens {
				if containsWord(t.Name, tok) || containsWord(t.Memo, tok) {
					flag(t, "token="+tok)
				}
			}
		}
		for _, a := range d.accounts {
			if t.Account == a {
				flag(t, "account="+a)
			}
		}
	}
	return out
}

func flag(t *model.Transaction, reason string) {
	t.AddbackFlag = true
	for _, r := range t.AddbackReasons {
		if r == reason {
			return
		}
	}
	t.AddbackReasons = append(t.AddbackReasons, reason)
}

// Reason joins a row's reason trail for display.
func Reason(t model.Transaction) string {
	return strings.Join(t.AddbackReasons, ", ")
}

// Flagged returns the flagged rows of txns.
func Flagged(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.AddbackFlag {
			out = append(out, t)
		}
	}
	return out
}
