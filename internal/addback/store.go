package addback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ownerkpi/internal/model"
)

// ruleJSON is the persisted rule shape. Fields are alphabetical so the
// written file is stable.
type ruleJSON struct {
	AccountContains json.RawMessage `json:"account_contains"`
	Amount          json.RawMessage `json:"amount"`
	AmountTolerance json.RawMessage `json:"amount_tolerance"`
	EffectiveDate   string          `json:"effective_date,omitempty"`
	MemoContains    json.RawMessage `json:"memo_contains"`
	Name            string          `json:"name"`
	NameContains    json.RawMessage `json:"name_contains"`
}

// ParseRules decodes a JSON list of rules and validates each one. Non-object
// list items are skipped.
func ParseRules(data []byte) ([]Rule, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("addback rules JSON must be a list: %w", err)
	}

	var rules []Rule
	for i, item := range items {
		if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			continue
		}
		var raw ruleJSON
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		r, err := raw.toRule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadRules reads a rules file. A missing file yields no rules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading addback rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("parsing addback rules %s: %w", path, err)
	}
	return rules, nil
}

// MarshalRules encodes rules as indented JSON terminated by a newline.
func MarshalRules(rules []Rule) ([]byte, error) {
	out := make([]ruleJSON, 0, len(rules))
	for _, r := range rules {
		out = append(out, fromRule(r))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling addback rules: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveRules writes rules to path, creating parent directories.
func SaveRules(path string, rules []Rule) error {
	data, err := MarshalRules(rules)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing addback rules: %w", err)
	}
	return nil
}

func (raw ruleJSON) toRule() (Rule, error) {
	r := Rule{Name: strings.TrimSpace(raw.Name)}
	if r.Name == "" {
		return Rule{}, model.NewConfigError("rule.name", "addback rule missing required name")
	}

	var err error
	if r.AccountContains, err = parseTokenList(raw.AccountContains); err != nil {
		return Rule{}, fmt.Errorf("account_contains: %w", err)
	}
	if r.NameContains, err = parseTokenList(raw.NameContains); err != nil {
		return Rule{}, fmt.Errorf("name_contains: %w", err)
	}
	if r.MemoContains, err = parseTokenList(raw.MemoContains); err != nil {
		return Rule{}, fmt.Errorf("memo_contains: %w", err)
	}
	if r.Amount, err = parseOptionalDecimal(raw.Amount); err != nil {
		return Rule{}, fmt.Errorf("amount: %w", err)
	}
	if r.AmountTolerance, err = parseOptionalDecimal(raw.AmountTolerance); err != nil {
		return Rule{}, fmt.Errorf("amount_tolerance: %w", err)
	}
	if s := strings.TrimSpace(raw.EffectiveDate); s != "" {
		d, err := time.Parse(model.DateFormat, s)
		if err != nil {
			return Rule{}, model.NewConfigError("rule."+r.Name, "effective_date %q is not YYYY-MM-DD", s)
		}
		r.EffectiveDate = d
	}
	return r, nil
}

func fromRule(r Rule) ruleJSON {
	out := ruleJSON{
		Name:            r.Name,
		AccountContains: tokenListJSON(r.AccountContains),
		NameContains:    tokenListJSON(r.NameContains),
		MemoContains:    tokenListJSON(r.MemoContains),
		Amount:          decimalJSON(r.Amount),
		AmountTolerance: decimalJSON(r.AmountTolerance),
	}
	if !r.EffectiveDate.IsZero() {
		out.EffectiveDate = r.EffectiveDate.Format(model.DateFormat)
	}
	return out
}

// parseTokenList accepts null, a string, or a list of scalars.
func parseTokenList(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return nonBlank([]string{single}), nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("expected string or list, got %s", raw)
	}
	items := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		items = append(items, fmt.Sprint(v))
	}
	return nonBlank(items), nil
}

func parseOptionalDecimal(raw json.RawMessage) (*decimal.Decimal, error) {
	if isNull(raw) || string(bytes.TrimSpace(raw)) == `""` {
		return nil, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return &d, nil
}

func tokenListJSON(items []string) json.RawMessage {
	if len(items) == 0 {
		return json.RawMessage("null")
	}
	data, _ := json.Marshal(items)
	return data
}

func decimalJSON(d *decimal.Decimal) json.RawMessage {
	if d == nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(d.String())
}

func isNull(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}
