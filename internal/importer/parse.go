package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order after any time suffix is stripped.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"2006/1/2",
	"01-02-06",
}

// ParseDate parses the date formats seen in ledger and bank exports. A time
// suffix separated by a space or "T" is ignored. ok is false when no
// layout matches.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ParseAmount parses a currency cell. "$", thousands separators and spaces
// are removed; "(12.50)" and "- $12.50" are negative. A blank cell is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		neg = true
		clean = clean[1 : len(clean)-1]
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// normalizeHeader lowercases a header cell and replaces spaces with
// underscores. Export junk ("Unnamed: 3", "nan", blank) maps to "".
func normalizeHeader(cell string) string {
	h := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cell)), " ", "_")
	if h == "nan" || strings.HasPrefix(h, "unnamed") {
		return ""
	}
	return h
}

// columns maps normalized header names to their first column index.
type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, cell := range header {
		h := normalizeHeader(cell)
		if h == "" {
			continue
		}
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

// first returns the index of the first candidate present.
func (c columns) first(candidates ...string) (int, bool) {
	for _, name := range candidates {
		if i, ok := c[name]; ok {
			return i, true
		}
	}
	return -1, false
}

// cell returns row[i] trimmed, or "" when i is absent or out of range.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
