package accounts

import (
	"sort"
	"strings"
	"unicode"
)

// ExtractPrefix returns the leading run of digits of a free-text account
// label, terminated by '.', '-', whitespace or the end of the label.
// "705.140 · POOL" -> "705", "804-03 Truck" -> "804", "Rent" -> none.
func ExtractPrefix(account string) (string, bool) {
	s := strings.TrimSpace(account)
	if s == "" || strings.EqualFold(s, "nan") {
		return "", false
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}
	if end < len(s) {
		next := rune(s[end])
		if next != '.' && next != '-' && !unicode.IsSpace(next) {
			return "", false
		}
	}
	return s[:end], true
}

// PrefixSet is a set of account-code prefixes.
type PrefixSet map[string]struct{}

// NewPrefixSet builds a set from the given prefixes, ignoring blanks.
func NewPrefixSet(prefixes ...string) PrefixSet {
	s := make(PrefixSet, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			s[p] = struct{}{}
		}
	}
	return s
}

// DefaultCOGSPrefixes returns the job-cost account range 704-708.
func DefaultCOGSPrefixes() PrefixSet {
	return NewPrefixSet("704", "705", "706", "707", "708")
}

// DefaultJobCostPrefixes returns the prefixes treated as job costs when
// carving legacy-window overhead.
func DefaultJobCostPrefixes() PrefixSet {
	return NewPrefixSet("704", "705", "706", "707", "708")
}

// Contains reports whether prefix is in the set.
func (s PrefixSet) Contains(prefix string) bool {
	if prefix == "" {
		return false
	}
	_, ok := s[prefix]
	return ok
}

// MatchesAccount reports whether the account label's prefix is in the set.
func (s PrefixSet) MatchesAccount(account string) bool {
	p, ok := ExtractPrefix(account)
	return ok && s.Contains(p)
}

// Sorted returns the prefixes in ascending order.
func (s PrefixSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
