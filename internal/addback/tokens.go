package addback

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTokens are matched against payee name and memo when no structured
// rules are supplied.
var DefaultTokens = []string{"xnp", "ng", "nathan", "owner", "personal"}

// normalizeTokens lowercases and trims tokens, dropping blanks and duplicates
// while keeping first-seen order.
func normalizeTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// containsWord reports whether word occurs in text as a whole word,
// case-insensitively. word must already be lowercase.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	s := strings.ToLower(text)
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if isBoundaryBefore(s, start) && isBoundaryAfter(s, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func isBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func isBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
