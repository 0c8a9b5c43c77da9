package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Row ID sources.
const (
	SourceLedger = "gl"
	SourceBank   = "bank"
)

// FormatRowID returns a row ID like "gl-00042" for the 0-based row index.
func FormatRowID(source string, index int) string {
	return fmt.Sprintf("%s-%05d", source, index+1)
}

// ParseRowID parses "gl-00042" into its source and 0-based index.
func ParseRowID(rowID string) (source string, index int, err error) {
	i := strings.LastIndex(rowID, "-")
	if i <= 0 || i == len(rowID)-1 {
		return "", 0, fmt.Errorf("invalid row ID format: %q", rowID)
	}

	n, err := strconv.Atoi(rowID[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in row ID %q: %w", rowID, err)
	}
	if n < 1 {
		return "", 0, fmt.Errorf("invalid sequence in row ID %q: must be >= 1", rowID)
	}
	return rowID[:i], n - 1, nil
}

// Source returns the source part of a row ID, or "" if it has none.
// "bank-00003" -> "bank"
func Source(rowID string) string {
	i := strings.LastIndex(rowID, "-")
	if i <= 0 {
		return ""
	}
	return rowID[:i]
}
