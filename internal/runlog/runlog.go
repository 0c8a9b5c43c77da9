// Package runlog keeps an append-only CSV history of report and
// reconciliation runs inside a project directory.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	RunID     string    `json:"run_id"`
	AsOf      string    `json:"as_of,omitempty"`
	Input     string    `json:"input"`
	Summary   string    `json:"summary"`
}

// Query selects run-log entries. Zero values match everything.
type Query struct {
	Command string // case-insensitive command name
	Since   time.Time
	Limit   int // most recent N after filtering
}

// Filter returns the entries matching q, newest first.
func Filter(entries []Entry, q Query) []Entry {
	out := []Entry{}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if q.Command != "" && !strings.EqualFold(e.Command, q.Command) {
			continue
		}
		if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// Find returns the entry with the given run ID.
func Find(entries []Entry, runID string) (Entry, bool) {
	for _, e := range entries {
		if e.RunID == runID {
			return e, true
		}
	}
	return Entry{}, false
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,command,run_id,as_of,input,summary"

// File is the run log location relative to the project root.
const File = "logs/run-log.csv"

const (
	numFields    = 6
	colTimestamp = 0
	colCommand   = 1
	colRunID     = 2
	colAsOf      = 3
	colInput     = 4
	colSummary   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colCommand] = e.Command
	row[colRunID] = e.RunID
	row[colAsOf] = e.AsOf
	row[colInput] = e.Input
	row[colSummary] = e.Summary
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	return Entry{
		Timestamp: ts,
		Command:   record[colCommand],
		RunID:     record[colRunID],
		AsOf:      record[colAsOf],
		Input:     record[colInput],
		Summary:   record[colSummary],
	}, nil
}

// Append writes entries to <root>/logs/run-log.csv, creating the file and
// header if needed.
func Append(root string, entries ...Entry) error {
	path := filepath.Join(root, File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/run-log.csv. A missing file
// yields no entries.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
