package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 9, 1, 8, 15, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Command:   "report",
		RunID:     "7f1c1e1a-5a59-4a4b-9d55-0d5d8a7f0b11",
		AsOf:      "2025-08-31",
		Input:     "imports/gl.csv",
		Summary:   "revenue=2000.00 sde=1500.00",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	data, err := os.ReadFile(filepath.Join(dir, File))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Command = "reconcile"
	e2.Summary = "matched=3, unmatched_ledger=0, unmatched_bank=1"
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "report", entries[0].Command)
	assert.Equal(t, "reconcile", entries[1].Command)
	assert.Equal(t, e2.Summary, entries[1].Summary)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := testEntry()
	require.NoError(t, Append(dir, want))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.AsOf, got.AsOf)
	assert.Equal(t, want.Input, got.Input)
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"a", "b"})
	assert.Error(t, err)

	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestFilter(t *testing.T) {
	mk := func(cmd string, day int, id string) Entry {
		e := testEntry()
		e.Command = cmd
		e.RunID = id
		e.Timestamp = time.Date(2025, 9, day, 0, 0, 0, 0, time.UTC)
		return e
	}
	entries := []Entry{
		mk("report", 1, "r1"),
		mk("reconcile", 2, "c1"),
		mk("report", 3, "r2"),
		mk("report", 4, "r3"),
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all newest first", Query{}, []string{"r3", "r2", "c1", "r1"}},
		{"by command", Query{Command: "REPORT"}, []string{"r3", "r2", "r1"}},
		{"limit", Query{Command: "report", Limit: 2}, []string{"r3", "r2"}},
		{"since", Query{Since: time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)}, []string{"r3", "r2", "c1"}},
		{"no match", Query{Command: "monthly"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := []string{}
			for _, e := range Filter(entries, tc.q) {
				got = append(got, e.RunID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFind(t *testing.T) {
	entries := []Entry{testEntry()}
	e, ok := Find(entries, testEntry().RunID)
	require.True(t, ok)
	assert.Equal(t, "report", e.Command)

	_, ok = Find(entries, "missing")
	assert.False(t, ok)
}
