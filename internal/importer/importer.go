// Package importer loads ledger and bank register exports (CSV or XLSX)
// into normalized rows.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/ownerkpi/internal/ledger"
)

// Reader decodes a spreadsheet-like file into raw string rows.
type Reader interface {
	Read(r io.Reader) ([][]string, error)
	Format() string
}

// Registry maps file extensions to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader for its format extension. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format ("csv", "xlsx"), or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(strings.TrimPrefix(format, "."))]
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVReader{})
	r.Register(&XLSXReader{})
	return r
}

// ReadFile reads path with the reader registered for its extension.
func (r *Registry) ReadFile(path string) ([][]string, error) {
	ext := filepath.Ext(path)
	rd := r.Get(ext)
	if rd == nil {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rows, err := rd.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// LoadLedger reads and parses a general-ledger export. A CSV previously
// written by ledger.WriteTransactions is read back as-is, derived columns
// included.
func LoadLedger(path string) (*LedgerFile, error) {
	rows, err := DefaultRegistry().ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isClassified(path, rows) {
		return loadClassified(path)
	}
	return ParseLedger(rows), nil
}

func isClassified(path string, rows [][]string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv") &&
		len(rows) > 0 && strings.Join(rows[0], ",") == ledger.Header
}

func loadClassified(path string) (*LedgerFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ledger.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return &LedgerFile{Transactions: txns, HeaderRow: 1}, nil
}

// LoadBank reads and parses a bank register export.
func LoadBank(path string) (*BankFile, error) {
	rows, err := DefaultRegistry().ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBank(rows)
}
