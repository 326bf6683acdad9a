// Package table reads and writes the flat tabular files the pipeline consumes
// and produces. CSV and XLSX inputs are supported; the format is chosen by file
// extension.
package table

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a header.
var ErrMissingColumn = errors.New("missing required column")

// ErrUnsupportedFormat is returned for file extensions other than .csv/.xlsx.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Table is a header plus raw string rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// New builds a Table, indexing header names. The first occurrence of a
// duplicated header name wins.
func New(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: header, Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Header[i] = h
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
	return t
}

// Require returns an error naming the first column not present in the header.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			return fmt.Errorf("%s: %w %q", t.Name, ErrMissingColumn, c)
		}
	}
	return nil
}

// Get returns the cell for col in row. The boolean is false when the column is
// unknown or the row is too short to contain it.
func (t *Table) Get(row []string, col string) (string, bool) {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// Value returns the trimmed cell for col, or "" when absent.
func (t *Table) Value(row []string, col string) string {
	v, _ := t.Get(row, col)
	return strings.TrimSpace(v)
}

// ReadFile loads a table from path, dispatching on its extension.
func ReadFile(name, path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return readCSV(name, path)
	case ".xlsx", ".xlsm":
		return readXLSX(name, path)
	default:
		return nil, fmt.Errorf("%s: %w: %s", name, ErrUnsupportedFormat, path)
	}
}
