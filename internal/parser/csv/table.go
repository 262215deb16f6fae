// Package csv reads the small CSV tables ERDDAP returns for catalog listings,
// dataset metadata (info/<id>/index.csv) and single-column tabledap queries.
//
// ERDDAP tabledap .csv responses carry two header rows: column names, then
// units. Info responses carry only the names row. Options.UnitsRow selects
// between the two.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is returned when the input has no header row at all.
var ErrNoHeader = errors.New("csv: missing header row")

// Options configures ReadTable.
type Options struct {
	// UnitsRow indicates that the row after the header holds units and must
	// not be treated as data.
	UnitsRow bool

	// TrimSpace trims leading/trailing spaces from every cell.
	TrimSpace bool
}

// Table is a fully-read CSV table.
type Table struct {
	Header []string
	Units  []string
	Rows   [][]string

	index map[string]int
}

// ReadTable reads all of r into a Table. Rows whose width differs from the
// header are rejected with an error naming the line.
func ReadTable(r io.Reader, opt Options) (*Table, error) {
	cr := csv.NewReader(NewBOMReader(r))
	cr.FieldsPerRecord = 0 // header width is enforced for every row

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	t := &Table{
		Header: trimAll(header, opt.TrimSpace),
		index:  make(map[string]int, len(header)),
	}
	for i, name := range t.Header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	if opt.UnitsRow {
		units, err := cr.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: read units row: %w", err)
		}
		t.Units = trimAll(units, opt.TrimSpace)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		t.Rows = append(t.Rows, trimAll(rec, opt.TrimSpace))
	}
	return t, nil
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool { return t.Column(name) >= 0 }

// Value returns the cell of row in the named column, or "" when the column
// does not exist.
func (t *Table) Value(row []string, name string) string {
	i := t.Column(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func trimAll(rec []string, trim bool) []string {
	if !trim {
		return rec
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return rec
}
