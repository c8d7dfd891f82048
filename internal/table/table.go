// Package table accumulates fetched records into one ordered result table.
package table

import (
	"github.com/miqueiast/vendas-amazon/internal/fetcher"
)

// Table is an ordered sequence of records. A Table value is never modified;
// Append returns a new snapshot.
type Table struct {
	rows []fetcher.Record
}

// Append returns a table with batch added after the existing rows.
// An empty batch returns t unchanged.
func (t Table) Append(batch []fetcher.Record) Table {
	if len(batch) == 0 {
		return t
	}
	rows := make([]fetcher.Record, 0, len(t.rows)+len(batch))
	rows = append(rows, t.rows...)
	rows = append(rows, batch...)
	return Table{rows: rows}
}

// Accumulate folds the rows of every successful result into a table, in the
// order of results.
func Accumulate(results []fetcher.Result) Table {
	var t Table
	for _, r := range results {
		if r.OK() {
			t = t.Append(r.Records)
		}
	}
	return t
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the records.
func (t Table) Rows() []fetcher.Record {
	return append([]fetcher.Record(nil), t.rows...)
}

// Columns returns the union of all field names, ordered by first appearance.
func (t Table) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range t.rows {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}
