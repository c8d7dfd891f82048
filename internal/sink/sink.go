// Package sink writes an accumulated table to a file.
package sink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/miqueiast/vendas-amazon/internal/table"
)

// Format identifies an output encoding.
type Format string

const (
	// FormatCSV writes comma-separated text with a header row
	FormatCSV Format = "csv"
	// FormatXLSX writes a single-sheet Excel workbook
	FormatXLSX Format = "xlsx"
	// FormatParquet writes optional string columns, one per field
	FormatParquet Format = "parquet"
)

// ReasonEmpty is reported when there are no rows to write.
const ReasonEmpty = "nothing to write"

// Destination is where and how a table is written.
type Destination struct {
	Path   string
	Format Format
}

// Outcome reports what Write did.
type Outcome struct {
	Written bool
	Path    string
	Format  Format
	Rows    int
	Columns int
	// Reason explains why nothing was written
	Reason string
}

type encoder func(path string, t table.Table, columns []string) error

var encoders = map[Format]encoder{
	FormatCSV:     writeCSV,
	FormatXLSX:    writeXLSX,
	FormatParquet: writeParquet,
}

// ParseFormat validates a format name. An empty name infers the format from
// the path's extension and falls back to CSV.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if _, ok := encoders[Format(name)]; !ok {
			return FormatCSV, nil
		}
	}
	f := Format(strings.ToLower(name))
	if _, ok := encoders[f]; !ok {
		return "", fmt.Errorf("unsupported output format %q", name)
	}
	return f, nil
}

// Write serializes t to dest. An empty table writes no file and reports
// ReasonEmpty; this is not an error.
func Write(t table.Table, dest Destination) (Outcome, error) {
	out := Outcome{Path: dest.Path, Format: dest.Format}

	if t.Len() == 0 {
		out.Reason = ReasonEmpty
		slog.Info("no rows fetched, skipping output", "path", dest.Path)
		return out, nil
	}

	enc, ok := encoders[dest.Format]
	if !ok {
		return out, fmt.Errorf("unsupported output format %q", dest.Format)
	}

	if dir := filepath.Dir(dest.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return out, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	columns := t.Columns()

	slog.Info("writing output",
		slog.String("path", dest.Path),
		slog.String("format", string(dest.Format)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(columns)))

	// A failed encode must leave dest.Path as it was.
	staging, err := stagingFile(dest.Path)
	if err != nil {
		return out, err
	}
	if err := enc(staging, t, columns); err != nil {
		os.Remove(staging)
		return out, fmt.Errorf("writing %s: %w", dest.Path, err)
	}
	if err := os.Rename(staging, dest.Path); err != nil {
		os.Remove(staging)
		return out, fmt.Errorf("failed to move output into place: %w", err)
	}

	out.Written = true
	out.Rows = t.Len()
	out.Columns = len(columns)
	return out, nil
}

// stagingFile creates an empty file in path's directory keeping its
// extension, which excelize needs to pick the workbook type.
func stagingFile(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	f, err := os.CreateTemp(filepath.Dir(path), "."+stem+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
