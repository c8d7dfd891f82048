package sink

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/miqueiast/vendas-amazon/internal/table"
)

// parquetSchema declares every column as an optional string. Records are
// open-ended, so values are stored as their cell text and missing fields as null.
func parquetSchema(columns []string) *parquet.Schema {
	group := make(parquet.Group, len(columns))
	for _, c := range columns {
		group[c] = parquet.Optional(parquet.String())
	}
	return parquet.NewSchema("countPerHour", group)
}

func writeParquet(path string, t table.Table, columns []string) error {
	schema := parquetSchema(columns)

	// Leaf columns of a group are ordered by name, not by first appearance.
	fields := schema.Fields()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewWriter(file, schema)

	rows := make([]parquet.Row, 0, t.Len())
	for _, rec := range t.Rows() {
		row := make(parquet.Row, len(fields))
		for j, field := range fields {
			v, ok := rec.Get(field.Name())
			if !ok || v == nil {
				row[j] = parquet.NullValue().Level(0, 0, j)
				continue
			}
			row[j] = parquet.ValueOf(FormatValue(v)).Level(0, 1, j)
		}
		rows = append(rows, row)
	}

	if _, err := writer.WriteRows(rows); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return file.Close()
}
