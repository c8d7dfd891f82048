package sink

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/miqueiast/vendas-amazon/internal/table"
)

func writeCSV(path string, t table.Table, columns []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := make([]string, len(columns))
	for i, rec := range t.Rows() {
		for j, col := range columns {
			v, _ := rec.Get(col)
			row[j] = FormatValue(v)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
