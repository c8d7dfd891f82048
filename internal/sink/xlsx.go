package sink

import (
	"github.com/xuri/excelize/v2"

	"github.com/miqueiast/vendas-amazon/internal/table"
)

// SheetName is the worksheet holding the records in xlsx output.
const SheetName = "countPerHour"

func writeXLSX(path string, t table.Table, columns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, rec := range t.Rows() {
		row := make([]any, len(columns))
		for j, col := range columns {
			v, _ := rec.Get(col)
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
