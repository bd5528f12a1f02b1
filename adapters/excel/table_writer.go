package excel

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"gosubgroup/domain/dataset"
)

// WriteTable writes a table with a header row. The format follows the
// extension like Read does; missing cells are left empty.
func WriteTable(path string, table *dataset.Table) error {
	if fileTypeOf(path) == "csv" {
		return writeTableCSV(path, table)
	}
	return writeTableXLSX(path, table)
}

func writeTableCSV(path string, table *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.ColumnNames()); err != nil {
		return err
	}
	cols := table.Columns()
	record := make([]string, len(cols))
	for row := 0; row < table.Len(); row++ {
		for j, c := range cols {
			record[j] = c.Text(row)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeTableXLSX(path string, table *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, 0, len(table.Columns()))
	for _, name := range table.ColumnNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	cols := table.Columns()
	for row := 0; row < table.Len(); row++ {
		values := make([]interface{}, len(cols))
		for j, c := range cols {
			values[j] = c.Text(row)
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
