package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes the sheets, in order, to an .xlsx file
func WriteWorkbook(path string, sheets []SheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// Reuse the default sheet so the workbook has no stray Sheet1
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}

		header := make([]interface{}, len(sheet.Headers))
		for j, h := range sheet.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return err
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// WriteCSVSheets writes each sheet to the CSV path DataReader expects for it
func WriteCSVSheets(path string, sheets []SheetData) error {
	for _, sheet := range sheets {
		if err := writeCSV(CSVPathForSheet(path, sheet.Name), sheet); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, sheet SheetData) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sheet.Headers); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
