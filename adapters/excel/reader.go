package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"abtest/internal"
	"abtest/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel workbooks and per-sheet CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: internal.DefaultLogger}
}

// WithLogger replaces the reader's logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	r.logger = logger
	return r
}

// FileType returns "xlsx" or "csv"
func (r *DataReader) FileType() string {
	return r.fileType
}

// CSVPathForSheet returns the CSV file that stands in for a sheet:
// "<dir>/<stem>_<sheet slug>.csv", e.g. ab_testing_control_group.csv.
func CSVPathForSheet(filePath, sheet string) string {
	dir := filepath.Dir(filePath)
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	slug := strings.ToLower(strings.Join(strings.Fields(sheet), "_"))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", stem, slug))
}

// SourceFiles lists the files backing the given sheets
func (r *DataReader) SourceFiles(sheets ...string) []string {
	if r.fileType != "csv" {
		return []string{r.filePath}
	}
	paths := make([]string, len(sheets))
	for i, s := range sheets {
		paths[i] = CSVPathForSheet(r.filePath, s)
	}
	return paths
}

// ReadSheet reads one named sheet into structured format
func (r *DataReader) ReadSheet(sheet string) (*ExcelData, error) {
	r.logger.Debug("[DataReader] Reading sheet %q from %s file: %s", sheet, r.fileType, r.filePath)

	switch r.fileType {
	case "csv":
		return r.readCSVSheet(sheet)
	case "xlsx":
		return r.readExcelSheet(sheet)
	default:
		return nil, errors.LoadError(fmt.Sprintf("unsupported file type: %s", r.fileType), nil)
	}
}

// ReadSheets reads several sheets from one opened workbook
func (r *DataReader) ReadSheets(sheets ...string) ([]*ExcelData, error) {
	if r.fileType == "csv" {
		out := make([]*ExcelData, 0, len(sheets))
		for _, sheet := range sheets {
			data, err := r.ReadSheet(sheet)
			if err != nil {
				return nil, err
			}
			out = append(out, data)
		}
		return out, nil
	}

	f, err := r.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]*ExcelData, 0, len(sheets))
	for _, sheet := range sheets {
		data, err := r.readWorkbookSheet(f, sheet)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (r *DataReader) openWorkbook() (*excelize.File, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("XLSX file %s", r.filePath))
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.LoadError("failed to open Excel file", err)
	}
	r.logger.Debug("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)
	return f, nil
}

func (r *DataReader) readExcelSheet(sheet string) (*ExcelData, error) {
	f, err := r.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return r.readWorkbookSheet(f, sheet)
}

func (r *DataReader) readWorkbookSheet(f *excelize.File, sheet string) (*ExcelData, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx == -1 {
		return nil, errors.LoadError(
			fmt.Sprintf("sheet %q not found (available: %s)", sheet, strings.Join(f.GetSheetList(), ", ")), err)
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.LoadError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	r.logger.Debug("[DataReader] Sheet %q read in %.2fms (%d rows)",
		sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(sheet, rows)
}

func (r *DataReader) readCSVSheet(sheet string) (*ExcelData, error) {
	path := CSVPathForSheet(r.filePath, sheet)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("CSV file %s for sheet %q", path, sheet))
		}
		return nil, errors.LoadError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.LoadError(fmt.Sprintf("failed to read CSV file %s", path), err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(sheet, rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(sheet string, rows [][]string) (*ExcelData, error) {
	if len(rows) == 0 {
		return nil, errors.LoadError(fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RawRowData
	var lines []int
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		rowData := make(RawRowData, len(headers))
		for j, header := range headers {
			if header == "" {
				continue
			}
			if j < len(row) {
				rowData[header] = strings.TrimSpace(row[j])
			} else {
				rowData[header] = ""
			}
		}
		dataRows = append(dataRows, rowData)
		lines = append(lines, i+1)
	}

	r.logger.Debug("[DataReader] Sheet %q processed (%d columns, %d rows)", sheet, len(headers), len(dataRows))

	return &ExcelData{
		Sheet:   sheet,
		Headers: headers,
		Rows:    dataRows,
		Lines:   lines,
	}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Line returns the source line of data row i, assuming no gaps when unknown
func (d *ExcelData) Line(i int) int {
	if i < len(d.Lines) {
		return d.Lines[i]
	}
	return i + 2
}

// FindColumn returns the header matching name case-insensitively
func (d *ExcelData) FindColumn(name string) (string, bool) {
	for _, header := range d.Headers {
		if strings.EqualFold(header, strings.TrimSpace(name)) {
			return header, true
		}
	}
	return "", false
}
