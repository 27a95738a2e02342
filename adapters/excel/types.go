package excel

// RawRowData represents a row of raw sheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents one sheet (or CSV file) as headers plus rows
type ExcelData struct {
	Sheet   string       // Sheet name the data came from
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
	Lines   []int        // 1-based source line of each data row
}

// SheetData is a sheet to be written to a workbook
type SheetData struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}
