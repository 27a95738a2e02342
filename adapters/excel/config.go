package excel

// ExcelConfig holds configuration for the two-sheet workbook source
type ExcelConfig struct {
	FilePath     string `json:"file_path"`
	ControlSheet string `json:"control_sheet"`
	TestSheet    string `json:"test_sheet"`
}

// DefaultExcelConfig returns the sheet names used by the bidding workbook
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		FilePath:     "datasets/ab_testing.xlsx",
		ControlSheet: "Control Group",
		TestSheet:    "Test Group",
	}
}
