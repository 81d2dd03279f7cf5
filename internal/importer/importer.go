// Package importer provides CSV, Excel and DXF import for part lists and
// stock catalogs. It supports automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PaneCut/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Parts    []model.PartRequest
	Stocks   []model.StockSize
	Errors   []string
	Warnings []string
}

// Err folds the collected error messages into one error, or nil.
func (r ImportResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Code     int
	Label    int
	Width    int
	Height   int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"code":     {"code", "part code", "part", "piece", "item", "id"},
	"label":    {"label", "name", "sheet", "stock", "description", "desc"},
	"width":    {"width", "w", "length", "len", "x"},
	"height":   {"height", "h", "depth", "d", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping with -1 for
// every role it did not find. The boolean reports whether any header cell was
// recognised.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Code: -1, Label: -1, Width: -1, Height: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "code":
					if mapping.Code == -1 {
						mapping.Code = i
					}
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "height":
					if mapping.Height == -1 {
						mapping.Height = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}
	return mapping, isHeader
}

// Positional layouts used when the first row is not a header. Parts follow
// code, width, height, quantity; stocks follow width, height, label.
var (
	partPositions  = ColumnMapping{Code: 0, Label: -1, Width: 1, Height: 2, Quantity: 3}
	stockPositions = ColumnMapping{Code: -1, Label: 2, Width: 0, Height: 1, Quantity: -1}
)

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDimension parses a whole-millimetre value. Decimal values are rounded
// and reported through the returned warning.
func parseDimension(s string) (int, string, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, "", nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, "", err
	}
	rounded := int(math.Round(f))
	if float64(rounded) == f {
		return rounded, "", nil
	}
	return rounded, fmt.Sprintf("'%s' rounded to %d mm", s, rounded), nil
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parsePartRow extracts a PartRequest from a row using the given column mapping.
// Returns the part, any error message, and any warning messages.
func parsePartRow(row []string, mapping ColumnMapping, rowLabel string, partCount int) (model.PartRequest, string, []string) {
	var warnings []string

	codeCol := mapping.Code
	if codeCol == -1 {
		codeCol = mapping.Label
	}
	code := getCell(row, codeCol)
	if code == "" {
		code = fmt.Sprintf("P%d", partCount+1)
	}

	dims := make([]int, 3)
	for i, col := range []struct {
		name string
		idx  int
	}{{"width", mapping.Width}, {"height", mapping.Height}, {"quantity", mapping.Quantity}} {
		raw := getCell(row, col.idx)
		if raw == "" {
			return model.PartRequest{}, fmt.Sprintf("%s: Missing %s value", rowLabel, col.name), nil
		}
		v, warn, err := parseDimension(raw)
		if err != nil {
			return model.PartRequest{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, raw), nil
		}
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s %s", rowLabel, col.name, warn))
		}
		dims[i] = v
	}

	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return model.PartRequest{}, fmt.Sprintf("%s: Width, height, and quantity must be positive", rowLabel), nil
	}

	return model.PartRequest{Code: code, Width: dims[0], Height: dims[1], Quantity: dims[2]}, "", warnings
}

// parseStockRow extracts a StockSize from a row using the given column mapping.
func parseStockRow(row []string, mapping ColumnMapping, rowLabel string, stockCount int) (model.StockSize, string, []string) {
	var warnings []string

	dims := make([]int, 2)
	for i, col := range []struct {
		name string
		idx  int
	}{{"width", mapping.Width}, {"height", mapping.Height}} {
		raw := getCell(row, col.idx)
		if raw == "" {
			return model.StockSize{}, fmt.Sprintf("%s: Missing %s value", rowLabel, col.name), nil
		}
		v, warn, err := parseDimension(raw)
		if err != nil {
			return model.StockSize{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, raw), nil
		}
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s %s", rowLabel, col.name, warn))
		}
		dims[i] = v
	}

	if dims[0] <= 0 || dims[1] <= 0 {
		return model.StockSize{}, fmt.Sprintf("%s: Width and height must be positive", rowLabel), nil
	}

	labelCol := mapping.Label
	if labelCol == -1 {
		labelCol = mapping.Code
	}
	label := getCell(row, labelCol)
	if label == "" {
		label = fmt.Sprintf("Sheet %d", stockCount+1)
	}

	return model.StockSize{Width: dims[0], Height: dims[1], Label: label}, "", warnings
}

// resolveMapping detects the header of rows and returns the mapping plus the
// index of the first data row. required lists the roles a header must name.
func resolveMapping(rows [][]string, fallback ColumnMapping, required map[string]func(ColumnMapping) int, result *ImportResult) (ColumnMapping, int, bool) {
	mapping, hasHeader := DetectColumns(rows[0])
	if hasHeader {
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for _, name := range []string{"Width", "Height", "Quantity"} {
			get, ok := required[name]
			if ok && get(mapping) == -1 {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return mapping, 0, false
		}
		return mapping, 1, true
	}

	// No recognised header: if the first dimension column is not numeric the
	// row is an unknown header, skip it but keep the positional mapping.
	startRow := 0
	if _, _, err := parseDimension(getCell(rows[0], fallback.Width)); err != nil {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}
	return fallback, startRow, true
}

var (
	partRequired = map[string]func(ColumnMapping) int{
		"Width":    func(m ColumnMapping) int { return m.Width },
		"Height":   func(m ColumnMapping) int { return m.Height },
		"Quantity": func(m ColumnMapping) int { return m.Quantity },
	}
	stockRequired = map[string]func(ColumnMapping) int{
		"Width":  func(m ColumnMapping) int { return m.Width },
		"Height": func(m ColumnMapping) int { return m.Height },
	}
)

// partsFromRows is the shared part import logic for CSV and Excel data.
func partsFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, startRow, ok := resolveMapping(rows, partPositions, partRequired, &result)
	if !ok {
		return result
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		part, errMsg, warnings := parsePartRow(row, mapping, rowLabel, len(result.Parts))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Parts = append(result.Parts, part)
	}
	return result
}

// stocksFromRows is the shared stock import logic for CSV and Excel data.
func stocksFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, startRow, ok := resolveMapping(rows, stockPositions, stockRequired, &result)
	if !ok {
		return result
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		stock, errMsg, warnings := parseStockRow(row, mapping, rowLabel, len(result.Stocks))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Stocks = append(result.Stocks, stock)
	}
	return result
}

// readCSVRows detects the delimiter of data and returns all records.
func readCSVRows(data []byte) ([][]string, []string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}
	return records, warnings, nil
}

// readExcelRows returns the rows of the first worksheet.
func readExcelRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read Excel data: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	return rows, nil
}

func failed(msg string) ImportResult {
	return ImportResult{Errors: []string{msg}}
}

// ImportPartsCSVData imports a part list from CSV content.
func ImportPartsCSVData(data []byte) ImportResult {
	rows, warnings, err := readCSVRows(data)
	if err != nil {
		return failed(err.Error())
	}
	return partsFromRows(rows, "Line", warnings)
}

// ImportPartsCSV imports a part list from a CSV file.
func ImportPartsCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(fmt.Sprintf("Cannot open file: %v", err))
	}
	return ImportPartsCSVData(data)
}

// ImportStocksCSVData imports a stock catalog from CSV content.
func ImportStocksCSVData(data []byte) ImportResult {
	rows, warnings, err := readCSVRows(data)
	if err != nil {
		return failed(err.Error())
	}
	return stocksFromRows(rows, "Line", warnings)
}

// ImportStocksCSV imports a stock catalog from a CSV file.
func ImportStocksCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(fmt.Sprintf("Cannot open file: %v", err))
	}
	return ImportStocksCSVData(data)
}

// ImportPartsExcelReader imports a part list from an Excel stream, e.g. an upload.
func ImportPartsExcelReader(r io.Reader) ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return failed(fmt.Sprintf("Cannot open Excel file: %v", err))
	}
	defer f.Close()

	rows, err := readExcelRows(f)
	if err != nil {
		return failed(err.Error())
	}
	return partsFromRows(rows, "Row", nil)
}

// ImportPartsExcel imports a part list from the first sheet of an Excel file.
func ImportPartsExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return failed(fmt.Sprintf("Cannot open Excel file: %v", err))
	}
	defer f.Close()

	rows, err := readExcelRows(f)
	if err != nil {
		return failed(err.Error())
	}
	return partsFromRows(rows, "Row", nil)
}

// ImportStocksExcel imports a stock catalog from the first sheet of an Excel file.
func ImportStocksExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return failed(fmt.Sprintf("Cannot open Excel file: %v", err))
	}
	defer f.Close()

	rows, err := readExcelRows(f)
	if err != nil {
		return failed(err.Error())
	}
	return stocksFromRows(rows, "Row", nil)
}

// ImportPartsFile picks the part importer by file extension.
func ImportPartsFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportPartsExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportPartsCSV(path)
	}
}

// ImportStocksFile picks the stock importer by file extension.
func ImportStocksFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportStocksExcel(path)
	default:
		return ImportStocksCSV(path)
	}
}
