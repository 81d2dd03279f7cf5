package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/maruel/natural"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PaneCut/internal/model"
)

// Worksheet names of the cut list workbook.
const (
	CutListSheet = "Cut List"
	SummarySheet = "Summary"
	OffcutSheet  = "Offcuts"
)

// CutListRow is one placed part in the cut list.
type CutListRow struct {
	Sheet      int
	SheetLabel string
	Code       string
	Width      int
	Height     int
	X          int
	Y          int
	Rotated    bool
}

// CutListRows lists every placement ordered by sheet, then by part code in
// natural order so that P2 comes before P10. Equal codes keep placement order.
func CutListRows(result model.Result) []CutListRow {
	var rows []CutListRow
	for i, sheet := range result.Sheets {
		start := len(rows)
		for _, p := range sheet.Placements {
			rows = append(rows, CutListRow{
				Sheet:      i + 1,
				SheetLabel: sheet.Label,
				Code:       p.Code,
				Width:      p.RawW,
				Height:     p.RawH,
				X:          p.X,
				Y:          p.Y,
				Rotated:    p.Rotated,
			})
		}
		block := rows[start:]
		sort.SliceStable(block, func(a, b int) bool {
			return natural.Less(block[a].Code, block[b].Code)
		})
	}
	return rows
}

// WriteCutList writes the cut list workbook to w.
func WriteCutList(w io.Writer, result model.Result) error {
	if len(result.Sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), CutListSheet); err != nil {
		return fmt.Errorf("cannot rename worksheet: %w", err)
	}
	for _, name := range []string{SummarySheet, OffcutSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("cannot add worksheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("cannot create header style: %w", err)
	}

	if err := writeCutListSheet(f, result, bold); err != nil {
		return err
	}
	if err := writeSummarySheet(f, result, bold); err != nil {
		return err
	}
	if err := writeOffcutSheet(f, result, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("cannot write workbook: %w", err)
	}
	return nil
}

// ExportCutList writes the cut list workbook to path.
func ExportCutList(path string, result model.Result) error {
	return writeFile(path, func(w io.Writer) error { return WriteCutList(w, result) })
}

func writeCutListSheet(f *excelize.File, result model.Result, headerStyle int) error {
	header := []interface{}{"Sheet", "Sheet Label", "Code", "Width (mm)", "Height (mm)", "X (mm)", "Y (mm)", "Rotated"}
	if err := writeHeader(f, CutListSheet, header, headerStyle); err != nil {
		return err
	}

	for i, r := range CutListRows(result) {
		rotated := "no"
		if r.Rotated {
			rotated = "yes"
		}
		values := []interface{}{r.Sheet, r.SheetLabel, r.Code, r.Width, r.Height, r.X, r.Y, rotated}
		if err := setRow(f, CutListSheet, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(CutListSheet, "A", "H", 14)
}

func writeSummarySheet(f *excelize.File, result model.Result, headerStyle int) error {
	if err := writeHeader(f, SummarySheet, []interface{}{"Metric", "Value"}, headerStyle); err != nil {
		return err
	}

	sum := result.Summary
	rows := [][]interface{}{
		{"Sheets used", sum.SheetCount},
		{"Parts placed", result.PlacementCount()},
		{"Total sheet area (m²)", sum.TotalSheetM2()},
		{"Total part area (m²)", sum.TotalUsedM2()},
		{"Waste area (m²)", sum.WasteM2()},
		{"Waste (%)", sum.WastePct},
		{"Kerf (mm)", sum.Kerf},
		{"Margin (mm)", sum.Margin},
		{"Rotation allowed", sum.AllowRotate},
	}
	for i, values := range rows {
		if err := setRow(f, SummarySheet, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}

func writeOffcutSheet(f *excelize.File, result model.Result, headerStyle int) error {
	header := []interface{}{"Sheet", "Sheet Label", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)"}
	if err := writeHeader(f, OffcutSheet, header, headerStyle); err != nil {
		return err
	}

	for i, oc := range model.DetectAllOffcuts(result, model.MinOffcutDimension) {
		values := []interface{}{oc.SheetIndex + 1, oc.SheetLabel, oc.X, oc.Y, oc.W, oc.H}
		if err := setRow(f, OffcutSheet, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(OffcutSheet, "A", "F", 14)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("cannot write %s row %d: %w", sheet, row, err)
	}
	return nil
}
