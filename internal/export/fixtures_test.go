package export

import (
	"github.com/piwi3910/PaneCut/internal/model"
)

// buildTestResult creates a small two-sheet result with kerf 3 and margin 10.
func buildTestResult() model.Result {
	sheets := []model.SheetLayout{
		{
			Width: 2440, Height: 1220, Label: "Float 2440x1220", Kerf: 3, Margin: 10,
			Placements: []model.Placement{
				{Rect: model.Rect{X: 10, Y: 10, W: 603, H: 403}, Code: "P10", RawW: 600, RawH: 400},
				{Rect: model.Rect{X: 613, Y: 10, W: 503, H: 303}, Code: "P2", RawW: 500, RawH: 300},
				{Rect: model.Rect{X: 10, Y: 413, W: 303, H: 403}, Code: "Shelf", RawW: 400, RawH: 300, Rotated: true},
			},
			Free: []model.Rect{
				{X: 1116, Y: 10, W: 1314, H: 1200},
				{X: 313, Y: 413, W: 803, H: 797},
				{X: 10, Y: 816, W: 303, H: 394},
				{X: 613, Y: 313, W: 503, H: 100},
			},
		},
		{
			Width: 1200, Height: 600, Label: "Laminated 1200x600", Kerf: 3, Margin: 10,
			Placements: []model.Placement{
				{Rect: model.Rect{X: 10, Y: 10, W: 803, H: 503}, Code: "Back", RawW: 800, RawH: 500},
			},
			Free: []model.Rect{
				{X: 813, Y: 10, W: 377, H: 580},
				{X: 10, Y: 513, W: 803, H: 77},
			},
		},
	}

	var total, used int64
	for _, s := range sheets {
		total += s.TotalArea()
		used += s.UsedArea()
	}
	return model.Result{
		Sheets: sheets,
		Summary: model.Summary{
			SheetCount:     len(sheets),
			TotalSheetArea: total,
			TotalUsedArea:  used,
			WasteArea:      total - used,
			WastePct:       model.Round(100*float64(total-used)/float64(total), 2),
			Kerf:           3,
			Margin:         10,
			AllowRotate:    true,
		},
	}
}

// manyPartsResult fills a single large sheet with count small placements.
func manyPartsResult(count int) model.Result {
	sheet := model.SheetLayout{Width: 6000, Height: 3210, Label: "Jumbo", Kerf: 3, Margin: 10}
	perRow := (sheet.Width - 2*sheet.Margin) / 103
	for i := 0; i < count; i++ {
		sheet.Placements = append(sheet.Placements, model.Placement{
			Rect: model.Rect{X: 10 + (i%perRow)*103, Y: 10 + (i/perRow)*53, W: 103, H: 53},
			Code: "P" + string(rune('A'+i%26)),
			RawW: 100,
			RawH: 50,
		})
	}
	return model.Result{
		Sheets:  []model.SheetLayout{sheet},
		Summary: model.Summary{SheetCount: 1, TotalSheetArea: sheet.TotalArea(), TotalUsedArea: sheet.UsedArea()},
	}
}
