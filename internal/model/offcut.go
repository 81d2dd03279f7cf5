package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut represents a usable rectangular remnant left over after cutting.
type Offcut struct {
	ID         string `json:"id"`
	SheetLabel string `json:"sheet_label"` // Which sheet it came from
	SheetIndex int    `json:"sheet_index"` // Index of the source sheet in the result
	Rect
}

// ToStockSize converts an offcut into a stock size for reuse in a later run.
func (o Offcut) ToStockSize() StockSize {
	return StockSize{
		Width:  o.W,
		Height: o.H,
		Label:  "Offcut " + o.SheetLabel,
	}
}

// MinOffcutDimension is the minimum width and height (in mm) for a remnant
// to be considered a usable offcut. Remnants smaller than this are waste.
const MinOffcutDimension = 100

// DetectOffcuts picks reusable remnants out of a sheet's free rectangles.
// The free set may contain overlapping rectangles, so candidates are taken
// largest first and any candidate overlapping an already chosen offcut is
// skipped. minDim <= 0 selects MinOffcutDimension.
func DetectOffcuts(sl SheetLayout, sheetIndex int, minDim int) []Offcut {
	if minDim <= 0 {
		minDim = MinOffcutDimension
	}

	candidates := make([]Rect, 0, len(sl.Free))
	for _, r := range sl.Free {
		if r.W >= minDim && r.H >= minDim {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Area() > candidates[j].Area()
	})

	var offcuts []Offcut
	for _, c := range candidates {
		overlaps := false
		for _, o := range offcuts {
			if o.Rect.Intersects(c) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		offcuts = append(offcuts, Offcut{
			ID:         uuid.New().String()[:8],
			SheetLabel: sl.Label,
			SheetIndex: sheetIndex,
			Rect:       c,
		})
	}
	return offcuts
}

// DetectAllOffcuts finds offcuts across all sheets in a result.
func DetectAllOffcuts(result Result, minDim int) []Offcut {
	var all []Offcut
	for i, sheet := range result.Sheets {
		all = append(all, DetectOffcuts(sheet, i, minDim)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts in square mm.
func TotalOffcutArea(offcuts []Offcut) int64 {
	var total int64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
