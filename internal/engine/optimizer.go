package engine

import (
	"sort"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PaneCut/internal/model"
)

// Optimizer runs the multi-sheet greedy packing.
//
// A run owns its open sheets exclusively. Runs on the same Optimizer must not
// overlap; concurrent requests each use their own Optimizer.
type Optimizer struct {
	Stocks   []model.StockSize
	Settings model.Settings

	sheets []*Sheet
}

func New(stocks []model.StockSize, settings model.Settings) *Optimizer {
	return &Optimizer{Stocks: stocks, Settings: settings}
}

// unit is a single part instance after quantity expansion.
type unit struct {
	code string
	w, h int
}

func (u unit) area() int64 {
	return int64(u.w) * int64(u.h)
}

// Run places every requested part and returns the opened sheets with a
// summary. Any failure aborts the whole run and returns an empty Result.
func (o *Optimizer) Run(parts []model.PartRequest) (model.Result, error) {
	o.sheets = nil

	if err := o.Settings.Validate(); err != nil {
		return model.Result{}, &Error{Kind: KindInvalidInput, Detail: err.Error()}
	}
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return model.Result{}, &Error{
				Kind:   KindInvalidInput,
				Code:   p.Code,
				Width:  p.Width,
				Height: p.Height,
				Detail: err.Error(),
			}
		}
	}

	units := expand(parts)

	// Largest first; equal areas keep their input order.
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].area() > units[j].area()
	})

	for _, u := range units {
		if o.placeOnExisting(u) {
			continue
		}
		sheet, err := o.openBestSheet(u)
		if err != nil {
			o.sheets = nil
			return model.Result{}, err
		}
		if _, ok := sheet.Place(u.w, u.h, u.code, o.Settings.AllowRotate); !ok {
			o.sheets = nil
			return model.Result{}, &Error{
				Kind:   KindInconsistent,
				Code:   u.code,
				Width:  u.w,
				Height: u.h,
				Label:  sheet.Label(),
			}
		}
	}

	result := o.aggregate()
	klog.V(1).Infof("placed %d parts on %d sheets, waste %.2f%%",
		len(units), result.Summary.SheetCount, result.Summary.WastePct)
	return result, nil
}

// Sheets returns the sheets opened by the last run, in opening order.
func (o *Optimizer) Sheets() []*Sheet {
	return o.sheets
}

// expand turns each demand line into Quantity unit parts. A quantity below
// one still yields a single part.
func expand(parts []model.PartRequest) []unit {
	var units []unit
	for _, p := range parts {
		qty := max(1, p.Quantity)
		for i := 0; i < qty; i++ {
			units = append(units, unit{code: p.Code, w: p.Width, h: p.Height})
		}
	}
	return units
}

// placeOnExisting tries the open sheets in the order they were opened and
// stops at the first one that accepts the part.
func (o *Optimizer) placeOnExisting(u unit) bool {
	for _, s := range o.sheets {
		if _, ok := s.Place(u.w, u.h, u.code, o.Settings.AllowRotate); ok {
			return true
		}
	}
	return false
}

// openBestSheet opens the smallest stock size that can hold the part on a
// fresh sheet. Equal areas are resolved by catalog order.
func (o *Optimizer) openBestSheet(u unit) (*Sheet, error) {
	kerf := o.Settings.Kerf
	margin := o.Settings.Margin

	bestIdx := -1
	for i, ss := range o.Stocks {
		fits := fitsWithin(u.w, kerf, margin, ss.Width) && fitsWithin(u.h, kerf, margin, ss.Height)
		fitsRotated := o.Settings.AllowRotate &&
			fitsWithin(u.w, kerf, margin, ss.Height) && fitsWithin(u.h, kerf, margin, ss.Width)
		if !fits && !fitsRotated {
			continue
		}
		if bestIdx < 0 || ss.Area() < o.Stocks[bestIdx].Area() {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, &Error{Kind: KindUnplaceable, Code: u.code, Width: u.w, Height: u.h}
	}

	stock := o.Stocks[bestIdx]
	sheet, err := NewSheet(stock, kerf, margin)
	if err != nil {
		return nil, err
	}
	o.sheets = append(o.sheets, sheet)
	klog.V(2).Infof("opened sheet %d %q (%dx%d) for part %s %dx%d",
		len(o.sheets), stock.Label, stock.Width, stock.Height, u.code, u.w, u.h)
	return sheet, nil
}

// fitsWithin reports whether part + kerf + 2*margin <= limit. It subtracts
// from limit instead of summing, so oversized inputs cannot wrap around.
func fitsWithin(part, kerf, margin, limit int) bool {
	rem := limit - part
	if rem < kerf {
		return false
	}
	rem -= kerf
	return margin <= rem/2
}

// aggregate sums the sheet areas into the run summary. Used area counts the
// requested part sizes only, so kerf shows up as waste.
func (o *Optimizer) aggregate() model.Result {
	result := model.Result{Sheets: make([]model.SheetLayout, 0, len(o.sheets))}

	var totSheet, totUsed int64
	for _, s := range o.sheets {
		totSheet += s.TotalArea()
		totUsed += s.UsedAreaReal()
		result.Sheets = append(result.Sheets, s.Layout())
	}
	waste := totSheet - totUsed
	wastePct := 0.0
	if totSheet > 0 {
		wastePct = model.Round(100*float64(waste)/float64(totSheet), 2)
	}

	result.Summary = model.Summary{
		SheetCount:     len(o.sheets),
		TotalSheetArea: totSheet,
		TotalUsedArea:  totUsed,
		WasteArea:      waste,
		WastePct:       wastePct,
		Kerf:           o.Settings.Kerf,
		Margin:         o.Settings.Margin,
		AllowRotate:    o.Settings.AllowRotate,
	}
	return result
}
