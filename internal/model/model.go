package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Rect is an axis-aligned rectangle in whole millimetres.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Area returns the rectangle area in square mm.
func (r Rect) Area() int64 {
	return int64(r.W) * int64(r.H)
}

// Contains reports whether b lies entirely inside r. Bounds are inclusive,
// so equal rectangles contain each other.
func (r Rect) Contains(b Rect) bool {
	return b.X >= r.X && b.Y >= r.Y &&
		b.X+b.W <= r.X+r.W &&
		b.Y+b.H <= r.Y+r.H
}

// Intersects returns true if the two rectangles overlap (not just touch).
func (r Rect) Intersects(b Rect) bool {
	return r.X < b.X+b.W && r.X+r.W > b.X &&
		r.Y < b.Y+b.H && r.Y+r.H > b.Y
}

// Placement is a footprint placed on a sheet. W and H include the kerf and
// any rotation; RawW and RawH are the dimensions the part was requested with.
type Placement struct {
	Rect
	Code    string `json:"code"`
	RawW    int    `json:"raw_w"`
	RawH    int    `json:"raw_h"`
	Rotated bool   `json:"rotated"`
}

// RealArea returns the requested (unkerfed) area of the part.
func (p Placement) RealArea() int64 {
	return int64(p.RawW) * int64(p.RawH)
}

// Caption returns the display caption used by the exporters.
func (p Placement) Caption() string {
	c := fmt.Sprintf("%s %dx%d", p.Code, p.RawW, p.RawH)
	if p.Rotated {
		c += " (R)"
	}
	return c
}

// StockSize is a sheet size the catalog can open.
type StockSize struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// Area returns the outer sheet area in square mm.
func (s StockSize) Area() int64 {
	return int64(s.Width) * int64(s.Height)
}

// Validate checks that the stock size has positive dimensions.
func (s StockSize) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("stock %q: width and height must be positive, got %dx%d", s.Label, s.Width, s.Height)
	}
	return nil
}

// PartRequest is one demand line: Quantity parts of Width x Height.
type PartRequest struct {
	Code     string `json:"code"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Quantity int    `json:"quantity"`
}

// Area returns the requested area of a single part.
func (p PartRequest) Area() int64 {
	return int64(p.Width) * int64(p.Height)
}

// Validate checks the demand line before it is handed to the engine.
func (p PartRequest) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("part code must not be empty")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("part %s: width and height must be positive, got %dx%d", p.Code, p.Width, p.Height)
	}
	return nil
}

// Settings holds the cutting parameters of a run.
type Settings struct {
	Kerf        int  `json:"kerf"`         // Blade width allowance in mm
	Margin      int  `json:"margin"`       // Unusable border on every edge in mm
	AllowRotate bool `json:"allow_rotate"` // Whether parts may be turned 90 degrees
}

func DefaultSettings() Settings {
	return Settings{
		Kerf:        3,
		Margin:      10,
		AllowRotate: true,
	}
}

// Validate rejects negative kerf or margin.
func (s Settings) Validate() error {
	if s.Kerf < 0 {
		return fmt.Errorf("kerf must not be negative, got %d", s.Kerf)
	}
	if s.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", s.Margin)
	}
	return nil
}

// SheetLayout is one opened stock sheet with its placements, in placement order.
type SheetLayout struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Label      string      `json:"label"`
	Kerf       int         `json:"kerf"`
	Margin     int         `json:"margin"`
	Placements []Placement `json:"placements"`
	Free       []Rect      `json:"free,omitempty"` // Remaining free rectangles, may overlap
}

// TotalArea returns the outer sheet area.
func (sl SheetLayout) TotalArea() int64 {
	return int64(sl.Width) * int64(sl.Height)
}

// UsedArea returns the sum of the requested part areas. Kerf is not counted.
func (sl SheetLayout) UsedArea() int64 {
	var total int64
	for _, p := range sl.Placements {
		total += p.RealArea()
	}
	return total
}

// Efficiency returns the usage percentage.
func (sl SheetLayout) Efficiency() float64 {
	ta := sl.TotalArea()
	if ta == 0 {
		return 0
	}
	return float64(sl.UsedArea()) / float64(ta) * 100.0
}

// Summary aggregates a run's totals. Areas are in square mm.
type Summary struct {
	SheetCount     int     `json:"sheet_count"`
	TotalSheetArea int64   `json:"total_sheet_area"`
	TotalUsedArea  int64   `json:"total_used_area"`
	WasteArea      int64   `json:"waste_area"`
	WastePct       float64 `json:"waste_pct"`
	Kerf           int     `json:"kerf"`
	Margin         int     `json:"margin"`
	AllowRotate    bool    `json:"allow_rotate"`
}

// SquareMetres converts an area in square mm to m², rounded to 3 decimals.
func SquareMetres(area int64) float64 {
	return Round(float64(area)/1_000_000, 3)
}

func (s Summary) TotalSheetM2() float64 { return SquareMetres(s.TotalSheetArea) }
func (s Summary) TotalUsedM2() float64  { return SquareMetres(s.TotalUsedArea) }
func (s Summary) WasteM2() float64      { return SquareMetres(s.WasteArea) }

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Result holds the full solution of a run.
type Result struct {
	Sheets  []SheetLayout `json:"sheets"`
	Summary Summary       `json:"summary"`
}

// PlacementCount returns the number of parts placed across all sheets.
func (r Result) PlacementCount() int {
	total := 0
	for _, s := range r.Sheets {
		total += len(s.Placements)
	}
	return total
}

// Project ties a run's inputs and output together for save/load.
type Project struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Stocks   []StockSize   `json:"stocks"`
	Parts    []PartRequest `json:"parts"`
	Settings Settings      `json:"settings"`
	Result   *Result       `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		ID:       uuid.New().String()[:8],
		Name:     "Untitled",
		Stocks:   []StockSize{},
		Parts:    []PartRequest{},
		Settings: DefaultSettings(),
	}
}
