package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/piwi3910/PaneCut/internal/model"
)

// svgBorder is the blank frame around the sheet outline, in sheet units.
const svgBorder = 2

// WriteSheetSVG draws one sheet in sheet units: the outline with its label and
// size, then every placement footprint with its caption.
func WriteSheetSVG(w io.Writer, sheet model.SheetLayout) {
	b := svgBorder
	canvas := svg.New(w)
	canvas.Start(sheet.Width+2*b, sheet.Height+2*b)
	canvas.Rect(b, b, sheet.Width, sheet.Height, `fill="none" stroke="black" stroke-width="1"`)
	canvas.Text(b+6, b+18, fmt.Sprintf("%s (%dx%d)", sheet.Label, sheet.Width, sheet.Height), `font-size="14"`)

	for _, p := range sheet.Placements {
		x, y := p.X+b, p.Y+b
		canvas.Rect(x, y, p.W, p.H, `fill="none" stroke="blue" stroke-width="1"`)
		canvas.Text(x+4, y+16, p.Caption(), `font-size="12"`)
	}
	canvas.End()
}

// SheetSVG returns the SVG document for one sheet.
func SheetSVG(sheet model.SheetLayout) string {
	var buf bytes.Buffer
	WriteSheetSVG(&buf, sheet)
	return buf.String()
}

// SVGFileName is the download name of the n-th sheet, counting from 1.
func SVGFileName(n int) string {
	return fmt.Sprintf("cutplan_sheet_%d.svg", n)
}

// ExportSVGs writes one SVG per sheet into dir and returns the paths written.
func ExportSVGs(dir string, result model.Result) ([]string, error) {
	if len(result.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(result.Sheets))
	for i, sheet := range result.Sheets {
		path := filepath.Join(dir, SVGFileName(i+1))
		err := writeFile(path, func(w io.Writer) error {
			WriteSheetSVG(w, sheet)
			return nil
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
