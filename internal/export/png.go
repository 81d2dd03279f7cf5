package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/PaneCut/internal/model"
)

// DefaultPreviewSize is the longest edge of a PNG preview in pixels.
const DefaultPreviewSize = 800

// previewSupersample renders at this multiple of the target size before
// downscaling, which smooths the thin outlines.
const previewSupersample = 2

var (
	previewBackground = color.NRGBA{R: 220, G: 235, B: 245, A: 255}
	previewMargin     = color.NRGBA{R: 255, G: 220, B: 220, A: 255}
	previewOutline    = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

// RenderSheetImage rasterises one sheet so that its longest edge is maxSize
// pixels. Placements keep the colors used in the PDF report.
func RenderSheetImage(sheet model.SheetLayout, maxSize int) (*image.NRGBA, error) {
	if sheet.Width <= 0 || sheet.Height <= 0 {
		return nil, fmt.Errorf("sheet %q has no area", sheet.Label)
	}
	if maxSize <= 0 {
		maxSize = DefaultPreviewSize
	}

	target := maxSize * previewSupersample
	scale := math.Min(float64(target)/float64(sheet.Width), float64(target)/float64(sheet.Height))
	px := func(v int) int { return int(math.Round(float64(v) * scale)) }

	img := imaging.New(max(1, px(sheet.Width)), max(1, px(sheet.Height)), previewMargin)

	m := sheet.Margin
	interior := image.Rect(px(m), px(m), px(sheet.Width-m), px(sheet.Height-m))
	draw.Draw(img, interior, image.NewUniform(previewBackground), image.Point{}, draw.Src)

	for i, p := range sheet.Placements {
		c := partColors[i%len(partColors)]
		r := image.Rect(px(p.X), px(p.Y), px(p.X+p.W), px(p.Y+p.H))
		fill := color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
		draw.Draw(img, r, image.NewUniform(fill), image.Point{}, draw.Src)
		strokeRect(img, r, previewOutline)
	}
	strokeRect(img, img.Bounds(), previewOutline)

	return imaging.Fit(img, maxSize, maxSize, imaging.Lanczos), nil
}

// strokeRect draws a one pixel outline just inside r.
func strokeRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

// WriteSheetPNG encodes the preview of one sheet as PNG.
func WriteSheetPNG(w io.Writer, sheet model.SheetLayout, maxSize int) error {
	img, err := RenderSheetImage(sheet, maxSize)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, imaging.PNG)
}

// PNGFileName is the preview name of the n-th sheet, counting from 1.
func PNGFileName(n int) string {
	return fmt.Sprintf("cutplan_sheet_%d.png", n)
}

// ExportPNGs writes one PNG preview per sheet into dir and returns the paths written.
func ExportPNGs(dir string, result model.Result, maxSize int) ([]string, error) {
	if len(result.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(result.Sheets))
	for i, sheet := range result.Sheets {
		path := filepath.Join(dir, PNGFileName(i+1))
		if err := writeFile(path, func(w io.Writer) error { return WriteSheetPNG(w, sheet, maxSize) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
