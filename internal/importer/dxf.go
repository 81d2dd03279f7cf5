package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PaneCut/internal/model"
)

// rectTolerance is how far a vertex may sit from its bounding-box corner, in mm.
const rectTolerance = 0.01

// ImportDXF imports parts from a DXF file. Each LWPOLYLINE that outlines an
// axis-aligned rectangle becomes one part of quantity 1. Identical sizes are
// merged into a single line with a higher quantity.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	type size struct{ w, h int }
	counts := make(map[size]int)
	var order []size
	skipped := make(map[string]int)

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			w, h, ok := rectangleSize(e.Vertices, e.Bulges)
			if !ok {
				skipped["non-rectangular LWPOLYLINE"]++
				continue
			}
			rw, rh := int(math.Round(w)), int(math.Round(h))
			if rw <= 0 || rh <= 0 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Skipped degenerate rectangle (%.2f x %.2f mm)", w, h))
				continue
			}
			if float64(rw) != w || float64(rh) != h {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Rectangle %.2f x %.2f mm rounded to %dx%d", w, h, rw, rh))
			}
			s := size{rw, rh}
			if counts[s] == 0 {
				order = append(order, s)
			}
			counts[s]++
		case *entity.Line:
			skipped["LINE"]++
		case *entity.Arc:
			skipped["ARC"]++
		case *entity.Circle:
			skipped["CIRCLE"]++
		default:
			// Text, dimensions and the like carry no outline.
		}
	}

	kinds := make([]string, 0, len(skipped))
	for k := range skipped {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d %s entities", skipped[k], k))
	}

	if len(order) == 0 {
		result.Errors = append(result.Errors, "No rectangular outlines found in DXF file")
		return result
	}

	for i, s := range order {
		result.Parts = append(result.Parts, model.PartRequest{
			Code:     fmt.Sprintf("DXF%d", i+1),
			Width:    s.w,
			Height:   s.h,
			Quantity: counts[s],
		})
	}
	return result
}

// rectangleSize reports the width and height of a polyline that traces an
// axis-aligned rectangle. A repeated closing vertex is ignored. Any bulge
// makes the outline curved and therefore not a rectangle.
func rectangleSize(vertices [][]float64, bulges []float64) (float64, float64, bool) {
	for _, b := range bulges {
		if math.Abs(b) > 1e-9 {
			return 0, 0, false
		}
	}

	pts := vertices
	if n := len(pts); n == 5 && near(pts[0], pts[4]) {
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return 0, 0, false
	}
	for _, p := range pts {
		if len(p) < 2 {
			return 0, 0, false
		}
	}

	minX, maxX := pts[0][0], pts[0][0]
	minY, maxY := pts[0][1], pts[0][1]
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}

	seen := make(map[string]bool, 4)
	for _, p := range pts {
		cx, okX := snap(p[0], minX, maxX)
		cy, okY := snap(p[1], minY, maxY)
		if !okX || !okY {
			return 0, 0, false
		}
		seen[cx+cy] = true
	}
	if len(seen) != 4 {
		return 0, 0, false
	}

	// Consecutive corners must share an edge, not a diagonal.
	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		if math.Abs(a[0]-b[0]) > rectTolerance && math.Abs(a[1]-b[1]) > rectTolerance {
			return 0, 0, false
		}
	}

	return roundMM(maxX - minX), roundMM(maxY - minY), true
}

// snap names which bound v sits on, if any.
func snap(v, lo, hi float64) (string, bool) {
	switch {
	case math.Abs(v-lo) <= rectTolerance:
		return "lo", true
	case math.Abs(v-hi) <= rectTolerance:
		return "hi", true
	default:
		return "", false
	}
}

func near(a, b []float64) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	return math.Abs(a[0]-b[0]) <= rectTolerance && math.Abs(a[1]-b[1]) <= rectTolerance
}

// roundMM strips floating point noise below a hundredth of a millimetre.
func roundMM(v float64) float64 {
	return model.Round(v, 2)
}

