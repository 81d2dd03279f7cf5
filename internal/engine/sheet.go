package engine

import (
	"slices"

	"github.com/piwi3910/PaneCut/internal/model"
)

// Sheet is one physical stock sheet being filled. It tracks the maximal free
// rectangles left inside the margin-inset interior and the placements made so
// far, in placement order.
//
// Free rectangles may overlap each other. After every mutation none of them
// is contained in another one.
type Sheet struct {
	width  int
	height int
	label  string
	kerf   int
	margin int

	free []model.Rect
	used []model.Placement
}

// NewSheet creates an empty sheet from a stock size. It fails when the stock
// has non-positive dimensions or the margin leaves no usable interior.
func NewSheet(stock model.StockSize, kerf, margin int) (*Sheet, error) {
	if stock.Width <= 0 || stock.Height <= 0 {
		return nil, &Error{
			Kind:   KindInvalidSheet,
			Label:  stock.Label,
			Detail: "width and height must be positive",
		}
	}
	if margin > (stock.Width-1)/2 || margin > (stock.Height-1)/2 {
		return nil, &Error{
			Kind:   KindInvalidSheet,
			Label:  stock.Label,
			Detail: "margin leaves no usable interior",
		}
	}
	return &Sheet{
		width:  stock.Width,
		height: stock.Height,
		label:  stock.Label,
		kerf:   kerf,
		margin: margin,
		free:   []model.Rect{{X: margin, Y: margin, W: stock.Width - 2*margin, H: stock.Height - 2*margin}},
	}, nil
}

// orientation tags a footprint candidate.
type orientation int

const (
	normal orientation = iota
	rotated
)

type candidate struct {
	w, h   int
	orient orientation
}

// fit is a scored (candidate, free rectangle) pair.
type fit struct {
	cand      candidate
	freeIndex int
	leftShort int
	leftArea  int64
}

// better reports whether f strictly beats other. Ties are not better, so the
// first pair seen wins.
func (f fit) better(other fit) bool {
	if f.leftShort != other.leftShort {
		return f.leftShort < other.leftShort
	}
	return f.leftArea < other.leftArea
}

// candidates returns the part sizes to try, normal orientation first. A square
// part has no distinct rotated orientation.
func (s *Sheet) candidates(partW, partH int, allowRotate bool) []candidate {
	cands := []candidate{{w: partW, h: partH, orient: normal}}
	if allowRotate && partW != partH {
		cands = append(cands, candidate{w: partH, h: partW, orient: rotated})
	}
	return cands
}

// bestFit scores every candidate against every free rectangle using best
// short side fit, then least leftover area. The fit test subtracts the kerf
// from the free rectangle so huge parts cannot overflow into a fit.
func (s *Sheet) bestFit(cands []candidate) (fit, bool) {
	var best fit
	found := false
	for _, c := range cands {
		for i, fr := range s.free {
			if c.w > fr.W-s.kerf || c.h > fr.H-s.kerf {
				continue
			}
			fw, fh := c.w+s.kerf, c.h+s.kerf
			f := fit{
				cand:      candidate{w: fw, h: fh, orient: c.orient},
				freeIndex: i,
				leftShort: min(fr.W-fw, fr.H-fh),
				leftArea:  fr.Area() - int64(fw)*int64(fh),
			}
			if !found || f.better(best) {
				best = f
				found = true
			}
		}
	}
	return best, found
}

// Place tries to put a partW x partH part on the sheet. It returns false and
// leaves the sheet untouched when no free rectangle can hold it.
func (s *Sheet) Place(partW, partH int, code string, allowRotate bool) (model.Placement, bool) {
	best, ok := s.bestFit(s.candidates(partW, partH, allowRotate))
	if !ok {
		return model.Placement{}, false
	}

	fr := s.free[best.freeIndex]
	use := model.Rect{X: fr.X, Y: fr.Y, W: best.cand.w, H: best.cand.h}
	s.splitAndPrune(best.freeIndex, use)

	p := model.Placement{
		Rect:    use,
		Code:    code,
		RawW:    partW,
		RawH:    partH,
		Rotated: best.cand.orient == rotated,
	}
	s.used = append(s.used, p)
	return p, true
}

// splitAndPrune replaces the free rectangle at freeIndex with the strips left
// around used, then drops contained rectangles. Only the right and bottom
// strips are non-empty while placements are anchored at the free origin.
func (s *Sheet) splitAndPrune(freeIndex int, used model.Rect) {
	fr := s.free[freeIndex]
	frRight := fr.X + fr.W
	frBottom := fr.Y + fr.H
	usedRight := used.X + used.W
	usedBottom := used.Y + used.H

	var leftovers []model.Rect
	if used.X > fr.X {
		leftovers = append(leftovers, model.Rect{X: fr.X, Y: fr.Y, W: used.X - fr.X, H: fr.H})
	}
	if usedRight < frRight {
		leftovers = append(leftovers, model.Rect{X: usedRight, Y: fr.Y, W: frRight - usedRight, H: fr.H})
	}

	// Top and bottom strips span only the columns the placement covers.
	nx := max(fr.X, used.X)
	nw := min(frRight, usedRight) - nx
	if used.Y > fr.Y {
		leftovers = append(leftovers, model.Rect{X: nx, Y: fr.Y, W: nw, H: used.Y - fr.Y})
	}
	if usedBottom < frBottom {
		leftovers = append(leftovers, model.Rect{X: nx, Y: usedBottom, W: nw, H: frBottom - usedBottom})
	}

	s.free = slices.Delete(s.free, freeIndex, freeIndex+1)
	for _, r := range leftovers {
		if r.W > 0 && r.H > 0 {
			s.free = append(s.free, r)
		}
	}
	s.prune()
}

// prune removes every free rectangle contained in another one. Of two equal
// rectangles the later one goes. Overlapping rectangles are kept.
func (s *Sheet) prune() {
	for i := 0; i < len(s.free); i++ {
		for j := i + 1; j < len(s.free); j++ {
			a, b := s.free[i], s.free[j]
			if a.Contains(b) {
				s.free = slices.Delete(s.free, j, j+1)
				j--
				continue
			}
			if b.Contains(a) {
				s.free = slices.Delete(s.free, i, i+1)
				i--
				break
			}
		}
	}
}

// Width returns the outer sheet width.
func (s *Sheet) Width() int { return s.width }

// Height returns the outer sheet height.
func (s *Sheet) Height() int { return s.height }

// Label returns the stock label the sheet was opened from.
func (s *Sheet) Label() string { return s.label }

// Free returns a copy of the current free rectangles.
func (s *Sheet) Free() []model.Rect {
	return slices.Clone(s.free)
}

// Used returns a copy of the placements in placement order.
func (s *Sheet) Used() []model.Placement {
	return slices.Clone(s.used)
}

// TotalArea returns the outer sheet area.
func (s *Sheet) TotalArea() int64 {
	return int64(s.width) * int64(s.height)
}

// UsedAreaReal returns the requested area of every placed part, without kerf.
func (s *Sheet) UsedAreaReal() int64 {
	var sum int64
	for _, p := range s.used {
		sum += p.RealArea()
	}
	return sum
}

// Layout snapshots the sheet for the presentation layer.
func (s *Sheet) Layout() model.SheetLayout {
	placements := s.Used()
	if placements == nil {
		placements = []model.Placement{}
	}
	return model.SheetLayout{
		Width:      s.width,
		Height:     s.height,
		Label:      s.label,
		Kerf:       s.kerf,
		Margin:     s.margin,
		Placements: placements,
		Free:       s.Free(),
	}
}
