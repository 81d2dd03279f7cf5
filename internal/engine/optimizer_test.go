package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PaneCut/internal/model"
)

func testSettings(kerf, margin int, rotate bool) model.Settings {
	return model.Settings{Kerf: kerf, Margin: margin, AllowRotate: rotate}
}

func square(size int, label string) model.StockSize {
	return model.StockSize{Width: size, Height: size, Label: label}
}

// checkSheetInvariants verifies the geometric guarantees of one sheet layout.
func checkSheetInvariants(t *testing.T, l model.SheetLayout) {
	t.Helper()

	var footprintArea int64
	for i, p := range l.Placements {
		assert.GreaterOrEqual(t, p.X, l.Margin, "placement %d left of margin", i)
		assert.GreaterOrEqual(t, p.Y, l.Margin, "placement %d above margin", i)
		assert.LessOrEqual(t, p.X+p.W, l.Width-l.Margin, "placement %d past right margin", i)
		assert.LessOrEqual(t, p.Y+p.H, l.Height-l.Margin, "placement %d past bottom margin", i)

		if p.Rotated {
			assert.Equal(t, p.RawH+l.Kerf, p.W, "rotated footprint width of %d", i)
			assert.Equal(t, p.RawW+l.Kerf, p.H, "rotated footprint height of %d", i)
		} else {
			assert.Equal(t, p.RawW+l.Kerf, p.W, "footprint width of %d", i)
			assert.Equal(t, p.RawH+l.Kerf, p.H, "footprint height of %d", i)
		}

		for j := i + 1; j < len(l.Placements); j++ {
			assert.False(t, p.Rect.Intersects(l.Placements[j].Rect), "placements %d and %d overlap", i, j)
		}
		for k, fr := range l.Free {
			assert.False(t, p.Rect.Intersects(fr), "placement %d overlaps free rect %d", i, k)
		}
		footprintArea += p.Area()
	}

	var freeArea int64
	for i, a := range l.Free {
		assert.Positive(t, a.W)
		assert.Positive(t, a.H)
		for j, b := range l.Free {
			if i != j {
				assert.False(t, a.Contains(b), "free rect %d contains free rect %d", i, j)
			}
		}
		freeArea += a.Area()
	}

	interior := int64(l.Width-2*l.Margin) * int64(l.Height-2*l.Margin)
	assert.Equal(t, interior, freeArea+footprintArea, "free space and placements must cover the interior")
}

func countByCode(result model.Result) map[string]int {
	counts := map[string]int{}
	for _, s := range result.Sheets {
		for _, p := range s.Placements {
			counts[p.Code]++
		}
	}
	return counts
}

func TestRun_ExactFitSingleSheet(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "Sheet")}, testSettings(0, 0, true))

	result, err := opt.Run([]model.PartRequest{{Code: "A", Width: 1000, Height: 1000, Quantity: 1}})
	require.NoError(t, err)

	require.Len(t, result.Sheets, 1)
	require.Len(t, result.Sheets[0].Placements, 1)
	assert.Equal(t, model.Rect{X: 0, Y: 0, W: 1000, H: 1000}, result.Sheets[0].Placements[0].Rect)
	assert.Equal(t, 1, result.Summary.SheetCount)
	assert.Equal(t, 0.0, result.Summary.WastePct)
	assert.Equal(t, int64(0), result.Summary.WasteArea)
}

func TestRun_LShapedRemainderWithoutRotation(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "Sheet")}, testSettings(0, 0, false))

	result, err := opt.Run([]model.PartRequest{
		{Code: "A", Width: 600, Height: 400, Quantity: 1},
		{Code: "B", Width: 400, Height: 600, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, result.Sheets, 1)
	placements := result.Sheets[0].Placements
	require.Len(t, placements, 2)
	assert.Equal(t, "A", placements[0].Code)
	assert.Equal(t, model.Rect{X: 0, Y: 0, W: 600, H: 400}, placements[0].Rect)
	assert.Equal(t, "B", placements[1].Code)
	assert.Equal(t, model.Rect{X: 0, Y: 400, W: 400, H: 600}, placements[1].Rect)
	assert.False(t, placements[1].Rotated)
}

func TestRun_RotationNeededButDisabledOpensNewSheet(t *testing.T) {
	parts := []model.PartRequest{
		{Code: "Wide", Width: 1000, Height: 600, Quantity: 1},
		{Code: "Tall", Width: 300, Height: 1000, Quantity: 1},
	}

	noRotate, err := New([]model.StockSize{square(1000, "S")}, testSettings(0, 0, false)).Run(parts)
	require.NoError(t, err)
	assert.Len(t, noRotate.Sheets, 2)

	rotate, err := New([]model.StockSize{square(1000, "S")}, testSettings(0, 0, true)).Run(parts)
	require.NoError(t, err)
	require.Len(t, rotate.Sheets, 1)
	assert.True(t, rotate.Sheets[0].Placements[1].Rotated)
}

func TestRun_PartLargerThanEveryStock(t *testing.T) {
	for _, allow := range []bool{true, false} {
		opt := New([]model.StockSize{square(500, "Small")}, testSettings(3, 10, allow))

		result, err := opt.Run([]model.PartRequest{{Code: "Huge", Width: 600, Height: 600, Quantity: 1}})
		require.Error(t, err)

		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindUnplaceable, kind)
		assert.Contains(t, err.Error(), "Huge 600x600")
		assert.Empty(t, result.Sheets)
		assert.Equal(t, 0, result.Summary.SheetCount)
		assert.Empty(t, opt.Sheets())
	}
}

func TestRun_OversizedPartDoesNotWrap(t *testing.T) {
	for _, allow := range []bool{true, false} {
		opt := New([]model.StockSize{square(1000, "S")}, testSettings(3, 10, allow))

		result, err := opt.Run([]model.PartRequest{{Code: "X", Width: math.MaxInt - 1, Height: 100, Quantity: 1}})
		require.Error(t, err)

		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, KindUnplaceable, kind)
		assert.Empty(t, result.Sheets)
		assert.Empty(t, opt.Sheets())
	}
}

func TestFitsWithin(t *testing.T) {
	tests := []struct {
		part, kerf, margin, limit int
		want                      bool
	}{
		{977, 3, 10, 1000, true},
		{978, 3, 10, 1000, false},
		{100, 0, 0, 100, true},
		{math.MaxInt - 1, 3, 10, 1000, false},
		{10, math.MaxInt, 0, 1000, false},
		{10, 0, math.MaxInt, 1000, false},
	}
	for _, tt := range tests {
		got := fitsWithin(tt.part, tt.kerf, tt.margin, tt.limit)
		if got != tt.want {
			t.Errorf("fitsWithin(%d, %d, %d, %d) = %v, want %v",
				tt.part, tt.kerf, tt.margin, tt.limit, got, tt.want)
		}
	}
}

func TestRun_FailureDiscardsOpenedSheets(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "S")}, testSettings(0, 0, false))

	result, err := opt.Run([]model.PartRequest{
		{Code: "Big", Width: 900, Height: 900, Quantity: 1},
		{Code: "Strip", Width: 1200, Height: 10, Quantity: 1},
	})
	require.Error(t, err)
	assert.Empty(t, result.Sheets)
	assert.Nil(t, opt.Sheets())
}

func TestRun_SelectsSmallestQualifyingStock(t *testing.T) {
	stocks := []model.StockSize{
		square(2000, "Large"),
		square(1000, "Small"),
		square(1500, "Mid"),
	}
	opt := New(stocks, testSettings(0, 0, true))

	result, err := opt.Run([]model.PartRequest{{Code: "A", Width: 500, Height: 500, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, result.Sheets, 1)
	assert.Equal(t, "Small", result.Sheets[0].Label)
}

func TestRun_LargePartForcesLargeStock(t *testing.T) {
	stocks := []model.StockSize{
		{Width: 1220, Height: 610, Label: "Small"},
		{Width: 2440, Height: 1220, Label: "Large"},
	}
	opt := New(stocks, testSettings(3, 10, true))

	result, err := opt.Run([]model.PartRequest{
		{Code: "Big", Width: 2000, Height: 1000, Quantity: 1},
		{Code: "Little", Width: 100, Height: 100, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, result.Sheets, 1, "the small part fits on the already open large sheet")
	assert.Equal(t, "Large", result.Sheets[0].Label)
}

func TestRun_EqualAreaStocksUseCatalogOrder(t *testing.T) {
	stocks := []model.StockSize{
		{Width: 1000, Height: 500, Label: "Landscape"},
		{Width: 500, Height: 1000, Label: "Portrait"},
	}
	opt := New(stocks, testSettings(0, 0, true))

	result, err := opt.Run([]model.PartRequest{{Code: "A", Width: 400, Height: 400, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "Landscape", result.Sheets[0].Label)
}

func TestRun_StockFitsOnlyWhenRotated(t *testing.T) {
	stocks := []model.StockSize{{Width: 500, Height: 1000, Label: "Portrait"}}
	parts := []model.PartRequest{{Code: "A", Width: 900, Height: 400, Quantity: 1}}

	result, err := New(stocks, testSettings(0, 0, true)).Run(parts)
	require.NoError(t, err)
	require.Len(t, result.Sheets, 1)
	assert.True(t, result.Sheets[0].Placements[0].Rotated)

	_, err = New(stocks, testSettings(0, 0, false)).Run(parts)
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnplaceable, kind)
}

func TestRun_KerfAndMarginCountTowardsFit(t *testing.T) {
	stocks := []model.StockSize{square(1000, "S")}

	result, err := New(stocks, testSettings(3, 10, true)).Run([]model.PartRequest{{Code: "Fit", Width: 977, Height: 977, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, model.Rect{X: 10, Y: 10, W: 980, H: 980}, result.Sheets[0].Placements[0].Rect)

	_, err = New(stocks, testSettings(3, 10, true)).Run([]model.PartRequest{{Code: "TooBig", Width: 978, Height: 977, Quantity: 1}})
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnplaceable, kind)
}

func TestRun_QuantityExpansion(t *testing.T) {
	opt := New([]model.StockSize{{Width: 2440, Height: 1220, Label: "S"}}, testSettings(3, 10, true))

	result, err := opt.Run([]model.PartRequest{
		{Code: "A", Width: 500, Height: 300, Quantity: 5},
		{Code: "B", Width: 100, Height: 100, Quantity: 0},
	})
	require.NoError(t, err)

	counts := countByCode(result)
	assert.Equal(t, 5, counts["A"])
	assert.Equal(t, 1, counts["B"], "quantity below one still places one part")
	assert.Equal(t, 6, result.PlacementCount())
}

func TestRun_LargestPartsFirstStableOnTies(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "S")}, testSettings(0, 0, false))

	result, err := opt.Run([]model.PartRequest{
		{Code: "Small", Width: 100, Height: 100, Quantity: 1},
		{Code: "First", Width: 200, Height: 100, Quantity: 1},
		{Code: "Second", Width: 100, Height: 200, Quantity: 1},
		{Code: "Big", Width: 500, Height: 500, Quantity: 1},
	})
	require.NoError(t, err)

	var order []string
	for _, p := range result.Sheets[0].Placements {
		order = append(order, p.Code)
	}
	assert.Equal(t, []string{"Big", "First", "Second", "Small"}, order)
}

func TestRun_TriesOpenSheetsInOpeningOrder(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "S")}, testSettings(0, 0, true))

	result, err := opt.Run([]model.PartRequest{
		{Code: "Big", Width: 800, Height: 800, Quantity: 2},
		{Code: "Small", Width: 200, Height: 200, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, result.Sheets, 2)
	assert.Len(t, result.Sheets[0].Placements, 2)
	assert.Len(t, result.Sheets[1].Placements, 1)
	assert.Equal(t, model.Rect{X: 0, Y: 800, W: 200, H: 200}, result.Sheets[0].Placements[1].Rect)
}

func TestRun_WasteAccounting(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "S")}, testSettings(3, 10, true))

	result, err := opt.Run([]model.PartRequest{{Code: "A", Width: 200, Height: 100, Quantity: 2}})
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, int64(1000000), s.TotalSheetArea)
	assert.Equal(t, int64(40000), s.TotalUsedArea, "kerf is not counted as used")
	assert.Equal(t, s.TotalSheetArea-s.TotalUsedArea, s.WasteArea)
	assert.Equal(t, 96.0, s.WastePct)
	assert.Equal(t, 3, s.Kerf)
	assert.Equal(t, 10, s.Margin)
	assert.True(t, s.AllowRotate)
}

func TestRun_WastePctRoundedToTwoDecimals(t *testing.T) {
	opt := New([]model.StockSize{square(300, "S")}, testSettings(0, 0, true))

	result, err := opt.Run([]model.PartRequest{{Code: "A", Width: 100, Height: 100, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 88.89, result.Summary.WastePct)
}

func TestRun_NoParts(t *testing.T) {
	opt := New([]model.StockSize{square(1000, "S")}, testSettings(3, 10, true))

	result, err := opt.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, result.Sheets)
	assert.Equal(t, 0, result.Summary.SheetCount)
	assert.Equal(t, 0.0, result.Summary.WastePct)
}

func TestRun_NoStocks(t *testing.T) {
	_, err := New(nil, testSettings(0, 0, true)).Run([]model.PartRequest{{Code: "A", Width: 10, Height: 10, Quantity: 1}})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnplaceable, kind)
}

func TestRun_InvalidInput(t *testing.T) {
	stocks := []model.StockSize{square(1000, "S")}

	_, err := New(stocks, testSettings(0, 0, true)).Run([]model.PartRequest{{Code: "A", Width: 0, Height: 10, Quantity: 1}})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, kind)

	_, err = New(stocks, testSettings(-1, 0, true)).Run([]model.PartRequest{{Code: "A", Width: 10, Height: 10, Quantity: 1}})
	kind, _ = KindOf(err)
	assert.Equal(t, KindInvalidInput, kind)
}

func realisticParts() []model.PartRequest {
	return []model.PartRequest{
		{Code: "A", Width: 600, Height: 400, Quantity: 5},
		{Code: "B", Width: 300, Height: 300, Quantity: 7},
		{Code: "C", Width: 1000, Height: 200, Quantity: 3},
		{Code: "D", Width: 150, Height: 750, Quantity: 4},
		{Code: "E", Width: 50, Height: 50, Quantity: 20},
		{Code: "F", Width: 1800, Height: 900, Quantity: 2},
	}
}

func realisticStocks() []model.StockSize {
	return []model.StockSize{
		{Width: 2440, Height: 1220, Label: "Large"},
		{Width: 1220, Height: 610, Label: "Half"},
	}
}

func TestRun_LayoutInvariants(t *testing.T) {
	for _, allow := range []bool{true, false} {
		opt := New(realisticStocks(), testSettings(3, 10, allow))

		result, err := opt.Run(realisticParts())
		require.NoError(t, err)

		for _, sheet := range result.Sheets {
			checkSheetInvariants(t, sheet)
		}

		counts := countByCode(result)
		for _, p := range realisticParts() {
			assert.Equal(t, p.Quantity, counts[p.Code], "placements for %s", p.Code)
		}

		var used, total int64
		for _, s := range result.Sheets {
			used += s.UsedArea()
			total += s.TotalArea()
		}
		assert.Equal(t, total, result.Summary.TotalSheetArea)
		assert.Equal(t, used, result.Summary.TotalUsedArea)
		assert.Equal(t, total-used, result.Summary.WasteArea)
	}
}

func TestRun_Deterministic(t *testing.T) {
	opt := New(realisticStocks(), model.DefaultSettings())

	first, err := opt.Run(realisticParts())
	require.NoError(t, err)

	second, err := opt.Run(realisticParts())
	require.NoError(t, err)
	assert.Equal(t, first, second, "reusing an optimizer starts from an empty sheet list")

	third, err := New(realisticStocks(), model.DefaultSettings()).Run(realisticParts())
	require.NoError(t, err)
	assert.Equal(t, first, third)
}
