package export

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PaneCut/internal/model"
)

func TestRenderSheetImage_FitsMaxSize(t *testing.T) {
	img, err := RenderSheetImage(buildTestResult().Sheets[0], 400)
	if err != nil {
		t.Fatalf("RenderSheetImage returned error: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 400 {
		t.Errorf("expected width 400, got %d", b.Dx())
	}
	// 2440x1220 keeps its 2:1 aspect
	if b.Dy() < 199 || b.Dy() > 201 {
		t.Errorf("expected height near 200, got %d", b.Dy())
	}
}

func TestRenderSheetImage_PortraitSheet(t *testing.T) {
	sheet := model.SheetLayout{Width: 500, Height: 1000, Label: "Tall", Margin: 10}
	img, err := RenderSheetImage(sheet, 100)
	if err != nil {
		t.Fatalf("RenderSheetImage returned error: %v", err)
	}
	if img.Bounds().Dy() != 100 {
		t.Errorf("expected height 100, got %d", img.Bounds().Dy())
	}
}

func TestRenderSheetImage_InvalidSheet(t *testing.T) {
	if _, err := RenderSheetImage(model.SheetLayout{Label: "empty"}, 100); err == nil {
		t.Fatal("expected error for a sheet without area")
	}
}

func TestWriteSheetPNG_Decodes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSheetPNG(&buf, buildTestResult().Sheets[1], 0); err != nil {
		t.Fatalf("WriteSheetPNG returned error: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != DefaultPreviewSize {
		t.Errorf("expected default width %d, got %d", DefaultPreviewSize, img.Bounds().Dx())
	}
}

func TestExportPNGs(t *testing.T) {
	paths, err := ExportPNGs(filepath.Join(t.TempDir(), "png"), buildTestResult(), 200)
	if err != nil {
		t.Fatalf("ExportPNGs returned error: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "cutplan_sheet_1.png" {
		t.Errorf("unexpected paths %v", paths)
	}
}
