package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PaneCut/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	if err := ExportLabels(path, buildTestResult()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLabels(&buf, model.Result{}); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}

func TestExportLabels_NoPlacements(t *testing.T) {
	result := model.Result{
		Sheets: []model.SheetLayout{{Width: 1000, Height: 500, Label: "Board"}},
	}
	var buf bytes.Buffer
	if err := WriteLabels(&buf, result); err == nil {
		t.Fatal("expected error for result with no placements, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestResult())

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}

	if labels[0].Code != "P10" {
		t.Errorf("expected first label to be 'P10', got %q", labels[0].Code)
	}
	if labels[0].Width != 600 || labels[0].Height != 400 {
		t.Errorf("wrong dimensions: got %dx%d, want 600x400", labels[0].Width, labels[0].Height)
	}
	if labels[0].SheetIndex != 1 || labels[0].SheetLabel != "Float 2440x1220" {
		t.Errorf("unexpected sheet info %d %q", labels[0].SheetIndex, labels[0].SheetLabel)
	}

	// Rotated labels keep the requested size
	if !labels[2].Rotated {
		t.Error("expected third label to be rotated")
	}
	if labels[2].Width != 400 || labels[2].Height != 300 {
		t.Errorf("rotated label dimensions: got %dx%d, want 400x300", labels[2].Width, labels[2].Height)
	}

	if labels[3].SheetIndex != 2 {
		t.Errorf("expected sheet index 2 for fourth label, got %d", labels[3].SheetIndex)
	}
}

func TestLabelInfo_JSONFields(t *testing.T) {
	data, err := json.Marshal(LabelInfo{Code: "A1", Width: 600, Height: 300, SheetIndex: 2, X: 10, Y: 413})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"code", "width_mm", "height_mm", "sheet", "sheet_label", "rotated", "x_mm", "y_mm"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected key %q in label JSON %s", key, data)
		}
	}
}

func TestExportLabels_ManyParts(t *testing.T) {
	// 65 parts spill onto a third label page
	var buf bytes.Buffer
	if err := WriteLabels(&buf, manyPartsResult(65)); err != nil {
		t.Fatalf("WriteLabels returned error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("label PDF is empty")
	}
}
