package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PaneCut/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_output.pdf")

	if err := ExportPDF(path, buildTestResult()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// A valid PDF with 3 pages (2 sheets + summary) should be a reasonable size
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestWritePDF_HasPDFHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, buildTestResult()); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	if err := ExportPDF(path, model.Result{}); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be left behind for a failed export")
	}
}

func TestExportPDF_NoMargin(t *testing.T) {
	result := buildTestResult()
	for i := range result.Sheets {
		result.Sheets[i].Margin = 0
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, result); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
}

func TestExportPDF_ManyParts(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, manyPartsResult(120)); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if buf.Len() < 1000 {
		t.Errorf("PDF seems too small for 120 parts: %d bytes", buf.Len())
	}
}

func TestExportPDF_BadPath(t *testing.T) {
	err := ExportPDF(filepath.Join(t.TempDir(), "missing", "out.pdf"), buildTestResult())
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 25, 7},
		{15, 10, 6},
	}
	for _, tt := range tests {
		got := labelFontSize(tt.w, tt.h)
		if got != tt.want {
			t.Errorf("labelFontSize(%.0f, %.0f) = %.0f, want %.0f", tt.w, tt.h, got, tt.want)
		}
	}
}
