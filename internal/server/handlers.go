package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PaneCut/internal/engine"
	"github.com/piwi3910/PaneCut/internal/export"
	"github.com/piwi3910/PaneCut/internal/importer"
	"github.com/piwi3910/PaneCut/internal/model"
)

// OptimizeResponse is the result of a run plus optional per-sheet SVGs and
// the reusable offcuts it leaves.
type OptimizeResponse struct {
	model.Result
	SVGs    []string       `json:"svgs,omitempty"`
	Offcuts []model.Offcut `json:"offcuts"`
}

// ImportResponse mirrors importer.ImportResult for JSON clients.
type ImportResponse struct {
	Parts    []model.PartRequest `json:"parts"`
	Errors   []string            `json:"errors"`
	Warnings []string            `json:"warnings"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}

// optimize binds the request and runs it. On failure it has already written
// the error response and returns false.
func (s *Server) optimize(c *gin.Context) (model.Result, bool) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Result{}, false
	}

	stocks, parts, settings, err := req.normalize(s.catalog, s.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Result{}, false
	}

	result, err := engine.New(stocks, settings).Run(parts)
	if err != nil {
		var engErr *engine.Error
		if errors.As(err, &engErr) {
			klog.V(1).Infof("optimize rejected: %v", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": engErr.Kind.String()})
			return model.Result{}, false
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return model.Result{}, false
	}
	return result, true
}

func (s *Server) handleOptimize(c *gin.Context) {
	result, ok := s.optimize(c)
	if !ok {
		return
	}

	resp := OptimizeResponse{
		Result:  result,
		Offcuts: model.DetectAllOffcuts(result, model.MinOffcutDimension),
	}
	if resp.Offcuts == nil {
		resp.Offcuts = []model.Offcut{}
	}
	if withSVG, _ := strconv.ParseBool(c.Query("svg")); withSVG {
		for _, sheet := range result.Sheets {
			resp.SVGs = append(resp.SVGs, export.SheetSVG(sheet))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// report runs the request and streams the document produced by render.
func (s *Server) report(c *gin.Context, contentType, filename string, render func(io.Writer, model.Result) error) {
	result, ok := s.optimize(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, result); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleReportPDF(c *gin.Context) {
	s.report(c, "application/pdf", "cutplan.pdf", export.WritePDF)
}

func (s *Server) handleReportLabels(c *gin.Context) {
	s.report(c, "application/pdf", "labels.pdf", export.WriteLabels)
}

func (s *Server) handleReportXLSX(c *gin.Context) {
	s.report(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "cutlist.xlsx", export.WriteCutList)
}

// handleImportParts parses an uploaded CSV or Excel part list from the
// "file" form field.
func (s *Server) handleImportParts(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field: " + err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx", ".xlsm":
		result = importer.ImportPartsExcelReader(f)
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result = importer.ImportPartsCSVData(data)
	}

	resp := ImportResponse{
		Parts:    result.Parts,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
	if resp.Parts == nil {
		resp.Parts = []model.PartRequest{}
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	status := http.StatusOK
	if len(result.Parts) == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}
