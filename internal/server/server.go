// Package server exposes the optimizer over HTTP using gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PaneCut/internal/model"
)

// maxUploadBytes bounds the in-memory part of multipart uploads.
const maxUploadBytes = 8 << 20

// Server holds the catalog and default settings shared by all requests.
// Every request runs its own optimizer, so handlers never share packing state.
type Server struct {
	catalog  model.Catalog
	defaults model.Settings
	router   *gin.Engine
}

// New builds a server whose requests fall back to defaults for any setting
// they leave out.
func New(catalog model.Catalog, defaults model.Settings) *Server {
	s := &Server{catalog: catalog, defaults: defaults}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.GET("/catalog", s.handleCatalog)
	api.POST("/optimize", s.handleOptimize)
	api.POST("/report/pdf", s.handleReportPDF)
	api.POST("/report/labels", s.handleReportLabels)
	api.POST("/report/xlsx", s.handleReportXLSX)
	api.POST("/import/parts", s.handleImportParts)

	s.router = r
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		klog.Infof("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request through klog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			klog.Errorf("%s %s %d %s %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.Errors.String())
			return
		}
		klog.V(1).Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
