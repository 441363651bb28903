package server

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saskaita/invoice-pipeline/internal/export"
	"github.com/saskaita/invoice-pipeline/internal/pipeline"
	"github.com/saskaita/invoice-pipeline/internal/repository"
)

// Server owns the HTTP surface: the processing route, the confirmed-documents
// CRUD and the XLSX export.
type Server struct {
	pipe     *pipeline.Pipeline
	docs     repository.DocumentRepository
	exporter *export.Service
	logger   *slog.Logger
	engine   *gin.Engine
}

func New(pipe *pipeline.Pipeline, docs repository.DocumentRepository, exporter *export.Service, publicDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{pipe: pipe, docs: docs, exporter: exporter, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.MaxMultipartMemory = 32 << 20

	api := r.Group("/api")
	{
		api.POST("/process-invoice", s.processInvoice)
		api.POST("/ocr-coordinates", s.ocrCoordinates)
		api.POST("/confirm-document", s.confirmDocument)
		api.POST("/check-duplicate-invoice", s.checkDuplicate)
		api.GET("/processed-documents", s.listDocuments)
		api.GET("/processed-documents/:id", s.getDocument)
		api.DELETE("/processed-documents/:id", s.deleteDocument)
		api.GET("/export", s.exportInvoices)
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if publicDir != "" {
		r.Static("/uploads", filepath.Join(publicDir, "uploads"))
	}

	s.engine = r
	return s
}

// Handler exposes the router for http.Server and for handler tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
}

// userID scopes every document operation. There is no session layer here; the
// caller (or a fronting proxy) identifies the user per request.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "default"
}
