// Package api - HTTP surface over the catalog, duty schedule and history.
// Handlers only decode, validate and serialize; all classification and duty logic lives in core.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tariff-duty/core/catalog"
	"tariff-duty/core/duty"
	"tariff-duty/core/history"
	"tariff-duty/internal/errors"
	"tariff-duty/internal/logging"
)

// Upload and query defaults
const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultSearchLimit    = 20
	shutdownTimeout       = 10 * time.Second
)

// Options configure a Server
type Options struct {
	Version string

	Store    *catalog.Store
	Schedule *duty.Schedule
	History  *history.Log

	// SearchLimit bounds GET /api/tnved/search results
	SearchLimit int

	// CategoryLimit is the default for GET /api/tnved/category
	CategoryLimit int

	// MaxUploadBytes bounds catalog uploads
	MaxUploadBytes int64
}

// Server is the API server
type Server struct {
	engine  *gin.Engine
	opts    Options
	version string
}

// NewServer creates a server. Nil components are replaced with empty defaults.
func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = catalog.NewStore()
	}
	if opts.Schedule == nil {
		opts.Schedule = duty.Default2026()
	}
	if opts.History == nil {
		opts.History = history.New(history.DefaultMaxItems)
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.CategoryLimit <= 0 {
		opts.CategoryLimit = catalog.DefaultCategoryLimit
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	engine := gin.New()
	engine.Use(requestID(), accessLog(), gin.Recovery())
	engine.MaxMultipartMemory = opts.MaxUploadBytes

	s := &Server{
		engine:  engine,
		opts:    opts,
		version: opts.Version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/version", s.handleVersion)
	s.engine.NoRoute(func(c *gin.Context) {
		s.writeError(c, errors.NotFound("route", c.Request.URL.Path))
	})

	tnved := s.engine.Group("/api/tnved")
	{
		tnved.POST("/load", s.handleLoad)
		tnved.GET("/load", s.handleStats)
		tnved.DELETE("/load", s.handleClear)
		tnved.GET("/stats", s.handleStats)
		tnved.GET("/search", s.handleSearch)
		tnved.GET("/codes/:code", s.handleCode)
		tnved.GET("/category", s.handleCategory)
		tnved.GET("/export", s.handleExport)
		tnved.POST("/extract", s.handleExtract)
		tnved.GET("/sources", s.handleSources)
	}

	duties := s.engine.Group("/api/duties")
	{
		duties.POST("/calculate", s.handleCalculate)
		duties.GET("/rates", s.handleRates)
	}

	hist := s.engine.Group("/api/history")
	{
		hist.GET("", s.handleHistoryList)
		hist.GET("/:id", s.handleHistoryGet)
		hist.DELETE("", s.handleHistoryClear)
		hist.DELETE("/:id", s.handleHistoryRemove)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Internal("http server failed", err).WithContext("addr", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logging.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Internal("http server shutdown failed", err)
	}
	return nil
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	s.writeJSON(c, gin.H{
		"status":  "healthy",
		"version": s.version,
		"codes":   s.opts.Store.Len(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(c *gin.Context) {
	s.writeJSON(c, gin.H{
		"version":     s.version,
		"engine":      "tariff-duty",
		"api_version": "v1",
		"schedule":    s.opts.Schedule.Options().Year,
	}, http.StatusOK)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// writeError writes the error envelope, mapping the error type to a status
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := ErrorBody{Code: string(errors.TypeInternal), Message: err.Error()}

	if e, ok := errors.As(err); ok {
		body.Code = string(e.Type)
		body.Message = e.Message
		body.Field = e.Field
		switch e.Type {
		case errors.TypeValidation, errors.TypeParsing:
			status = http.StatusBadRequest
		case errors.TypeNotFound:
			status = http.StatusNotFound
		}
	}

	if status >= http.StatusInternalServerError {
		logging.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}
