// Package web serves the stored checks and the outage analysis as JSON.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
)

// Server handles web requests
type Server struct {
	store     models.Store
	port      int
	tolerance time.Duration
	logger    *zap.Logger
	engine    *gin.Engine
}

// New creates a new web server
func New(store models.Store, port int, tolerance time.Duration, logger *zap.Logger) *Server {
	s := &Server{
		store:     store,
		port:      port,
		tolerance: tolerance,
		logger:    logging.OrNop(logger).Named("web"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// API endpoints
	api := r.Group("/api")
	api.GET("/checks", s.handleChecks)
	api.GET("/outages", s.handleOutages)
	api.GET("/stats", s.handleStats)
	api.GET("/hourly", s.handleHourly)
	api.GET("/severity", s.handleSeverity)
	api.GET("/meta", s.handleMeta)

	// Health check for API
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine = r
	return s
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server starting", zap.Int("port", s.port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
