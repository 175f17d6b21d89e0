// Package api exposes the diagnostic service over HTTP with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/middleware"
	"github.com/dctmd-mcp-server/internal/service"
)

// shutdownTimeout bounds graceful shutdown
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	service       *service.DiagnosticService
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	version       string
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, svc *service.DiagnosticService, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	if configManager.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
		router.Use(limiter.Middleware())
	}
	if cfg.Server.WriteTimeout > 0 {
		router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))
	}

	server := &Server{
		configManager: configManager,
		service:       svc,
		logger:        logger,
		router:        router,
		version:       cfg.MCP.ServerVersion,
	}

	server.setupRoutes()

	return server
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.WithFields(logrus.Fields{
		"addr": addr,
		"tls":  cfg.TLSEnabled,
	}).Info("HTTP server listening")

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/diagnoses", s.handleListDiagnoses)
		v1.POST("/evaluate", s.handleEvaluate)
		v1.POST("/relevance", s.handleRelevance)
		v1.PUT("/records/:id", s.handleStoreRecord)
		v1.GET("/records/:id/evaluation", s.handleRecordEvaluation)
	}
}
