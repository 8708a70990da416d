// Package api exposes the dose computation engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/icrp103-dose-server/internal/cache"
	"github.com/icrp103-dose-server/internal/domain"
	"github.com/icrp103-dose-server/internal/metrics"
	"github.com/icrp103-dose-server/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	calculator    domain.DoseCalculator
	factorVersion string
	cache         *cache.Client
	metrics       *metrics.Manager
	router        *gin.Engine
	server        *http.Server
}

// Options carries the optional collaborators of the server. Cache and
// Metrics may be nil; the corresponding feature is then disabled.
type Options struct {
	Cache   *cache.Client
	Metrics *metrics.Manager
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, logger *logrus.Logger, calculator domain.DoseCalculator, factorVersion string, opts Options) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.CorrelationID())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}

	server := &Server{
		configManager: configManager,
		logger:        logger,
		calculator:    calculator,
		factorVersion: factorVersion,
		cache:         opts.Cache,
		metrics:       opts.Metrics,
		router:        router,
	}

	// Setup routes
	server.setupRoutes(cfg)

	return server
}

// Router exposes the underlying gin engine, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until the context is cancelled.
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
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.WithField("addr", addr).Info("HTTP server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes(cfg *domain.Config) {
	s.router.GET("/health", s.handleHealth)

	if s.metrics != nil && cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, s.metrics.Handler())
	}

	v1 := s.router.Group("/v1")
	{
		v1.GET("/factors/tissue", s.handleTissueFactors)
		v1.GET("/factors/radiation", s.handleRadiationFactors)
		v1.POST("/dose/effective", s.handleEffectiveDose)
		v1.POST("/dose/equivalent", s.handleEquivalentDose)
		v1.POST("/dose/convert/neutron-wr", s.handleNeutronWR)
	}
}
