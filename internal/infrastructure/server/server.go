package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/morroware/retrosv2-sub000/internal/api/http"
	"github.com/morroware/retrosv2-sub000/internal/api/middleware"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/config"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/logging"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/monitoring"
	"github.com/morroware/retrosv2-sub000/internal/ws"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	stack    *Stack
	hub      *ws.Hub
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing RetrOS state server",
		zap.String("port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// Initialize metrics first (needed by other components)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	stack, err := OpenStack(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	logger.Info("State tree hydrated", zap.Uint64("version", stack.Store.Version()))

	hub := ws.NewHub(stack.Store, stack.Bus, ws.Options{
		Logger:  logger.Component("ws"),
		Metrics: metrics,
	})

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(rateLimitConfig(cfg.RateLimit)))
	}

	handlers := api.NewHandlers(api.Deps{
		Store:     stack.Store,
		Desktop:   stack.Desktop,
		Snapshots: stack.Snapshots,
		Bridge:    stack.Bridge,
		Metrics:   metrics,
		Logger:    logger.Component("api"),
	})
	handlers.Register(router)

	// WebSocket
	router.GET("/stream", hub.HandleConnection)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/metrics/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"metrics":        metrics.Snapshot(),
			"uptime_seconds": metrics.UptimeSeconds(),
			"ws_clients":     hub.ClientCount(),
			"state_version":  stack.Store.Version(),
		})
	})

	logger.Info("Server initialized successfully")

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:   router,
		http:     httpServer,
		stack:    stack,
		hub:      hub,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		registry: registry,
	}, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stack returns the wired state service.
func (s *Server) Stack() *Stack {
	return s.stack
}

// Run starts the HTTP server and blocks until it stops. It returns nil
// once Close has been called, including when Close ran first.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	var errs []error
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	s.hub.Close()

	if err := s.stack.Close(); err != nil {
		s.logger.Error("Failed to close durable store", zap.Error(err))
		errs = append(errs, fmt.Errorf("close durable store: %w", err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}

// rateLimitConfig starts from the middleware defaults so idle eviction stays
// on when configuration leaves IdleTTL unset.
func rateLimitConfig(cfg config.RateLimitConfig) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	rl.RequestsPerSecond = cfg.RequestsPerSecond
	rl.Burst = cfg.Burst
	if cfg.IdleTTL > 0 {
		rl.IdleTTL = cfg.IdleTTL
	}
	return rl
}
