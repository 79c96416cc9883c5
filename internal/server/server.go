package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/garyjia/kaiten-webhooks/internal/config"
	"github.com/garyjia/kaiten-webhooks/internal/dispatch"
	"github.com/garyjia/kaiten-webhooks/internal/webhook"
)

// Server ties together configuration, the HTTP router, the handler registry
// and the dispatcher. Each Server owns its own registry and dispatcher, so
// tests can run isolated instances side by side.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	engine     *gin.Engine
	registry   *dispatch.Registry
	dispatcher *dispatch.Dispatcher
}

// New creates a Server with all routes and middleware wired
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := dispatch.NewRegistry(logger)
	dispatcher := dispatch.NewDispatcher(registry, logger)
	handler := webhook.NewHandler(dispatcher, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(logger))
	engine.Use(corsMiddleware())

	engine.GET("/", handler.Root)
	engine.GET("/health", handler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.POST(cfg.Webhook.Path, handler.Handle)

	return &Server{
		cfg:        cfg,
		logger:     logger,
		engine:     engine,
		registry:   registry,
		dispatcher: dispatcher,
	}
}

// On registers a handler for a specific event kind. It is a side-effecting
// call; the handler is stored as-is, never wrapped or replaced.
func (s *Server) On(kind string, h dispatch.Handler) {
	s.registry.Register(kind, h)
}

// OnAny registers a handler invoked for every event regardless of kind
func (s *Server) OnAny(h dispatch.Handler) {
	s.registry.RegisterGlobal(h)
}

// RegisterHandler registers a handler for a specific event kind
func (s *Server) RegisterHandler(kind string, h dispatch.Handler) {
	s.registry.Register(kind, h)
}

// RegisterGlobalHandler registers a global handler
func (s *Server) RegisterGlobalHandler(h dispatch.Handler) {
	s.registry.RegisterGlobal(h)
}

// Engine exposes the underlying router, mainly for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Dispatcher exposes the event dispatcher, mainly for tests
func (s *Server) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails. On shutdown it stops accepting requests, then drains
// in-flight dispatches.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("webhook_path", s.cfg.Webhook.Path))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := s.dispatcher.Drain(shutdownCtx); err != nil {
		s.logger.Warn("In-flight dispatches did not finish before shutdown", zap.Error(err))
	}

	s.logger.Info("Server exited successfully")
	return nil
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
