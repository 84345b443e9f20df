// Package server exposes the cooking pipeline, the recipe catalog and calorie lookups over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cookassistant/tools"
	"cookassistant/workflow"
)

const (
	serviceName    = "cook-assistant"
	defaultTimeout = 30 * time.Second
	notifyTimeout  = 10 * time.Second
)

// RecipeCatalog is the read side of the recipe catalog. *tools.Catalog implements it.
type RecipeCatalog interface {
	All(ctx context.Context, limit int) (tools.ListResult, error)
	ByCategory(ctx context.Context, category string, limit int) (tools.CategoryResult, error)
	Find(ctx context.Context, query string) (tools.FindResult, error)
}

// Notifier is told about every chat result. *slack.Notifier implements it.
type Notifier interface {
	Notify(ctx context.Context, query string, res workflow.Result) error
}

type Server struct {
	router   *gin.Engine
	runner   workflow.Runner
	catalog  RecipeCatalog
	calories tools.CalorieLookup
	notifier Notifier
	timeout  time.Duration
	registry *prometheus.Registry
	metrics  *metrics
}

type Option func(*Server)

func WithCatalog(c RecipeCatalog) Option {
	return func(s *Server) { s.catalog = c }
}

func WithCalorieLookup(l tools.CalorieLookup) Option {
	return func(s *Server) { s.calories = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithTimeout bounds every request, including streamed pipeline runs.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRegistry registers the server metrics with reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

func New(runner workflow.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		timeout:  defaultTimeout,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.registry)

	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.requestLogger(), s.cors(), s.deadline())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/workflow/stream", s.handleStream)
		api.GET("/workflow/ws", s.handleWebSocket)

		api.GET("/recipes", s.handleRecipes)
		api.GET("/recipes/search", s.handleRecipeSearch)
		api.GET("/recipes/categories/:category", s.handleRecipeCategory)

		api.GET("/nutrition", s.handleNutrition)
		api.POST("/nutrition/batch", s.handleNutritionBatch)
	}
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.timeout,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("SERVER: listening", "addr", addr, "timeout", s.timeout)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("SERVER: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.observeRequest(route, c.Request.Method, c.Writer.Status(), elapsed)

		slog.Info("SERVER: request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) deadline() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
