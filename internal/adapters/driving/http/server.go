package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driving"
	"github.com/custodia-labs/checkprioritizer/internal/metrics"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP relay in front of the retrieval core
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	defaults   domain.SearchOptions
	logger     *slog.Logger
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer

	// Services
	searchService driving.SearchService
	answerService driving.AnswerService
	services      *runtime.Services
	tokens        driven.TokenVerifier // nil disables bearer auth

	// Infrastructure
	index       Pinger
	redisClient Pinger // optional
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	SearchDefaults domain.SearchOptions
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
		SearchDefaults: domain.DefaultSearchOptions(),
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	searchService driving.SearchService,
	answerService driving.AnswerService,
	services *runtime.Services,
	tokens driven.TokenVerifier, // can be nil
	index Pinger,
	redisClient Pinger, // can be nil
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	defaults := cfg.SearchDefaults
	if defaults.K == 0 {
		defaults = domain.DefaultSearchOptions()
	}

	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		defaults:      defaults,
		logger:        logger,
		metrics:       cfg.Metrics,
		gatherer:      gatherer,
		searchService: searchService,
		answerService: answerService,
		services:      services,
		tokens:        tokens,
		index:         index,
		redisClient:   redisClient,
	}

	s.setupRoutes()

	handler := NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)
	handler = NewLoggingMiddleware(logger, cfg.Metrics).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // answer synthesis waits on the LLM
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.tokens)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /status", s.handleStatus)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Retrieval endpoints
	s.router.Handle("POST /ask",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAsk)))
	s.router.Handle("POST /api/v1/search",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearch)))
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM or ctx is done
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
