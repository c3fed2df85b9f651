// server.go hosts the REST API with graceful shutdown for ECS/Kubernetes
// rolling deployments: once SIGTERM arrives the server reports 503 on every
// endpoint (including /health) so the load balancer drains it, then finishes
// in-flight requests before exiting.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// Addr is the address to listen on (e.g., ":8080")
	Addr string

	// Logger for the server
	Logger *slog.Logger

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration
}

// ServerConfigDefaults returns a config with default values.
func ServerConfigDefaults() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		Logger:       slog.Default(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server wraps http.Server with deployment-aware lifecycle handling.
type Server struct {
	server       *http.Server
	shuttingDown atomic.Bool
	logger       *slog.Logger
}

// NewServer creates an API server serving the handler's routes.
func NewServer(config ServerConfig, handler *Handler) *Server {
	defaults := ServerConfigDefaults()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	s := &Server{
		logger: config.Logger.With("component", "api-server"),
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.drainAware(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// drainAware rejects requests once shutdown has begun so the load balancer
// marks this instance unhealthy before connections are cut.
func (s *Server) drainAware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.shuttingDown.Load() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "shutting_down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start begins listening for requests.
// This is non-blocking - it starts the server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("starting API server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("API server failed", "error", err)
		}
	}()
}

// Shutdown marks the server as draining and gracefully stops it.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.shuttingDown.Store(true)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
