package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/server/auth"
	"guardrail-hq/sentinel/pkg/telemetry/health"
	"guardrail-hq/sentinel/pkg/telemetry/tracing"
)

// Server is the HTTP check API.
type Server struct {
	config     *config.ServerConfig
	engine     Engine
	health     *health.Checker
	healthCfg  config.HealthConfig
	metrics    http.Handler
	metricsURL string
	version    health.VersionInfo
	tracing    bool
	auth       *auth.Middleware

	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithHealth serves the liveness and readiness probes of checker.
func WithHealth(checker *health.Checker, cfg config.HealthConfig) Option {
	return func(s *Server) {
		s.health = checker
		s.healthCfg = cfg
	}
}

// WithMetrics serves h at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsURL = path
		s.metrics = h
	}
}

// WithVersion serves build information at /version.
func WithVersion(version, commit, buildTime string) Option {
	return func(s *Server) {
		s.version = health.VersionInfo{Version: version, Commit: commit, BuildTime: buildTime}
	}
}

// WithTracing continues incoming W3C trace contexts.
func WithTracing(enabled bool) Option {
	return func(s *Server) { s.tracing = enabled }
}

// WithAuth requires an API key on the check endpoint.
func WithAuth(mw *auth.Middleware) Option {
	return func(s *Server) { s.auth = mw }
}

// NewServer creates a server for e.
func NewServer(cfg *config.ServerConfig, e Engine, opts ...Option) *Server {
	s := &Server{config: cfg, engine: e}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting check server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops accepting requests and waits for in-flight checks up to the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())
		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		slog.Info("check server stopped")
	})
	return shutdownErr
}

// Addr returns the bound address once the server is running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	var check http.Handler = NewCheckHandler(s.engine, s.config.MaxBodyBytes)
	if s.auth != nil {
		check = s.auth.Handle(check)
	}
	mux.Handle("/v1/check", check)
	mux.Handle("/version", health.VersionHandler(s.version.Version, s.version.Commit, s.version.BuildTime))
	if s.health != nil {
		mux.Handle(pathOr(s.healthCfg.LivenessPath, "/health"), s.health.LivenessHandler())
		mux.Handle(pathOr(s.healthCfg.ReadinessPath, "/ready"), s.health.ReadinessHandler())
	}
	if s.metrics != nil {
		mux.Handle(pathOr(s.metricsURL, "/metrics"), s.metrics)
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	if s.tracing {
		handler = tracing.HTTPMiddleware(handler)
	}
	handler = RecoveryMiddleware(handler)
	return handler
}

func pathOr(path, def string) string {
	if path == "" {
		return def
	}
	return path
}
