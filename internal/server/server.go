package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/nahidhasan98/git-diff-server/internal/config"
	"github.com/nahidhasan98/git-diff-server/internal/handlers"
	"github.com/nahidhasan98/git-diff-server/internal/logger"
	"github.com/nahidhasan98/git-diff-server/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	middleware *middleware.Middleware
	log        *logger.Logger
	addr       string
}

// New creates a new HTTP server
func New(cfg *config.Config, handler *handlers.Handler, log *logger.Logger) *Server {
	s := &Server{
		handler:    handler,
		middleware: middleware.New(log),
		log:        log,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Routes returns the routed handler wrapped in the middleware chain
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/", s.handler.Index)
	mux.HandleFunc("/health", s.handler.HealthCheck)
	mux.HandleFunc("/api/models", s.handler.ListModels)
	mux.HandleFunc("/api/generate", s.handler.Generate)

	return middleware.Chain(mux,
		s.middleware.CORS,
		s.middleware.Security,
		s.middleware.Logging,
		s.middleware.Recovery,
	)
}

// Start binds the listener and serves in the background. Bind failures are
// returned; later serve failures are sent to errCh.
func (s *Server) Start(errCh chan<- error) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.addr = ln.Addr().String()

	s.log.Infof("HTTP server listening on %s", s.addr)

	// Start server in a goroutine
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server shutdown complete")
	return nil
}
