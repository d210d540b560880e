// Package webserver runs the HTTP server hosting the deliberation API.
package webserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/boardroom-ai/boardroom/internal/auth"
	"github.com/boardroom-ai/boardroom/internal/config"
	"github.com/boardroom-ai/boardroom/internal/gateway"
	"github.com/boardroom-ai/boardroom/internal/webapi"
)

// Server wraps the HTTP server with its middleware stack: CORS on the
// outside, then authentication, then the API handlers.
type Server struct {
	cfg    *config.Config
	srv    *http.Server
	logger *slog.Logger
}

// New builds a Server from configuration. gw handles all model calls; it
// is injected so tests can substitute a mock.
func New(cfg *config.Config, gw gateway.Gateway, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	webapi.NewHandlers(gw, cfg, logger).RegisterRoutes(mux)

	verifier := auth.NewVerifier(cfg.AuthSecret)
	handler := webapi.CORSMiddleware(verifier.Middleware(mux), cfg.Server.AllowedOrigins...)

	return &Server{
		cfg:    cfg,
		logger: logger,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe starts the server and shuts it down gracefully when ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("HTTP server starting",
		"address", s.srv.Addr,
		"auth", s.cfg.AuthSecret != "",
		"data_dir", s.cfg.Server.DataDir)

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Handler returns the full middleware-wrapped handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
