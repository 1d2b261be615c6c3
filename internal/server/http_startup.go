package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailorbase/internal/observability"
)

// Start brings up observability, TLS and the HTTP listener, then blocks
// until shutdown
func (s *Server) Start() error {
	om, err := observability.NewManager(s.cfg.Observability, s.version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.obs = om
	defer s.shutdownObservability()

	httpServer := s.setupHTTPServer()
	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo(httpServer.Addr)

	return s.startWithGracefulShutdown(httpServer)
}

// setupHTTPServer builds the listener with the middleware-wrapped mux
func (s *Server) setupHTTPServer() *http.Server {
	mux := s.setupRoutes()
	handler := s.obs.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
}

// startWithGracefulShutdown runs the server until a signal or listener error
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown drains in-flight requests and releases resources
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.certManager != nil {
		if err := s.certManager.Stop(); err != nil {
			s.logger.LogError(err, "Failed to stop certificate manager")
		}
	}
	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			s.logger.LogError(err, "Failed to close rate limiter")
		}
	}
	if err := s.ai.Close(); err != nil {
		s.logger.LogError(err, "Failed to close AI service")
	}

	s.logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.logger.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) shutdownObservability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.obs.Shutdown(ctx); err != nil {
		s.logger.LogError(err, "Failed to shutdown observability")
	}
}

// displayServerInfo logs the effective surface configuration at startup
func (s *Server) displayServerInfo(addr string) {
	scheme := "http"
	if s.cfg.Server.TLS.Mode == "server" || s.cfg.Server.TLS.Mode == "mutual" {
		scheme = "https"
	}
	s.logger.Info("API surface configured",
		"url", fmt.Sprintf("%s://%s", scheme, addr),
		"tls_mode", s.cfg.Server.TLS.Mode,
		"auth_enabled", len(s.apiKeys) > 0,
		"rate_limit_enabled", s.limiter != nil,
		"max_request_size", s.cfg.Server.MaxRequestSize)

	if len(s.apiKeys) == 0 {
		s.logger.Warn("API endpoints are publicly accessible: no API keys configured")
	}
	if s.limiter == nil {
		s.logger.Warn("No rate limiting configured")
	}
}
