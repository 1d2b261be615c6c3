package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tailorbase/internal/store"
)

// healthHandler reports overall service health: database, AI models, circuit
// breakers, rate limiter backend, TLS certificates. Degraded dependencies
// turn the status to "degraded" with a 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.healthCheckTimeout())
	defer cancel()

	response := map[string]any{
		"status":  "healthy",
		"service": "tailorbase",
		"version": s.version,
	}
	healthy := true

	if err := s.checkDatabase(ctx); err != nil {
		response["database"] = map[string]any{"available": false, "error": err.Error()}
		healthy = false
	} else {
		response["database"] = map[string]any{"available": true}
	}

	aiStatus, aiHealthy := s.checkAIModels()
	response["ai_models"] = aiStatus
	if !aiHealthy {
		healthy = false
	}

	response["circuit_breakers"] = s.ai.CircuitBreakerStats()

	if s.limiter != nil {
		backend := map[bool]string{true: "redis", false: "memory"}[s.cfg.Redis.Enabled]
		if err := s.limiter.Ping(ctx); err != nil {
			// The limiter fails open, so a down backend degrades health
			// without rejecting traffic.
			response["rate_limiter"] = map[string]any{
				"available": false, "backend": backend, "error": err.Error(),
			}
			healthy = false
		} else {
			response["rate_limiter"] = map[string]any{"available": true, "backend": backend}
		}
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if certHealthy, ok := certStatus["healthy"].(bool); ok && !certHealthy {
			healthy = false
		}
	}

	if !healthy {
		response["status"] = "degraded"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			s.logger.LogError(err, "Failed to encode health response")
		}
		return
	}

	s.writeRaw(w, response)
}

// checkDatabase pings the backing store
func (s *Server) checkDatabase(ctx context.Context) error {
	return store.Ping(ctx, s.store.DB())
}

// checkAIModels queries availability of every operation's model
func (s *Server) checkAIModels() (map[string]any, bool) {
	timeout := s.cfg.Observability.HealthCheck.AIModelCheckTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	status := make(map[string]any)
	healthy := true
	for operation, info := range s.ai.ModelInfo(ctx) {
		status[operation] = info
		if info != nil && !info.Available {
			healthy = false
		}
	}
	return status, healthy
}

// checkCertificateHealth reports TLS certificate state when a certificate
// manager is running
func (s *Server) checkCertificateHealth() map[string]any {
	if s.certManager == nil {
		return nil
	}

	certStatus := make(map[string]any)
	timeToExpiry, err := s.certManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = err.Error()
		return certStatus
	}

	certStatus["time_to_expiry"] = timeToExpiry.String()
	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= 24*time.Hour:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= 7*24*time.Hour:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}

	metrics := s.certManager.Metrics()
	certStatus["metrics"] = map[string]any{
		"reload_count":         metrics.ReloadCount,
		"reload_success_count": metrics.ReloadSuccessCount,
		"reload_failure_count": metrics.ReloadFailureCount,
		"last_reload_time":     metrics.LastReloadTime,
		"last_reload_success":  metrics.LastReloadSuccess,
		"last_reload_error":    metrics.LastReloadError,
	}
	return certStatus
}

// statsHandler reports server configuration and circuit breaker statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "tailorbase",
		"version": s.version,
		"server": map[string]any{
			"max_request_size_bytes": s.cfg.Server.MaxRequestSize,
			"auth_enabled":           len(s.apiKeys) > 0,
		},
		"circuit_breakers": s.ai.CircuitBreakerStats(),
	}

	rateLimit := map[string]any{"enabled": s.limiter != nil}
	if s.limiter != nil {
		rateLimit["requests_per_window"] = s.cfg.Server.RateLimit.RequestsPerWindow
		rateLimit["window"] = s.cfg.Server.RateLimit.Window.String()
		rateLimit["by_ip"] = s.cfg.Server.RateLimit.ByIP
		rateLimit["by_api_key"] = s.cfg.Server.RateLimit.ByAPIKey
		rateLimit["backend"] = map[bool]string{true: "redis", false: "memory"}[s.cfg.Redis.Enabled]
	}
	response["rate_limiting"] = rateLimit

	s.writeRaw(w, response)
}

// writeRaw writes a bare JSON object (no envelope) for operational endpoints
func (s *Server) writeRaw(w http.ResponseWriter, response any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.LogError(err, "Failed to encode response")
	}
}

// healthCheckTimeout bounds the full health check
func (s *Server) healthCheckTimeout() time.Duration {
	if t := s.cfg.Observability.HealthCheck.Timeout; t > 0 {
		return t
	}
	return 15 * time.Second
}
