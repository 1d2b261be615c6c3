package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"tailorbase/internal/errors"
	"tailorbase/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}

	// Analysis modules
	mux.HandleFunc("POST /api/modules/tailor", protect(s.tailorHandler))
	mux.HandleFunc("POST /api/modules/context", protect(s.contextHandler))
	mux.HandleFunc("POST /api/modules/uniqueness", protect(s.uniquenessHandler))
	mux.HandleFunc("POST /api/modules/impact", protect(s.impactHandler))
	mux.HandleFunc("POST /api/modules/company", protect(s.companyHandler))
	mux.HandleFunc("POST /api/modules/readiness", protect(s.readinessHandler))
	mux.HandleFunc("POST /api/modules/soft-skills/start", protect(s.softSkillsStartHandler))
	mux.HandleFunc("POST /api/modules/soft-skills/chat", protect(s.softSkillsChatHandler))

	// Profile imports
	mux.HandleFunc("POST /api/imports/linkedin", protect(s.startImportHandler))
	mux.HandleFunc("GET /api/imports/linkedin/{id}", protect(s.getImportHandler))

	// PDF surface
	mux.HandleFunc("POST /api/resumes/{id}/pdf", protect(s.renderResumeHandler))
	mux.HandleFunc("POST /api/resumes/parse", protect(s.parseResumeHandler))
	mux.HandleFunc("POST /api/settings/template", protect(s.templateHandler))

	// CRUD
	mux.HandleFunc("POST /api/users", protect(s.createUserHandler))
	mux.HandleFunc("GET /api/users", protect(s.listUsersHandler))
	mux.HandleFunc("GET /api/users/{id}", protect(s.getUserHandler))
	mux.HandleFunc("PUT /api/users/{id}", protect(s.updateUserHandler))
	mux.HandleFunc("DELETE /api/users/{id}", protect(s.deleteUserHandler))

	mux.HandleFunc("POST /api/resumes", protect(s.createResumeHandler))
	mux.HandleFunc("GET /api/resumes", protect(s.listResumesHandler))
	mux.HandleFunc("GET /api/resumes/{id}", protect(s.getResumeHandler))
	mux.HandleFunc("PUT /api/resumes/{id}", protect(s.updateResumeHandler))
	mux.HandleFunc("DELETE /api/resumes/{id}", protect(s.deleteResumeHandler))

	mux.HandleFunc("POST /api/jobs", protect(s.createJobHandler))
	mux.HandleFunc("GET /api/jobs", protect(s.listJobsHandler))
	mux.HandleFunc("GET /api/jobs/{id}", protect(s.getJobHandler))
	mux.HandleFunc("PUT /api/jobs/{id}", protect(s.updateJobHandler))
	mux.HandleFunc("DELETE /api/jobs/{id}", protect(s.deleteJobHandler))

	mux.HandleFunc("GET /api/companies", protect(s.listCompaniesHandler))
	mux.HandleFunc("GET /api/companies/{id}", protect(s.getCompanyHandler))
	mux.HandleFunc("DELETE /api/companies/{id}", protect(s.deleteCompanyHandler))

	mux.HandleFunc("POST /api/applications", protect(s.createApplicationHandler))
	mux.HandleFunc("GET /api/applications", protect(s.listApplicationsHandler))
	mux.HandleFunc("GET /api/applications/{id}", protect(s.getApplicationHandler))
	mux.HandleFunc("PUT /api/applications/{id}", protect(s.updateApplicationHandler))
	mux.HandleFunc("DELETE /api/applications/{id}", protect(s.deleteApplicationHandler))

	mux.HandleFunc("GET /api/settings/{userId}", protect(s.getSettingsHandler))
	mux.HandleFunc("PUT /api/settings/{userId}", protect(s.updateSettingsHandler))

	return mux
}

// authMiddleware provides API key authentication. With no keys configured
// the surface is open, which the startup log calls out.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.apiKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr)
			s.writeError(w, errors.NewAuthError(errors.ErrCodeUnauthorized,
				"X-API-Key header or Authorization Bearer token required", nil))
			return
		}

		if !s.apiKeys[apiKey] {
			s.logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr,
				"api_key_prefix", maskAPIKey(apiKey))
			s.writeError(w, errors.NewAuthError(errors.ErrCodeUnauthorized,
				"Invalid API key", nil))
			return
		}

		s.logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))
		next(w, r)
	}
}

// rateLimitMiddleware runs the sliding-window limiter keyed by API key when
// present, client IP otherwise. Limiter backend failures let the request
// through so a redis outage does not take the API down with it.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key := s.clientKey(r)
		decision, err := s.limiter.Allow(r.Context(), key)
		if err != nil {
			s.logger.LogError(err, "Rate limiter check failed, allowing request",
				"key", maskAPIKey(key))
			next(w, r)
			return
		}

		if !decision.Allowed {
			if s.obs != nil {
				s.obs.GetMetrics().RecordBusinessMetric(r.Context(),
					observability.MetricRateLimitHit, true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			s.writeError(w, errors.NewRateLimitError(errors.ErrCodeRateLimited,
				"Rate limit exceeded, retry later", nil))
			return
		}

		next(w, r)
	}
}

// requestSizeLimitMiddleware caps the request body size
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxRequestSize)
		}
		next(w, r)
	}
}

// clientKey picks the rate limit identifier for a request
func (s *Server) clientKey(r *http.Request) string {
	if s.cfg.Server.RateLimit.ByAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "key:" + apiKey
		}
	}
	if s.cfg.Server.RateLimit.ByIP {
		return "ip:" + clientIP(r)
	}
	return "global"
}

// requestAPIKey extracts the API key from the X-API-Key header, with an
// Authorization bearer token fallback
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// clientIP resolves the originating client address, trusting the first
// X-Forwarded-For entry when a proxy set one
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
