package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tailorbase/internal/ai"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/ratelimit"
	"tailorbase/internal/types"
)

// stubAI satisfies AIService without reaching any provider
type stubAI struct {
	tailorOut types.TailorResumeOutput
	err       error
}

func (a *stubAI) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *ai.TokenUsage, error) {
	return a.tailorOut, &ai.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, a.err
}

func (a *stubAI) AnalyzeContext(ctx context.Context, input types.ContextAnalysisInput) (types.ContextAnalysisOutput, *ai.TokenUsage, error) {
	return types.ContextAnalysisOutput{}, nil, a.err
}

func (a *stubAI) AnalyzeUniqueness(ctx context.Context, input types.UniquenessAnalysisInput) (types.UniquenessAnalysisOutput, *ai.TokenUsage, error) {
	return types.UniquenessAnalysisOutput{}, nil, a.err
}

func (a *stubAI) AnalyzeImpact(ctx context.Context, input types.ImpactAnalysisInput) (types.ImpactAnalysisOutput, *ai.TokenUsage, error) {
	return types.ImpactAnalysisOutput{}, nil, a.err
}

func (a *stubAI) ResearchCompany(ctx context.Context, input types.CompanyResearchInput) (types.CompanyResearchOutput, *ai.TokenUsage, error) {
	return types.CompanyResearchOutput{}, nil, a.err
}

func (a *stubAI) SoftSkillsTurn(ctx context.Context, input types.SoftSkillsTurnInput) (types.SoftSkillsTurnOutput, *ai.TokenUsage, error) {
	return types.SoftSkillsTurnOutput{}, nil, a.err
}

func (a *stubAI) AnalyzeTemplate(ctx context.Context, input types.TemplateAnalysisInput) (types.TemplateAnalysisOutput, *ai.TokenUsage, error) {
	return types.TemplateAnalysisOutput{}, nil, a.err
}

func (a *stubAI) ModelInfo(ctx context.Context) map[string]*ai.ModelInfo {
	return map[string]*ai.ModelInfo{"tailor": {Name: "stub", Available: true}}
}

func (a *stubAI) CircuitBreakerStats() map[string]any {
	return map[string]any{"overall_healthy": true}
}

func (a *stubAI) Close() error { return nil }

func testServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return NewServer(cfg, "test", Dependencies{AI: &stubAI{}}, errors.NewLogger(slog.LevelError))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		apiKeys    []string
		header     map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no keys configured passes through",
			apiKeys:    nil,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing key rejected",
			apiKeys:    []string{"secret-key-12345"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeUnauthorized,
		},
		{
			name:       "valid X-API-Key accepted",
			apiKeys:    []string{"secret-key-12345"},
			header:     map[string]string{"X-API-Key": "secret-key-12345"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid bearer token accepted",
			apiKeys:    []string{"secret-key-12345"},
			header:     map[string]string{"Authorization": "Bearer secret-key-12345"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid key rejected",
			apiKeys:    []string{"secret-key-12345"},
			header:     map[string]string{"X-API-Key": "wrong-key"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   errors.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.APIKeys = tt.apiKeys
			s := testServer(cfg)

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			s.authMiddleware(okHandler)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				resp := decodeEnvelope(t, rec)
				if resp.Success {
					t.Error("expected failure envelope")
				}
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Errorf("error code = %v, want %s", resp.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RateLimit = config.RateLimitConfig{
		Enabled:           true,
		RequestsPerWindow: 2,
		Window:            time.Minute,
		ByIP:              true,
	}
	s := testServer(cfg)
	s.limiter = ratelimit.NewMemoryLimiter(2, time.Minute)

	handler := s.rateLimitMiddleware(okHandler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.RemoteAddr = "10.0.0.1:4567"
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on denial")
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != errors.ErrCodeRateLimited {
		t.Errorf("error code = %v, want %s", resp.Error, errors.ErrCodeRateLimited)
	}

	// A different client is unaffected
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.RemoteAddr = "10.0.0.2:4567"
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	s := testServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	s.rateLimitMiddleware(okHandler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with no limiter", rec.Code)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name     string
		byAPIKey bool
		byIP     bool
		header   map[string]string
		remote   string
		want     string
	}{
		{
			name:     "api key preferred",
			byAPIKey: true,
			byIP:     true,
			header:   map[string]string{"X-API-Key": "abc"},
			remote:   "10.0.0.1:80",
			want:     "key:abc",
		},
		{
			name:     "ip fallback without key",
			byAPIKey: true,
			byIP:     true,
			remote:   "10.0.0.1:80",
			want:     "ip:10.0.0.1",
		},
		{
			name:   "forwarded header wins",
			byIP:   true,
			header: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			remote: "10.0.0.1:80",
			want:   "ip:203.0.113.9",
		},
		{
			name:   "neither dimension enabled",
			remote: "10.0.0.1:80",
			want:   "global",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.RateLimit.ByAPIKey = tt.byAPIKey
			cfg.Server.RateLimit.ByIP = tt.byIP
			s := testServer(cfg)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			if got := s.clientKey(req); got != tt.want {
				t.Errorf("clientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.MaxRequestSize = 16
	s := testServer(cfg)

	handler := s.requestSizeLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		if err := parseJSONRequest(r, &v); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"email":"someone-with-a-long-address@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for oversize body", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != errors.ErrCodeFieldTooLong {
		t.Errorf("error code = %v, want %s", resp.Error, errors.ErrCodeFieldTooLong)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"short", "****"},
		{"12345678", "****"},
		{"123456789abcdef", "12345678****"},
	}
	for _, tt := range tests {
		if got := maskAPIKey(tt.input); got != tt.want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
