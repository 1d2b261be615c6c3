package ai

import (
	"testing"
	"time"

	"tailorbase/internal/config"

	"google.golang.org/genai"
)

func breakerConfig(maxRequests uint32, minRequests uint32, threshold float64) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      maxRequests,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      minRequests,
			FailureThreshold: threshold,
		},
	}
}

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	tailorCB := NewCircuitBreaker("tailor", breakerConfig(3, 3, 0.6), nil)
	contextCB := NewCircuitBreaker("context", breakerConfig(5, 2, 0.7), nil)

	tests := []struct {
		name     string
		cb       *CircuitBreaker
		wantName string
	}{
		{"tailor breaker", tailorCB, "ai-tailor"},
		{"context breaker", contextCB, "ai-context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.cb.Stats()

			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("circuit breaker name not found")
			}
			if name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, name)
			}

			state, ok := stats["state"].(string)
			if !ok {
				t.Fatal("circuit breaker state not found")
			}
			if state != "closed" {
				t.Errorf("expected initial state closed, got %q", state)
			}

			if !tt.cb.IsHealthy() {
				t.Error("expected new breaker to be healthy")
			}
		})
	}
}

func TestDisabledCircuitBreakerIsNil(t *testing.T) {
	cfg := &config.OperationAIConfig{
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: false},
	}

	cb := NewCircuitBreaker("tailor", cfg, nil)
	if cb != nil {
		t.Fatal("expected nil breaker when disabled")
	}

	// nil breakers pass calls straight through
	called := false
	result, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil {
		t.Fatalf("nil breaker Execute returned error: %v", err)
	}
	if !called || result == nil {
		t.Error("nil breaker should invoke the function directly")
	}

	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	if enabled, _ := cb.Stats()["enabled"].(bool); enabled {
		t.Error("nil breaker stats should report enabled=false")
	}
}

func TestDisabledModelCircuitBreakerIsNil(t *testing.T) {
	cfg := &config.OperationAIConfig{
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: false},
	}

	mb := NewModelCircuitBreaker("tailor", cfg, nil)
	if mb != nil {
		t.Fatal("expected nil model breaker when disabled")
	}

	model, err := mb.ExecuteModel(func() (*genai.Model, error) {
		return &genai.Model{Name: "gemini-2.5-flash"}, nil
	})
	if err != nil {
		t.Fatalf("nil model breaker ExecuteModel returned error: %v", err)
	}
	if model == nil || model.Name != "gemini-2.5-flash" {
		t.Error("nil model breaker should invoke the function directly")
	}
	if !mb.IsHealthy() {
		t.Error("nil model breaker should report healthy")
	}
}
