package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()

	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("failed to unmarshal defaults: %v", err)
	}
	cfg.applyFallbacks()
	return &cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := loadDefaults(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
}

func TestOperationConfigFallbacks(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.AI.APIKey = "global-key"
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.AI.MaxRetries = 3

	tests := []struct {
		operation       string
		wantTemperature float32
		wantTimeout     time.Duration
	}{
		{OpTailor, 0.3, 90 * time.Second},
		{OpContext, 0.1, 60 * time.Second},
		{OpUniqueness, 0.2, 60 * time.Second},
		{OpImpact, 0.1, 60 * time.Second},
		{OpCompany, 0.2, 75 * time.Second},
		{OpSoftSkills, 0.5, 45 * time.Second},
		{OpTemplate, 0.1, 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			op := cfg.OperationConfig(tt.operation)
			if op.APIKey != "global-key" {
				t.Errorf("APIKey = %q, want fallback to global key", op.APIKey)
			}
			if op.Model == "" {
				t.Error("Model should fall back to global model")
			}
			if op.Temperature == nil || *op.Temperature != tt.wantTemperature {
				t.Errorf("Temperature = %v, want %v", op.Temperature, tt.wantTemperature)
			}
			if op.Timeout == nil || *op.Timeout != tt.wantTimeout {
				t.Errorf("Timeout = %v, want %v", op.Timeout, tt.wantTimeout)
			}
			if op.MaxRetries == nil {
				t.Error("MaxRetries should fall back to global value")
			}
		})
	}
}

func TestOperationConfigOverrides(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.AI.APIKey = "global-key"

	timeout := 10 * time.Second
	cfg.AI.Context.Model = "gemini-2.5-pro"
	cfg.AI.Context.APIKey = "context-key"
	cfg.AI.Context.Timeout = &timeout

	op := cfg.OperationConfig(OpContext)
	if op.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want operation override", op.Model)
	}
	if op.APIKey != "context-key" {
		t.Errorf("APIKey = %q, want operation override", op.APIKey)
	}
	if *op.Timeout != timeout {
		t.Errorf("Timeout = %v, want %v", *op.Timeout, timeout)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.AI.Provider = "not-a-provider" }},
		{"zero rate limit", func(c *Config) { c.Server.RateLimit.RequestsPerWindow = 0 }},
		{"negative window", func(c *Config) { c.Server.RateLimit.Window = -time.Second }},
		{"bad page size", func(c *Config) { c.PDF.PageSize = "Legal" }},
		{"maxWait below pollInterval", func(c *Config) {
			c.Scraper.PollInterval = time.Minute
			c.Scraper.MaxWait = time.Second
		}},
		{"bad TLS mode", func(c *Config) { c.Server.TLS.Mode = "sideways" }},
		{"server TLS without cert", func(c *Config) { c.Server.TLS.Mode = "server" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "svc", Password: "hunter2",
		Name: "tailorbase", SSLMode: "require",
	}
	want := "host=db.internal port=5433 user=svc password=hunter2 dbname=tailorbase sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
