package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"tailorbase/internal/config"
)

func newServeTestCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "serve"}
	registerServeFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("setting flag %s: %v", name, err)
		}
	}
	return cmd
}

func TestApplyServeFlags(t *testing.T) {
	tests := []struct {
		name     string
		flags    map[string]string
		wantHost string
		wantPort string
		wantTLS  string
	}{
		{
			name:     "no flags keep configuration",
			flags:    nil,
			wantHost: "0.0.0.0",
			wantPort: "8080",
			wantTLS:  "disabled",
		},
		{
			name:     "set flags override configuration",
			flags:    map[string]string{"host": "127.0.0.1", "port": "9443", "tls-mode": "server"},
			wantHost: "127.0.0.1",
			wantPort: "9443",
			wantTLS:  "server",
		},
		{
			name:     "partial flags override only what was set",
			flags:    map[string]string{"port": "9000"},
			wantHost: "0.0.0.0",
			wantPort: "9000",
			wantTLS:  "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Server: config.ServerConfig{
					Host: "0.0.0.0",
					Port: "8080",
					TLS:  config.TLSConfig{Mode: "disabled"},
				},
			}
			cmd := newServeTestCommand(t, tt.flags)

			applyServeFlags(cmd, cfg)

			if cfg.Server.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", cfg.Server.Host, tt.wantHost)
			}
			if cfg.Server.Port != tt.wantPort {
				t.Errorf("Port = %q, want %q", cfg.Server.Port, tt.wantPort)
			}
			if cfg.Server.TLS.Mode != tt.wantTLS {
				t.Errorf("TLS.Mode = %q, want %q", cfg.Server.TLS.Mode, tt.wantTLS)
			}
		})
	}
}

func TestApplyServeFlagsTLSFiles(t *testing.T) {
	cfg := &config.Config{}
	cmd := newServeTestCommand(t, map[string]string{
		"cert-file": "/etc/tls/server.crt",
		"key-file":  "/etc/tls/server.key",
		"ca-file":   "/etc/tls/ca.pem",
	})

	applyServeFlags(cmd, cfg)

	if cfg.Server.TLS.CertFile != "/etc/tls/server.crt" {
		t.Errorf("CertFile = %q", cfg.Server.TLS.CertFile)
	}
	if cfg.Server.TLS.KeyFile != "/etc/tls/server.key" {
		t.Errorf("KeyFile = %q", cfg.Server.TLS.KeyFile)
	}
	if cfg.Server.TLS.CAFile != "/etc/tls/ca.pem" {
		t.Errorf("CAFile = %q", cfg.Server.TLS.CAFile)
	}
}
