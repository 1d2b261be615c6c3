package common

import (
	"strings"
	"testing"

	"tailorbase/internal/config"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{name: "json is supported", format: "json", wantErr: false},
		{name: "text is supported", format: "text", wantErr: false},
		{name: "markdown is supported", format: "markdown", wantErr: false},
		{name: "unknown format rejected", format: "yaml", wantErr: true},
		{name: "empty format rejected", format: "", wantErr: true},
		{name: "case sensitive", format: "JSON", wantErr: true},
		{name: "whitespace not trimmed", format: " json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, supported)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.format) {
				t.Errorf("error %q should name the rejected format %q", err, tt.format)
			}
		})
	}
}

func TestValidateOutputFormatEmptySupported(t *testing.T) {
	if err := ValidateOutputFormat("json", nil); err == nil {
		t.Error("expected error when no formats are supported")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want []string
	}{
		{
			name: "nil config falls back to defaults",
			cfg:  nil,
			want: []string{"json", "text", "markdown"},
		},
		{
			name: "empty config falls back to defaults",
			cfg:  &config.Config{},
			want: []string{"json", "text", "markdown"},
		},
		{
			name: "configured formats win",
			cfg: &config.Config{
				App: config.AppConfig{SupportedFormats: []string{"json"}},
			},
			want: []string{"json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSupportedFormats(tt.cfg)
			if len(got) != len(tt.want) {
				t.Fatalf("GetSupportedFormats() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("GetSupportedFormats()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supported := []string{"json", "text", "markdown"}
	for b.Loop() {
		_ = ValidateOutputFormat("markdown", supported)
	}
}
