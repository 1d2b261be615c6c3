package common

import (
	"fmt"

	"tailorbase/internal/config"
)

// ValidateOutputFormat checks whether format is one of supportedFormats.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	for _, supported := range supportedFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats)
}

// GetSupportedFormats returns the configured output formats, falling back to
// the built-in set when the configuration leaves them empty.
func GetSupportedFormats(cfg *config.Config) []string {
	if cfg != nil && len(cfg.App.SupportedFormats) > 0 {
		return cfg.App.SupportedFormats
	}
	return []string{"json", "text", "markdown"}
}
