package config

import (
	"os"
	"strings"
)

// Operation names used across config, AI services and metrics
const (
	OpTailor     = "tailor"
	OpContext    = "context"
	OpUniqueness = "uniqueness"
	OpImpact     = "impact"
	OpCompany    = "company"
	OpSoftSkills = "soft_skills"
	OpTemplate   = "template"
)

// applyFallbacks applies environment variable fallbacks after unmarshalling
func (c *Config) applyFallbacks() {
	// Legacy key support, matches what deployments already export
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if len(c.Server.APIKeys) == 0 {
		if keys := os.Getenv("TAILORBASE_SERVER_APIKEYS"); keys != "" {
			c.Server.APIKeys = strings.Split(keys, ",")
			for i, key := range c.Server.APIKeys {
				c.Server.APIKeys[i] = strings.TrimSpace(key)
			}
		}
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = c.Observability.ServiceName + "-" + hostname
		} else {
			c.Observability.ServiceInstance = c.Observability.ServiceName + "-1"
		}
	}
}

// applyOperationDefaults fills an operation config from the global AI config
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// OperationConfig returns the resolved AI configuration for the named
// operation, falling back to the global AI config for unset fields.
func (c *Config) OperationConfig(operation string) OperationAIConfig {
	var cfg OperationAIConfig

	switch operation {
	case OpTailor:
		cfg = c.AI.Tailor
	case OpContext:
		cfg = c.AI.Context
	case OpUniqueness:
		cfg = c.AI.Uniqueness
	case OpImpact:
		cfg = c.AI.Impact
	case OpCompany:
		cfg = c.AI.Company
	case OpSoftSkills:
		cfg = c.AI.SoftSkills
	case OpTemplate:
		cfg = c.AI.Template
		// Vision operations default to the configured vision model
		if cfg.Model == "" {
			cfg.Model = c.AI.VisionModel
		}
	}

	c.applyOperationDefaults(&cfg)
	return cfg
}

// Operations lists each AI operation the service performs
func Operations() []string {
	return []string{OpTailor, OpContext, OpUniqueness, OpImpact, OpCompany, OpSoftSkills, OpTemplate}
}
