package config

import (
	"fmt"
	"os"
	"strings"

	"tailorbase/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault (KV v2 paths)
type VaultSecrets struct {
	// AIKey points at a secret with a "key" field holding the Gemini API key
	AIKey string `mapstructure:"aiKey"`
	// DatabasePassword points at a secret with a "password" field
	DatabasePassword string `mapstructure:"databasePassword"`
	// ServerAPIKeys points at a secret with a comma-separated "keys" field
	ServerAPIKeys string `mapstructure:"serverAPIKeys"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration. Returns
// (nil, nil) when Vault integration is disabled.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Failed to create Vault client", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	// Fail fast on unreachable Vault rather than at first secret read
	if _, err := client.Sys().Health(); err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			fmt.Sprintf("Vault health check failed for %s", apiConfig.Address), err)
	}

	logger.Info("Vault client initialized", "address", apiConfig.Address)

	return &VaultClient{client: client, config: cfg, logger: logger}, nil
}

// resolveVaultToken returns the token from config or a token file
func resolveVaultToken(cfg VaultConfig) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Failed to read Vault token file %s", cfg.TokenFile), err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		return token, nil
	}
	return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
		"Vault enabled but no token, tokenFile or VAULT_TOKEN provided", nil)
}

// readField reads one field from a KV v2 secret path
func (vc *VaultClient) readField(path, field string) (string, error) {
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			fmt.Sprintf("Failed to read Vault secret %s", path), err)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Vault secret %s not found", path), nil)
	}

	// KV v2 nests the payload under "data"
	data := secret.Data
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}

	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Vault secret %s has no %q field", path, field), nil)
	}
	return value, nil
}

// ApplySecrets overwrites config values with secrets fetched from Vault.
// Vault values take precedence over file and environment configuration.
func (vc *VaultClient) ApplySecrets(cfg *Config) error {
	if vc == nil {
		return nil
	}

	if path := vc.config.Secrets.AIKey; path != "" {
		key, err := vc.readField(path, "key")
		if err != nil {
			return err
		}
		cfg.AI.APIKey = key
		vc.logger.Debug("AI API key loaded from Vault", "path", path)
	}

	if path := vc.config.Secrets.DatabasePassword; path != "" {
		password, err := vc.readField(path, "password")
		if err != nil {
			return err
		}
		cfg.Database.Password = password
		vc.logger.Debug("Database password loaded from Vault", "path", path)
	}

	if path := vc.config.Secrets.ServerAPIKeys; path != "" {
		raw, err := vc.readField(path, "keys")
		if err != nil {
			return err
		}
		keys := strings.Split(raw, ",")
		for i, key := range keys {
			keys[i] = strings.TrimSpace(key)
		}
		cfg.Server.APIKeys = keys
		vc.logger.Debug("Server API keys loaded from Vault", "path", path, "count", len(keys))
	}

	return nil
}
