package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tailorbase/internal/cli"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Vault.Enabled {
		vaultClient, err := config.NewVaultClient(cfg.Vault, logger)
		if err != nil {
			logger.LogError(err, "Failed to connect to Vault")
			os.Exit(1)
		}
		if err := vaultClient.ApplySecrets(cfg); err != nil {
			logger.LogError(err, "Failed to apply Vault secrets")
			os.Exit(1)
		}
	}

	logger.Info("Starting tailorbase",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Command failed")
		os.Exit(1)
	}
}
