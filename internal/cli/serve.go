package cli

import (
	"github.com/spf13/cobra"

	"tailorbase/internal/ai"
	"tailorbase/internal/config"
	"tailorbase/internal/ratelimit"
	"tailorbase/internal/scraper"
	"tailorbase/internal/server"
	"tailorbase/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	registerServeFlags(serveCmd)
}

func registerServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "", "listen host (overrides configuration)")
	cmd.Flags().StringP("port", "p", "", "listen port (overrides configuration)")
	cmd.Flags().String("tls-mode", "", "TLS mode: disabled, server or mutual")
	cmd.Flags().String("cert-file", "", "TLS certificate file")
	cmd.Flags().String("key-file", "", "TLS private key file")
	cmd.Flags().String("ca-file", "", "CA bundle for mutual TLS")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd, cfg)

	if err := cfg.ValidateTLSConfig(); err != nil {
		return err
	}

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if err := store.Migrate(db); err != nil {
		return err
	}

	aiService, err := ai.NewService(cfg, logger)
	if err != nil {
		return err
	}

	limiter, err := ratelimit.New(cfg.Server.RateLimit, cfg.Redis, logger)
	if err != nil {
		return err
	}

	deps := server.Dependencies{
		Store:   store.New(db),
		AI:      aiService,
		Limiter: limiter,
		Scraper: scraper.NewClient(cfg.Scraper, logger),
	}
	return server.NewServer(cfg, Version, deps, logger).Start()
}

// applyServeFlags copies explicitly set flags over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("tls-mode") {
		cfg.Server.TLS.Mode, _ = flags.GetString("tls-mode")
	}
	if flags.Changed("cert-file") {
		cfg.Server.TLS.CertFile, _ = flags.GetString("cert-file")
	}
	if flags.Changed("key-file") {
		cfg.Server.TLS.KeyFile, _ = flags.GetString("key-file")
	}
	if flags.Changed("ca-file") {
		cfg.Server.TLS.CAFile, _ = flags.GetString("ca-file")
	}
}
