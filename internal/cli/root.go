// Package cli implements the tailorbase command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tailorbase/internal/common"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
)

type contextKey string

const (
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

var rootCmd = &cobra.Command{
	Use:   "tailorbase",
	Short: "AI-assisted resume tailoring",
	Long: `Tailorbase analyzes and tailors resumes against job descriptions.

Run the HTTP API with "tailorbase serve", or use the file-based commands
(tailor, analyze-context, analyze-impact) for one-off analysis.`,
	SilenceUsage: true,
}

// Execute runs the root command with the configuration and logger attached
// to the command context.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return rootCmd.ExecuteContext(ctx)
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		panic("configuration missing from command context")
	}
	return cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	logger, ok := ctx.Value(loggerKey).(*errors.Logger)
	if !ok {
		panic("logger missing from command context")
	}
	return logger
}

// addOutputFlags registers the -o/--format flags shared by the AI commands.
func addOutputFlags(cmd *cobra.Command, cfg *common.CommandConfig) {
	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "",
		"write output to a file instead of stdout")
	cmd.Flags().StringVar(&cfg.OutputFormat, "format", "",
		"output format (json, text, markdown)")
	_ = cmd.RegisterFlagCompletionFunc("format",
		func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{"json", "text", "markdown"}, cobra.ShellCompDirectiveNoFileComp
		})
}

// validateFormatFlag resolves the default output format from configuration
// and rejects unsupported formats before the command runs.
func validateFormatFlag(cmdCfg *common.CommandConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if cmdCfg.OutputFormat == "" {
			cmdCfg.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(cmdCfg.OutputFormat, common.GetSupportedFormats(cfg))
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tailorCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(versionCmd)
}
