package cli

import (
	"github.com/spf13/cobra"

	"tailorbase/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	if err := store.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database schema is up to date")
	return nil
}
