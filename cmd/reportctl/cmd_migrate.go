package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-reporter/internal/app"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

var migrateFlags struct {
	down bool
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply report index migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateFlags.down, "down", false, "Roll back instead of applying")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	direction := migrate.Up
	if migrateFlags.down {
		direction = migrate.Down
	}
	n, err := database.Migrate(db, cfg.Database.MigrationsDir, direction, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
	return nil
}
