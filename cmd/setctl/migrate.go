package main

import (
	"github.com/spf13/cobra"

	"github.com/Harsh-BH/SetForge/internal/app"
	"github.com/Harsh-BH/SetForge/internal/config"
	"github.com/Harsh-BH/SetForge/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.Database.AutoMigrate = false

		dbPool, err := app.ConnectPostgres(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		if err := migrations.Up(cmd.Context(), dbPool, logger); err != nil {
			return err
		}
		logger.Info("Database migrated")
		return nil
	},
}
