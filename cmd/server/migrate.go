package main

import (
	"fmt"

	"github.com/SAP-F-2025/interview-service/internal/config"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables or indexes for the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := utils.ToSlogLogger(utils.NewLogger(cfg.Environment))

		ctx := cmd.Context()
		store, err := openStorage(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.close(ctx)

		if err := store.migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Migration completed", "driver", cfg.Database.Driver)
		return nil
	},
}
