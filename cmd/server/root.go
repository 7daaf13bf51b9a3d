package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/interview-service/internal/config"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/repositories/mongodb"
	"github.com/SAP-F-2025/interview-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/interview-service/pkg"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "interview-service",
	Short:         "Mock interview practice service",
	Long:          "Runs timed mock interviews, scores them, and tracks progress across attempts.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(scoreCmd)
}

// storage bundles the repositories for the configured driver
type storage struct {
	attempts repositories.AttemptRepository
	progress repositories.ProgressRepository
	migrator repositories.Migrator
	close    func(context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL")
		return &storage{
			attempts: postgres.NewAttemptPostgreSQL(db),
			progress: postgres.NewProgressPostgreSQL(db),
			migrator: postgres.NewMigrator(db),
			close: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil
	case "mongo", "mongodb":
		client, db, err := pkg.NewMongoDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to MongoDB", "database", cfg.Database.MongoDatabase)
		return &storage{
			attempts: mongodb.NewAttemptRepo(db),
			progress: mongodb.NewProgressRepo(db),
			migrator: mongodb.NewMigrator(db),
			close:    client.Disconnect,
		}, nil
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.Database.Driver)
	}
}
