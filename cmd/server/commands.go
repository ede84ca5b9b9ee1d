package main

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/logging"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "daily-diet",
		Short:         "Daily Diet API: users, sessions and meal tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})

	return cmd
}

// loadConfig loads configuration and logs why it is unusable before failing.
func loadConfig() (*config.Config, error) {
	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

func runMigrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("migration completed")
	return nil
}
