package main

import (
	"errors"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pingcard/pingcard/internal/config"
	"github.com/spf13/cobra"
)

var (
	migrateSource string
	migrateDown   bool
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Create or drop the card handle table",
	Args:        cobra.NoArgs,
	Annotations: structuredLogAnnotation(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithOptions(config.LoadOptions{RequireDatabaseURL: true})
		if err != nil {
			return err
		}

		m, err := migrate.New(migrateSource, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()

		apply, direction := m.Up, "up"
		if migrateDown {
			apply, direction = m.Down, "down"
		}
		if err := apply(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				slog.Info("no changes to apply", "direction", direction)
				return nil
			}
			return err
		}

		slog.Info("migrations applied successfully", "direction", direction)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSource, "source", "file://db/migrations", "migration source URL")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back all migrations")
}
