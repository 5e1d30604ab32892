package main

import (
	"log/slog"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps/helpcenter"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := database.Connect(loadConfig()); err != nil {
				return err
			}
			defer database.Close()

			if err := migrate(newPlugins(events.Noop{}, nil, nil)); err != nil {
				return err
			}
			slog.Info("migration complete")
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, commonFlags)
	return cmd
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert default plans, legal documents and help content",
		Long:  "Insert default plans, legal documents and help center content. Existing rows are kept, so the command is safe to repeat.",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := database.Connect(loadConfig()); err != nil {
				return err
			}
			defer database.Close()

			if err := migrate(newPlugins(events.Noop{}, nil, nil)); err != nil {
				return err
			}
			if err := database.SeedDefaults(database.DB); err != nil {
				return err
			}
			if err := helpcenter.Seed(database.DB); err != nil {
				return err
			}
			slog.Info("seed complete")
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, commonFlags)
	return cmd
}
