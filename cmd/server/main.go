package main

import (
	"log/slog"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps/billing"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps/builder"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps/contractor"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps/helpcenter"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps/supplier"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
)

const configFlag = "config"

// commonFlags is registered on every subcommand.
var commonFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Optional config file; environment variables still take precedence",
	},
}

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	root := &cobra.Command{
		Use:           "sqb",
		Short:         "DzeNhare SQB marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newSeedCommand())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig honours --config by pointing SQB_CONFIG at it before loading.
func loadConfig() *config.Config {
	if path := commonFlags[configFlag].GetString(); path != "" {
		os.Setenv("SQB_CONFIG", path)
	}
	return config.Load()
}

// newPlugins lists every dashboard. Migration only needs Models, so callers
// that never serve requests may pass zero dependencies.
func newPlugins(publisher events.Publisher, signer storage.URLSigner, filter *services.ContentFilter) []apps.Plugin {
	return []apps.Plugin{
		builder.New(publisher, filter, signer),
		contractor.New(publisher),
		supplier.New(publisher),
		billing.New(signer),
		helpcenter.New(),
	}
}

// migrate creates shared tables first, then each plugin's own tables.
func migrate(plugins []apps.Plugin) error {
	if err := database.MigrateShared(); err != nil {
		return err
	}
	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				return err
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}
	return nil
}
