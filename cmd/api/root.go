package main

import (
	"catalog-api/internal/config"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "catalog-api",
		Short:        "Catalog API: users, products and token authentication",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCreateUserCmd())

	return cmd
}

// loadConfig reads configuration. Failures reach the user through cobra's
// error output, since the configured logger does not exist yet.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}
