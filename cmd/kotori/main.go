// Command kotori runs the demo application: an HTTP server, a CLI entry
// point for "cli" routes and database maintenance commands.
package main

import (
	"embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kotori/middlewares"
	"github.com/dmitrymomot/kotori/pkg/config"
	"github.com/dmitrymomot/kotori/pkg/logger"
)

//go:embed routes.yaml
var defaultRoutes []byte

//go:embed migrations/*.sql
var migrations embed.FS

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "kotori",
	Short:         "Kotori demo application",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			cfg.App.Debug = true
			cfg.Log.Level = "debug"
		}
		if _, err := cfg.ApplyTimeZone(); err != nil {
			return err
		}
		log = logger.NewWithConfig(cfg.Log, os.Stderr, middlewares.RequestIDExtractor()).
			With("component", cfg.App.Name)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "show error details and log SQL")
	rootCmd.AddCommand(serveCmd, callCmd, routesCmd, migrateCmd, healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
