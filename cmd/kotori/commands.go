package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kotori"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/health"
	"github.com/dmitrymomot/kotori/pkg/route"
)

var errUnhealthy = errors.New("kotori: service is unhealthy")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.App.Addr
		}

		app, _, err := buildApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return app.Run(addr,
			kotori.Logger(log),
			kotori.ShutdownTimeout(cfg.App.ShutdownTimeout),
		)
	},
}

var callCmd = &cobra.Command{
	Use:   "call <uri>",
	Short: "Dispatch a uri through the route table with the cli verb",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, svc, err := buildApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		return app.Call(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadRoutes(cfg.App.RoutesFile)
		if err != nil {
			return err
		}
		return printRoutes(cmd, table)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := db.Open(cmd.Context(), cfg.DB, db.WithLogger(log))
		if err != nil {
			return err
		}
		defer d.Close()

		sub, err := fs.Sub(migrations, "migrations")
		if err != nil {
			return err
		}
		return db.Migrate(cmd.Context(), d, sub, cfg.DB.MigrationsTable, log)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the configured cache and database",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := buildApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		resp := health.Run(cmd.Context(), svc.checks(), health.WithLogger(log))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if resp.Status != health.StatusHealthy {
			return errUnhealthy
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default HTTP_ADDR)")
}

func printRoutes(cmd *cobra.Command, table *route.Table) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tVERB\tTARGET")
	for _, rule := range table.Rules() {
		for _, verb := range slices.Sorted(maps.Keys(rule.Targets)) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", rule.Pattern, verb, rule.Targets[verb])
		}
	}
	fmt.Fprintf(w, "(default)\t*\t%s/%s\n", table.DefaultController(), table.DefaultAction())
	return w.Flush()
}
