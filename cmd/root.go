// Package cmd wires the CLI commands for the wikipedizer executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/app"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikipedizer",
		Short: "Multi-source reference material aggregator.",
		Long: `wikipedizer collects reference content for a catalog of study topics
from Wikipedia, NASA, ESA, and curated educational sites, caches what it
fetches, and renders one formatted study file per topic plus a run index.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	return cmd
}

// Execute runs the CLI, exiting non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
