// Package cli defines the command-line surface: subcommands for cache
// initialization, incremental updates, mail and wiki operations, and report
// rendering.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ProposalScanner/internal/app"
	"ProposalScanner/internal/config"
	"ProposalScanner/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "proposalscanner",
	Short: "Track improvement proposals across mailing lists and wiki pages",
	Long: `proposalscanner correlates archived mailing-list discussion with
wiki page trees to track the lifecycle and attention status of a
project's improvement proposals.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildApp() (*app.Application, config.Config, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, cfg, fmt.Errorf("build application: %w", err)
	}
	return application, cfg, nil
}
