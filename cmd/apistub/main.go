// Package main provides the CLI entrypoint for apistub.
//
// apistub extracts the public API surface of type definitions:
//   - Loads Go packages, Python sources and YAML manifests
//   - Builds one node tree per type (fields and methods, canonical type names)
//   - Prints the trees as YAML or JSON and stores them as snapshots
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"apistub/internal/config"
)

// app carries the settings resolved before a subcommand runs.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	var (
		dbPath   string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "apistub",
		Short: "Extract the public API surface of type definitions",
		Long: `apistub reads Go packages, Python sources and YAML manifests and
builds one node tree per type: its public fields and methods with
canonical type names. Trees can be printed or stored as snapshots.

Settings come from the environment (APISTUB_*), a .env file, then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}

			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = strings.ToLower(logLevel)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = cfg.Logger(cmd.ErrOrStderr())

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", a.cfg.DBPath, "snapshot database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(scanCmd(a))
	rootCmd.AddCommand(snapshotsCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(deleteCmd(a))
	rootCmd.AddCommand(membersCmd(a))

	return rootCmd
}
