// Package cli implements the sdm-tools command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lsst/sdm-tools/internal/logging"
)

var version = "dev"

// rootState carries state shared by all subcommands, populated by the
// root command's PersistentPreRunE.
type rootState struct {
	logger   *slog.Logger
	closeLog func() error
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		logFile  string
		noColor  bool
	)
	state := &rootState{}

	rootCmd := &cobra.Command{
		Use:           "sdm-tools",
		Short:         "SDM Tools Command Line Interface",
		Long:          "Tools for working with Science Data Model schemas: band column consistency checks, schema comparison, and DataLink metadata.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("log-level") {
				if v := os.Getenv("SDM_TOOLS_LOGLEVEL"); v != "" {
					logLevel = v
				}
			}
			if !cmd.Flags().Changed("log-file") {
				if v := os.Getenv("SDM_TOOLS_LOGFILE"); v != "" {
					logFile = v
				}
			}
			logger, closeLog, err := logging.New(logging.Options{
				Level:   logLevel,
				File:    logFile,
				NoColor: noColor,
			})
			if err != nil {
				return err
			}
			state.logger = logger
			state.closeLog = closeLog
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if state.closeLog != nil {
				return state.closeLog()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")

	rootCmd.AddCommand(newCheckCmd(state))
	rootCmd.AddCommand(newCompareCmd(state))
	rootCmd.AddCommand(newDatalinkCmd(state))

	return rootCmd
}

// parseCommaSeparated splits a comma-separated flag value, dropping
// empty entries.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
