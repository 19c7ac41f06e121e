// Package cmd wires the y2logs command-line interface. Commands are
// thin: they read files, translate flags into query predicates 1:1 and
// print entries; all parsing and filtering lives in pkg/y2log.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/y2logs/internal/logging"
)

var version = "0.1.0"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "y2logs",
		Short: "Inspect, filter and ship YaST2 log files",
		Long: `y2logs parses YaST2 log files (y2log) into structured entries and
filters them by level, process, component, hostname and time range.
Entries can be printed, summarized, followed live or exported to
Elasticsearch, Kafka or S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetGlobal(logging.New(logging.Config{
				Level:  logLevel,
				Format: logFormat,
			}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "diagnostic verbosity (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "diagnostic format: console, json")

	rootCmd.AddCommand(newFilterCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newFollowCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
