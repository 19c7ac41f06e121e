package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/y2logs/internal/export"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/logging"
	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

func newFilterCmd() *cobra.Command {
	var (
		qf     queryFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "filter FILE",
		Short: "Filter YaST2 log entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filtered, err := loadFiltered(cmd, args[0], &qf)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(w)
				for _, entry := range filtered.Entries() {
					if err := enc.Encode(export.NewDocument(entry)); err != nil {
						return err
					}
				}
			case "text":
				for _, entry := range filtered.Entries() {
					fmt.Fprintln(w, entry)
				}
			default:
				return fmt.Errorf("invalid output format %q (expected text or json)", output)
			}

			return nil
		},
	}

	qf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json")

	return cmd
}

// loadFiltered reads and parses a y2log file and applies the predicate
// flags, returning the filtered log.
func loadFiltered(cmd *cobra.Command, path string, qf *queryFlags) (y2log.Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return y2log.Log{}, fmt.Errorf("failed to read log file: %w", err)
	}

	log, err := y2log.ParseLog(string(data))
	if err != nil {
		return y2log.Log{}, err
	}

	query := log.Query()
	if err := qf.apply(cmd, query); err != nil {
		return y2log.Log{}, err
	}

	filtered := query.ToLog()
	logging.Global().Debug().
		Str("file", path).
		Int("entries", log.Len()).
		Int("matched", filtered.Len()).
		Msg("Filtered log")

	return filtered, nil
}
