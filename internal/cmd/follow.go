package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/y2logs/internal/logging"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/metrics"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/tailer"
	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

func newFollowCmd() *cobra.Command {
	var (
		qf          queryFlags
		fromStart   bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "follow FILE",
		Short: "Tail a YaST2 log file and print matching entries",
		Long: `Follow watches a y2log file for new entries, surviving log rotation,
and prints entries that match the given predicates as they arrive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Global().WithComponent("follow")

			empty := y2log.NewLog(nil)
			query := empty.Query()
			if err := qf.apply(cmd, query); err != nil {
				return err
			}

			collector := metrics.NewCollector()
			if metricsAddr != "" {
				go func() {
					if err := collector.Serve(metricsAddr); err != nil {
						logger.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
					}
				}()
			}

			t, err := tailer.New(tailer.Config{
				Path:      args[0],
				FromStart: fromStart,
			}, logging.Global(), collector)
			if err != nil {
				return fmt.Errorf("starting tailer: %w", err)
			}
			if err := t.Start(); err != nil {
				return fmt.Errorf("starting tailer: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				t.Stop()
			}()

			out := cmd.OutOrStdout()
			for entry := range t.Entries() {
				if !query.Matches(entry) {
					continue
				}
				collector.EntriesMatched.Inc()
				fmt.Fprintln(out, entry)
			}

			return nil
		},
	}

	qf.register(cmd)
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "read the file from the beginning instead of the end")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}
