package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/y2logs/internal/config"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/export"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/logging"
	"github.com/therealutkarshpriyadarshi/y2logs/internal/metrics"
)

func newExportCmd() *cobra.Command {
	var (
		qf          queryFlags
		configPath  string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Ship YaST2 log entries to configured sinks",
		Long: `Export parses a y2log file, applies the given predicates and ships the
matching entries to the sinks listed in the configuration file
(Elasticsearch, Kafka, S3).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Global().WithComponent("export")

			filtered, err := loadFiltered(cmd, args[0], &qf)
			if err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			var exporters []export.Exporter
			if cfg.Elasticsearch != nil {
				e, err := export.NewElasticsearchExporter(*cfg.Elasticsearch)
				if err != nil {
					return fmt.Errorf("elasticsearch: %w", err)
				}
				exporters = append(exporters, e)
			}
			if cfg.Kafka != nil {
				e, err := export.NewKafkaExporter(*cfg.Kafka)
				if err != nil {
					return fmt.Errorf("kafka: %w", err)
				}
				exporters = append(exporters, e)
			}
			if cfg.S3 != nil {
				e, err := export.NewS3Exporter(ctx, *cfg.S3)
				if err != nil {
					return fmt.Errorf("s3: %w", err)
				}
				exporters = append(exporters, e)
			}

			// Rate-limited exports of a large log can run for a while;
			// the metrics endpoint makes their progress observable.
			collector := metrics.NewCollector()
			if metricsAddr != "" {
				go func() {
					if err := collector.Serve(metricsAddr); err != nil {
						logger.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
					}
				}()
			}

			entries := filtered.Entries()

			var errs []error
			for _, e := range exporters {
				sent := 0
				failed := 0
				for _, entry := range entries {
					if err := e.Send(ctx, entry); err != nil {
						failed++
						collector.ExportFailed.WithLabelValues(e.Name()).Inc()
						logger.Warn().Err(err).Str("sink", e.Name()).Msg("send failed")
						continue
					}
					sent++
					collector.ExportSent.WithLabelValues(e.Name()).Inc()
				}
				if err := e.Close(); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
				}
				logger.Info().
					Str("sink", e.Name()).
					Int("sent", sent).
					Int("failed", failed).
					Msg("export finished")
				if failed > 0 {
					errs = append(errs, fmt.Errorf("%s: %d entries failed", e.Name(), failed))
				}
			}

			return errors.Join(errs...)
		},
	}

	qf.register(cmd)
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "sink configuration file (required)")
	cmd.MarkFlagRequired("config")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while exporting (e.g. :9090)")

	return cmd
}
