package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"updatewatch/internal/config"
	"updatewatch/internal/infra/telemetry"
	"updatewatch/internal/notifier"
)

func newRunCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the polling daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			metrics := telemetry.NewPrometheusMetrics(registry)
			presenter := newConsolePresenter(cmd.InOrStdin(), cmd.OutOrStdout(), opts.noPrompt)

			notif, stateStore := buildComponents(cfg, opts, presenter, metrics)
			defer func() {
				if err := stateStore.Close(); err != nil {
					opts.logger.Warn("state store close failed", zap.Error(err))
				}
			}()

			poller := notifier.NewPoller(notif, notifier.PollerOptions{
				Logger:            opts.logger,
				Interval:          cfg.PollInterval(),
				HonorFeedInterval: cfg.Poll.HonorFeedInterval,
				Metrics:           metrics,
			})

			ctx := cmd.Context()
			serverErr := make(chan error, 1)
			go func() {
				serverErr <- telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
					Addr:          cfg.Observability.ListenAddress,
					EnableMetrics: cfg.Observability.Metrics,
					EnableHealthz: cfg.Observability.Healthz,
					Registry:      registry,
				}, opts.logger)
			}()

			// Config edits take effect without a restart; only the poll
			// interval is applied live, feed URLs need a restart.
			go func() {
				err := config.Watch(ctx, opts.configPath, opts.logger, func(next config.Config) {
					poller.SetInterval(next.PollInterval())
				})
				if err != nil {
					opts.logger.Warn("config watch disabled", zap.Error(err))
				}
			}()

			opts.logger.Info("updatewatch daemon started",
				zap.String("announcements_url", cfg.Feeds.AnnouncementsURL),
				zap.String("catalog_url", cfg.Feeds.CatalogURL),
				zap.Duration("interval", cfg.PollInterval()),
			)
			poller.Start()

			<-ctx.Done()
			opts.logger.Info("shutting down")
			if err := poller.StopWithTimeout(stopTimeout); err != nil {
				opts.logger.Warn("poll cycle did not finish before shutdown", zap.Error(err))
			}
			if err := <-serverErr; err != nil {
				return err
			}
			return nil
		},
	}
}
