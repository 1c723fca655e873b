package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"updatewatch/internal/config"
	"updatewatch/internal/domain"
	"updatewatch/internal/infra/feed"
)

func newAnnouncementsCmd(opts *cliOptions) *cobra.Command {
	var includeDismissed bool

	cmd := &cobra.Command{
		Use:   "announcements",
		Short: "Fetch and print active announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			presenter := newConsolePresenter(cmd.InOrStdin(), cmd.OutOrStdout(), true)
			stateStore := openStore(cfg, opts)
			defer func() {
				if err := stateStore.Close(); err != nil {
					opts.logger.Warn("state store close failed", zap.Error(err))
				}
			}()

			client := feed.NewClient(feed.ClientOptions{
				AnnouncementsURL: cfg.Feeds.AnnouncementsURL,
				CatalogURL:       cfg.Feeds.CatalogURL,
				Timeout:          cfg.RequestTimeout(),
				Logger:           opts.logger,
			})

			announcementFeed, err := client.FetchAnnouncements(cmd.Context())
			if err != nil {
				return err
			}

			var dismissed domain.DismissalSet
			if !includeDismissed {
				dismissed, err = stateStore.Dismissed()
				if err != nil {
					opts.logger.Warn("dismissed lookup failed, showing all announcements", zap.Error(err))
					dismissed = nil
				}
			}

			selected := domain.SelectAnnouncements(announcementFeed.DomainAnnouncements(), dismissed)

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), selected)
			}
			if len(selected) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No active announcements.")
				return nil
			}
			return presenter.ShowAnnouncements(cmd.Context(), selected)
		},
	}

	cmd.Flags().BoolVar(&includeDismissed, "all", false, "include dismissed announcements")
	return cmd
}
