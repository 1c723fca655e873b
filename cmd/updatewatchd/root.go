package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"updatewatch/internal/config"
	"updatewatch/internal/domain"
	"updatewatch/internal/infra/feed"
	"updatewatch/internal/infra/store"
	"updatewatch/internal/infra/telemetry"
	"updatewatch/internal/notifier"
)

type cliOptions struct {
	configPath string
	debug      bool
	jsonOutput bool
	noPrompt   bool
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		configPath: "updatewatch.yaml",
		logger:     zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "updatewatchd",
		Short:         "Audio ID catalog update and announcement notifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := telemetry.NewLogger(opts.debug)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().BoolVar(&opts.noPrompt, "no-prompt", false, "never prompt; defer any available update")

	root.AddCommand(
		newRunCmd(&opts),
		newCheckCmd(&opts),
		newAnnouncementsCmd(&opts),
		newDismissCmd(&opts),
		newServiceCmd(&opts),
	)

	return root
}

// buildComponents wires the store, feed client, and notifier from config.
// A store that cannot be opened degrades to an in-memory one: the session
// works, state just does not survive a restart.
func buildComponents(cfg config.Config, opts *cliOptions, presenter domain.Presenter, metrics domain.Metrics) (*notifier.Notifier, domain.StateStore) {
	stateStore := openStore(cfg, opts)

	client := feed.NewClient(feed.ClientOptions{
		AnnouncementsURL: cfg.Feeds.AnnouncementsURL,
		CatalogURL:       cfg.Feeds.CatalogURL,
		Timeout:          cfg.RequestTimeout(),
		Logger:           opts.logger,
	})

	return notifier.New(notifier.Options{
		Logger:    opts.logger,
		Feeds:     client,
		Store:     stateStore,
		Presenter: presenter,
		Metrics:   metrics,
	}), stateStore
}

// openStore opens the persistent state store, falling back to an
// in-memory one so a corrupt or locked database never blocks a cycle.
func openStore(cfg config.Config, opts *cliOptions) domain.StateStore {
	persistent, err := store.Open(cfg.Store.Path)
	if err != nil {
		opts.logger.Warn("state store unavailable, continuing in memory",
			zap.String("path", cfg.Store.Path),
			zap.Error(err),
		)
		return store.NewMemory()
	}
	return persistent
}

const stopTimeout = 10 * time.Second
