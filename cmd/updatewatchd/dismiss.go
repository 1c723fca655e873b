package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"updatewatch/internal/config"
	"updatewatch/internal/domain"
)

func newDismissCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <announcement-id>",
		Short: "Dismiss an announcement so it no longer appears",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if id == "" {
				return domain.E(domain.CodeInvalidArgument, "dismiss", "announcement id must not be empty", nil)
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			presenter := newConsolePresenter(cmd.InOrStdin(), cmd.OutOrStdout(), true)
			notif, stateStore := buildComponents(cfg, opts, presenter, domain.NopMetrics{})
			defer func() {
				if err := stateStore.Close(); err != nil {
					opts.logger.Warn("state store close failed", zap.Error(err))
				}
			}()

			if err := notif.Dismiss(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s\n", id)
			return nil
		},
	}
}
