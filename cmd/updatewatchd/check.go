package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"updatewatch/internal/config"
	"updatewatch/internal/domain"
)

func newCheckCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one poll cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			presenter := newConsolePresenter(cmd.InOrStdin(), cmd.OutOrStdout(), opts.noPrompt)
			notif, stateStore := buildComponents(cfg, opts, presenter, domain.NopMetrics{})
			defer func() {
				if err := stateStore.Close(); err != nil {
					opts.logger.Warn("state store close failed", zap.Error(err))
				}
			}()

			result, err := notif.RunCycle(cmd.Context())
			if err != nil {
				return exitWithMessage(1, fmt.Sprintf("check failed: %v", err))
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), checkOutput{
					UpdateAvailable: result.Decision.HasUpdate,
					RemoteVersion:   result.Decision.RemoteVersion,
					NewEntryCount:   result.Decision.NewEntryCount,
					Announcements:   len(result.Announcements),
				})
			}
			if !result.Decision.HasUpdate {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is up to date.")
			}
			return nil
		},
	}
}

type checkOutput struct {
	UpdateAvailable bool   `json:"update_available"`
	RemoteVersion   string `json:"remote_version,omitempty"`
	NewEntryCount   int    `json:"new_entry_count"`
	Announcements   int    `json:"announcements"`
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
