package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"updatewatch/internal/config"
	"updatewatch/internal/infra/daemon"
)

func newServiceCmd(opts *cliOptions) *cobra.Command {
	var binaryPath string
	var logPath string

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the background service",
	}
	cmd.PersistentFlags().StringVar(&binaryPath, "binary", "", "updatewatchd executable to register (default: resolve from PATH)")
	cmd.PersistentFlags().StringVar(&logPath, "log", config.DefaultLogPath(), "daemon log file")

	newManager := func() (*daemon.Manager, error) {
		return daemon.NewManager(daemon.Options{
			BinaryPath: binaryPath,
			ConfigPath: opts.configPath,
			LogPath:    logPath,
		})
	}

	action := func(use, short string, run func(ctx context.Context, m *daemon.Manager) (daemon.Status, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				manager, err := newManager()
				if err != nil {
					return err
				}
				status, err := run(cmd.Context(), manager)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), status)
				}
				printServiceStatus(cmd.OutOrStdout(), status)
				return nil
			},
		}
	}

	cmd.AddCommand(
		action("install", "Install the user-level service", func(ctx context.Context, m *daemon.Manager) (daemon.Status, error) {
			return m.Install(ctx)
		}),
		action("uninstall", "Remove the user-level service", func(ctx context.Context, m *daemon.Manager) (daemon.Status, error) {
			return m.Uninstall(ctx)
		}),
		action("start", "Start the installed service", func(ctx context.Context, m *daemon.Manager) (daemon.Status, error) {
			return m.Start(ctx)
		}),
		action("stop", "Stop the running service", func(ctx context.Context, m *daemon.Manager) (daemon.Status, error) {
			return m.Stop(ctx)
		}),
		action("status", "Report the service status", func(ctx context.Context, m *daemon.Manager) (daemon.Status, error) {
			return m.Status(ctx)
		}),
	)
	return cmd
}

func printServiceStatus(out io.Writer, status daemon.Status) {
	fmt.Fprintf(out, "service:   %s\n", status.ServiceName)
	fmt.Fprintf(out, "installed: %t\n", status.Installed)
	fmt.Fprintf(out, "running:   %t\n", status.Running)
	if status.ConfigPath != "" {
		fmt.Fprintf(out, "config:    %s\n", status.ConfigPath)
	}
	if status.LogPath != "" {
		fmt.Fprintf(out, "log:       %s\n", status.LogPath)
	}
}
