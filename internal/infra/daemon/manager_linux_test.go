//go:build linux

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, int, error) {
	r.calls = append(r.calls, strings.Join(append([]string{name}, args...), " "))
	return "inactive", 3, nil
}

func TestManagerInstall_WritesUnitAndRunsCommands(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	binPath := filepath.Join(tempDir, "updatewatchd")
	require.NoError(t, os.WriteFile(binPath, []byte(""), 0o755))

	runner := &fakeRunner{}
	manager, err := NewManager(Options{
		BinaryPath: binPath,
		ConfigPath: "/tmp/updatewatch.yaml",
		LogPath:    "/tmp/updatewatch.log",
		Runner:     runner.Run,
	})
	require.NoError(t, err)

	status, err := manager.Install(context.Background())
	require.NoError(t, err)
	require.True(t, status.Installed)

	unitPath := filepath.Join(tempDir, "systemd", "user", systemdServiceName)
	unitBytes, err := os.ReadFile(unitPath)
	require.NoError(t, err)
	unit := string(unitBytes)
	require.Contains(t, unit, "ExecStart="+binPath+" run --no-prompt --config /tmp/updatewatch.yaml")
	require.Contains(t, unit, "UPDATEWATCH_CONFIG_PATH")
	require.Contains(t, unit, "/tmp/updatewatch.log")

	require.GreaterOrEqual(t, len(runner.calls), 2)
	require.Contains(t, runner.calls[0], "systemctl --user daemon-reload")
	require.Contains(t, runner.calls[1], "systemctl --user enable "+systemdServiceName)
}

func TestManagerUninstall_RemovesUnit(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	binPath := filepath.Join(tempDir, "updatewatchd")
	require.NoError(t, os.WriteFile(binPath, []byte(""), 0o755))

	runner := &fakeRunner{}
	manager, err := NewManager(Options{
		BinaryPath: binPath,
		ConfigPath: "/tmp/updatewatch.yaml",
		Runner:     runner.Run,
	})
	require.NoError(t, err)

	_, err = manager.Install(context.Background())
	require.NoError(t, err)

	status, err := manager.Uninstall(context.Background())
	require.NoError(t, err)
	require.False(t, status.Installed)

	unitPath := filepath.Join(tempDir, "systemd", "user", systemdServiceName)
	_, statErr := os.Stat(unitPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestManagerStatus_NotInstalled(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	manager, err := NewManager(Options{Runner: (&fakeRunner{}).Run})
	require.NoError(t, err)

	status, err := manager.Status(context.Background())
	require.NoError(t, err)
	require.False(t, status.Installed)
	require.False(t, status.Running)
}

func TestManagerStart_NotInstalled(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	binPath := filepath.Join(tempDir, "updatewatchd")
	require.NoError(t, os.WriteFile(binPath, []byte(""), 0o755))

	manager, err := NewManager(Options{
		BinaryPath: binPath,
		ConfigPath: "/tmp/updatewatch.yaml",
		Runner:     (&fakeRunner{}).Run,
	})
	require.NoError(t, err)

	_, err = manager.Start(context.Background())
	require.ErrorIs(t, err, ErrNotInstalled)
}
