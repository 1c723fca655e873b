// Package daemon installs updatewatchd under the platform's user-level
// service manager: systemd on Linux, launchd on macOS.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrNotInstalled = errors.New("service not installed")
var ErrUnsupported = errors.New("service manager unsupported")
var ErrExecutableNotFound = errors.New("updatewatchd executable not found")

// Status describes the installed service as the platform reports it.
type Status struct {
	Installed   bool
	Running     bool
	ServiceName string
	ConfigPath  string
	LogPath     string
}

type Options struct {
	// BinaryPath is the updatewatchd executable to register. Empty means
	// resolve from PATH or next to the current executable.
	BinaryPath string
	ConfigPath string
	LogPath    string
	Runner     CommandRunner
}

// CommandRunner executes a platform command and returns its combined
// output and exit code. Tests substitute a fake.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, int, error)

type Manager struct {
	binaryPath string
	configPath string
	logPath    string
	runner     CommandRunner
}

func NewManager(opts Options) (*Manager, error) {
	configPath, err := normalizePath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logPath, err := normalizePath(opts.LogPath)
	if err != nil {
		return nil, err
	}
	runner := opts.Runner
	if runner == nil {
		runner = execCommand
	}
	return &Manager{
		binaryPath: strings.TrimSpace(opts.BinaryPath),
		configPath: configPath,
		logPath:    logPath,
		runner:     runner,
	}, nil
}

func (m *Manager) Install(ctx context.Context) (Status, error) {
	configPath, err := ensureConfigPath(m.configPath)
	if err != nil {
		return Status{}, err
	}
	binaryPath, err := resolveBinaryPath(m.binaryPath)
	if err != nil {
		return Status{}, err
	}
	if err := ensureLogDir(m.logPath); err != nil {
		return Status{}, err
	}
	if err := platformInstall(ctx, m, binaryPath, configPath); err != nil {
		return Status{}, err
	}
	return m.status(ctx, configPath)
}

func (m *Manager) Uninstall(ctx context.Context) (Status, error) {
	if err := platformUninstall(ctx, m); err != nil {
		return Status{}, err
	}
	return m.status(ctx, m.configPath)
}

func (m *Manager) Start(ctx context.Context) (Status, error) {
	configPath, err := ensureConfigPath(m.configPath)
	if err != nil {
		return Status{}, err
	}
	binaryPath, err := resolveBinaryPath(m.binaryPath)
	if err != nil {
		return Status{}, err
	}
	if err := ensureLogDir(m.logPath); err != nil {
		return Status{}, err
	}
	if err := platformStart(ctx, m, binaryPath, configPath); err != nil {
		return Status{}, err
	}
	return m.status(ctx, configPath)
}

func (m *Manager) Stop(ctx context.Context) (Status, error) {
	if err := platformStop(ctx, m); err != nil {
		return Status{}, err
	}
	return m.status(ctx, m.configPath)
}

func (m *Manager) Status(ctx context.Context) (Status, error) {
	return m.status(ctx, m.configPath)
}

func (m *Manager) status(ctx context.Context, configPath string) (Status, error) {
	installed, running, err := platformStatus(ctx, m)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Installed:   installed,
		Running:     running,
		ServiceName: platformServiceName(),
		ConfigPath:  configPath,
		LogPath:     m.logPath,
	}, nil
}

func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	clean := filepath.Clean(trimmed)
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	return filepath.Abs(clean)
}

func ensureConfigPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("config path is required")
	}
	return normalizePath(trimmed)
}

func ensureLogDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func resolveBinaryPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = "updatewatchd"
	}
	if filepath.IsAbs(trimmed) {
		if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
			return trimmed, nil
		}
	}
	if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
		return filepath.Abs(trimmed)
	}
	if resolved, err := exec.LookPath(trimmed); err == nil {
		return resolved, nil
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), trimmed)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrExecutableNotFound
}

func execCommand(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}
	return string(output), exitCode, err
}

func formatCommandError(name string, args []string, output string, err error, exitCode int) error {
	if output != "" {
		return fmt.Errorf("%s %s failed (exit=%d): %s", name, strings.Join(args, " "), exitCode, strings.TrimSpace(output))
	}
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}
	return fmt.Errorf("%s %s failed", name, strings.Join(args, " "))
}
