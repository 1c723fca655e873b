package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"updatewatch/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "updatewatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
feeds:
  announcementsUrl: https://example.test/announcements.json
  catalogUrl: https://example.test/catalog.json
store:
  path: /tmp/updatewatch-test/state.db
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Equal(t, domain.DefaultRequestTimeoutSeconds, cfg.Feeds.RequestTimeoutSeconds)
	require.Equal(t, domain.DefaultPollIntervalHours, cfg.Poll.IntervalHours)
	require.True(t, cfg.Poll.HonorFeedInterval)
	require.Equal(t, domain.DefaultListenAddress, cfg.Observability.ListenAddress)
	require.True(t, cfg.Observability.Metrics)
	require.Equal(t, 24*time.Hour, cfg.PollInterval())
	require.Equal(t, 10*time.Second, cfg.RequestTimeout())
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+`
poll:
  intervalHours: 6
  honorFeedInterval: false
feeds:
  announcementsUrl: https://example.test/announcements.json
  catalogUrl: https://example.test/catalog.json
  requestTimeoutSeconds: 3
`))
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Poll.IntervalHours)
	require.False(t, cfg.Poll.HonorFeedInterval)
	require.Equal(t, 3, cfg.Feeds.RequestTimeoutSeconds)
}

func TestLoad_MissingFeedURLs(t *testing.T) {
	_, err := Load(writeConfig(t, `
store:
  path: /tmp/state.db
`))
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeInvalidArgument, code)
}

func TestLoad_RejectsNonHTTPURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
feeds:
  announcementsUrl: ftp://example.test/a.json
  catalogUrl: https://example.test/catalog.json
`))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDefaultStatePath_HonorsXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	require.Equal(t, filepath.Join("/tmp/xdg-state", "updatewatch", "state.db"), DefaultStatePath())
}

func TestWatch_DeliversReloadedConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Config, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, path, zap.NewNop(), func(cfg Config) {
			select {
			case updates <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(validConfig+`
poll:
  intervalHours: 2
`), 0o644))

	select {
	case cfg := <-updates:
		require.Equal(t, 2, cfg.Poll.IntervalHours)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}

func TestWatch_SkipsInvalidIntermediateState(t *testing.T) {
	path := writeConfig(t, validConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan Config, 4)
	go func() {
		_ = Watch(ctx, path, zap.NewNop(), func(cfg Config) {
			updates <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("feeds: ["), 0o644))

	select {
	case <-updates:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(500 * time.Millisecond):
	}
}
