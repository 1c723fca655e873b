package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Watch re-loads the config file whenever it changes on disk and delivers
// each successfully parsed Config to onChange. Invalid intermediate states
// (editor temp files, partial writes) are logged and skipped. Watch blocks
// until ctx is canceled.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(Config)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("config_watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files, which invalidates a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case watchErr := <-watcher.Errors:
			if watchErr != nil {
				logger.Warn("config watcher error", zap.Error(watchErr))
			}
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		case <-timerChan(timer):
			timer = nil
			cfg, loadErr := Load(path)
			if loadErr != nil {
				logger.Warn("config reload failed", zap.Error(loadErr))
				continue
			}
			logger.Info("config reloaded", zap.String("path", path))
			onChange(cfg)
		}
	}
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
