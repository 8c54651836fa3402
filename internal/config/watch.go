package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls reload whenever the config file at path is created or written
// and sends each valid result. A nil reload means Load(path). Invalid edits
// are logged and skipped. The channel closes when ctx is done.
//
// The parent directory is watched rather than the file so that editors which
// replace the file on save are still observed.
func Watch(ctx context.Context, path string, log *slog.Logger, reload func() (*Config, error)) (<-chan *Config, error) {
	if reload == nil {
		reload = func() (*Config, error) { return Load(path) }
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	target := filepath.Clean(path)
	out := make(chan *Config, 1)

	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}

				cfg, err := reload()
				if err != nil {
					log.Warn("ignoring config change", "path", path, "error", err)
					continue
				}

				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "error", err)
			}
		}
	}()

	return out, nil
}
