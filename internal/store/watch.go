package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher is implemented by stores whose records can change outside the
// running process, such as the file store edited by the servers command.
type Watcher interface {
	// Watch reloads the store on external changes until ctx is done
	Watch(ctx context.Context) error
}

var _ Watcher = (*fileStore)(nil)

// Watch observes the directory holding the store file. Writes are atomic
// renames, so the directory is watched and events are filtered by name.
func (s *fileStore) Watch(ctx context.Context) error {
	return s.watch(ctx, nil)
}

// watch closes ready once the watcher is registered
func (s *fileStore) watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create store watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Warn("Failed to close store watcher", "error", err)
		}
	}()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch store directory %s: %w", dir, err)
	}
	if ready != nil {
		close(ready)
	}

	slog.Info("Watching store file for changes", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				slog.Warn("Failed to reload store file, keeping previous records",
					"path", s.path,
					"error", err,
				)
				continue
			}
			slog.Debug("Reloaded store file", "path", s.path, "op", event.Op.String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Store watcher error", "error", err)
		}
	}
}
