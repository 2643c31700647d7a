package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"cura-service/pkg/logkey"
)

// Watch reloads the store whenever another process rewrites the
// persisted cart file at path. This is the local analog of a browser
// storage event: two instances sharing one data directory converge on
// last-writer-wins instead of silently diverging.
//
// Watch blocks until ctx is cancelled. The parent directory is watched
// rather than the file itself because the store replaces the file by
// rename, which would drop a watch on the old inode.
func (s *Store) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("cart watcher error", slog.String(logkey.ERROR, err.Error()))
		}
	}
}

// reload re-reads persisted state and swaps it in if it differs from
// what is already in memory. Events caused by our own writes carry an
// identical payload and are dropped here.
func (s *Store) reload() {
	data, err := s.storage.Get(StorageKey)
	if err != nil {
		return
	}
	if s.snapshotEquals(data) {
		return
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		slog.Warn("ignoring unreadable cart rewrite", slog.String(logkey.ERROR, err.Error()))
		return
	}
	s.replace(lines)
}
