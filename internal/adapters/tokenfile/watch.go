package tokenfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch emits an event each time the token file is created, rewritten, or
// removed. It is the client's stand-in for the browser storage event: a
// logout (or 401 clear) performed by another process converges through
// this channel. The channel closes when ctx is done.
//
// The watch is placed on the parent directory rather than the file itself:
// Set replaces the file by rename, and a watch pinned to the old inode
// would go quiet after the first update.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch token dir: %w", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				// Coalesce: one pending notification is enough, the
				// subscriber re-reads the store either way.
				select {
				case events <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watch errors are not fatal to the session; the next
				// explicit operation still reads the file directly.
			}
		}
	}()

	return events, nil
}
