// Package watch reports changes to a single file.
//
// The parent directory is watched rather than the file itself so that editors
// replacing the file through a rename keep producing events. A ticker compares
// modification times as a backup for missed events.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the polling backup interval.
const DefaultInterval = 250 * time.Millisecond

// FileWatcher signals every time the watched file is written, created,
// replaced or removed.
type FileWatcher struct {
	path     string
	interval time.Duration
	watcher  *fsnotify.Watcher
}

// New creates a watcher for path. The file does not need to exist yet.
func New(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{path: abs, interval: DefaultInterval, watcher: watcher}, nil
}

// Changes returns a channel receiving a value after each change. Bursts of
// events are coalesced into one notification. The channel is closed when ctx
// is done or the watcher fails.
func (w *FileWatcher) Changes(ctx context.Context) <-chan struct{} {
	changes := make(chan struct{}, 1)
	go w.loop(ctx, changes)
	return changes
}

// Close releases the underlying watcher.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}

func (w *FileWatcher) loop(ctx context.Context, changes chan<- struct{}) {
	defer close(changes)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.modTime()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				last = w.modTime()
				notify(changes)
			}
		case <-ticker.C:
			// Polling fallback for filesystems without inotify support.
			if mt := w.modTime(); !mt.Equal(last) {
				last = mt
				notify(changes)
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *FileWatcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// notify sends without blocking; a pending notification already covers this change.
func notify(changes chan<- struct{}) {
	select {
	case changes <- struct{}{}:
	default:
	}
}
