package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches one bibliography file and emits a debounced
// signal after writes settle. The containing directory is watched
// rather than the file itself, so editors that replace the file on
// save keep triggering.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	changed  chan struct{}
	pending  chan struct{}
}

// NewFileWatcher builds a watcher for path. Changed() delivers one
// signal per settled burst of writes.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(absPath), err)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &FileWatcher{
		path:     absPath,
		watcher:  watcher,
		debounce: debounce,
		changed:  make(chan struct{}, 1),
		pending:  make(chan struct{}, 1),
	}, nil
}

// Changed returns the debounced change channel.
func (w *FileWatcher) Changed() <-chan struct{} { return w.changed }

// Start runs the watch loops until ctx is cancelled.
func (w *FileWatcher) Start(ctx context.Context) {
	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)
}

// Close releases the underlying watcher.
func (w *FileWatcher) Close() error { return w.watcher.Close() }

func (w *FileWatcher) eventLoop(ctx context.Context) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				slog.Debug("bibliography changed", "file", event.Name, "op", event.Op.String())
				select {
				case w.pending <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)
		}
	}
}

func (w *FileWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.pending:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case w.changed <- struct{}{}:
				default:
				}
			})
		}
	}
}
