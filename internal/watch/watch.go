// Package watch reports when a loaded file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/ennona/internal/logger"
)

// Watcher follows one file at a time and sends its path on Changes after
// writes settle for the debounce interval. Editors that save by rename are
// handled by watching the parent directory.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	changes  chan string
	log      *zap.Logger

	mu     sync.Mutex
	target string // cleaned absolute path
	dir    string
	timer  *time.Timer

	done chan struct{}
}

// New starts a watcher. Cancel ctx or call Close to stop it.
func New(ctx context.Context, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		debounce: debounce,
		changes:  make(chan string, 1),
		log:      logger.Named("watch"),
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Changes delivers the path of the watched file after it settles.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Watch replaces the watched file with path.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir != w.dir {
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		if err := w.fs.Add(dir); err != nil {
			w.dir = ""
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dir = dir
	}
	w.target = abs
	w.log.Debug("watching", zap.String("path", abs))
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			_ = w.fs.Close()
			w.stopTimer()
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				w.stopTimer()
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				w.stopTimer()
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if filepath.Clean(ev.Name) != w.target {
		return
	}

	target := w.target
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- target:
		default:
			// a change is already pending
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}
