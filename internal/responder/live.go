// internal/responder/live.go
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 500 * time.Millisecond

// BuildFunc turns a freshly loaded catalog into a responder.
type BuildFunc func(*Catalog) (*Responder, error)

// Live serves replies from the catalog file at path and swaps in a new
// responder whenever the file changes. A catalog that fails to load or
// validate leaves the previous one in place.
type Live struct {
	path     string
	build    BuildFunc
	current  atomic.Pointer[Responder]
	debounce time.Duration

	mu      sync.Mutex
	reloads int
}

func NewLive(path string, build BuildFunc) (*Live, error) {
	l := &Live{
		path:     filepath.Clean(path),
		build:    build,
		debounce: defaultReloadDebounce,
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload reads the catalog file and replaces the current responder.
func (l *Live) Reload() error {
	catalog, err := LoadCatalog(l.path)
	if err != nil {
		return err
	}
	r, err := l.build(catalog)
	if err != nil {
		return fmt.Errorf("build responder: %w", err)
	}
	l.current.Store(r)

	l.mu.Lock()
	l.reloads++
	l.mu.Unlock()
	return nil
}

// Reloads counts successful loads, the initial one included.
func (l *Live) Reloads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reloads
}

func (l *Live) Responder() *Responder {
	return l.current.Load()
}

func (l *Live) Reply(ctx context.Context, text string) Reply {
	return l.current.Load().Reply(ctx, text)
}

func (l *Live) QuickReplies() []QuickReply {
	return l.current.Load().QuickReplies()
}

func (l *Live) Rules() []KeywordRule {
	return l.current.Load().Rules()
}

// Watch reloads on changes to the catalog file until ctx is done. The
// directory is watched so editors that replace the file are picked up.
func (l *Live) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(l.path)); err != nil {
		return fmt.Errorf("watch %s: %w", l.path, err)
	}
	slog.Info("watching reply catalog", "path", l.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != l.path || event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(l.debounce, func() {
				if err := l.Reload(); err != nil {
					slog.Warn("reply catalog reload failed, keeping previous", "path", l.path, "error", err)
					return
				}
				slog.Info("reply catalog reloaded", "path", l.path)
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		}
	}
}
