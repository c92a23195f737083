package luaext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/langbridge/internal/logging"
)

// DefaultReloadDelay coalesces bursts of file events into one reload.
const DefaultReloadDelay = 200 * time.Millisecond

// Watcher reloads extensions when files below the extension roots change.
//
// Every event is attributed to the top-level entry of its root, the same
// unit Discover returns. When that entry settles it is loaded, reloaded or
// unloaded depending on whether it still exists.
type Watcher struct {
	host  *Host
	roots []string
	delay time.Duration
	log   *logging.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	syncs   sync.WaitGroup

	// serializes sync
	syncMu sync.Mutex
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReloadDelay sets the debounce delay.
func WithReloadDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// NewWatcher watches roots and all directories below them. Roots that do
// not exist are skipped.
func NewWatcher(host *Host, roots []string, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		host:    host,
		delay:   DefaultReloadDelay,
		log:     host.log.WithComponent("luaext.watch"),
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			w.log.Warn("extension root %s: %v", abs, err)
			continue
		}
		w.roots = append(w.roots, abs)
		w.watchTree(abs)
	}
	return w, nil
}

// Roots returns the watched roots.
func (w *Watcher) Roots() []string { return w.roots }

// watchTree adds dir and its subdirectories.
func (w *Watcher) watchTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.log.Warn("watch %s: %v", p, err)
		}
		return nil
	})
}

// Run processes file events until ctx is done. Reloads scheduled before
// that are cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("file events overflowed, rescanning")
				w.rescan(ctx)
				continue
			}
			w.log.Error("watch: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.watchTree(ev.Name)
		}
	}
	if key, ok := w.keyOf(ev.Name); ok {
		w.schedule(ctx, key)
	}
}

// keyOf maps path to the top-level entry of the root containing it.
func (w *Watcher) keyOf(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		first := strings.SplitN(rel, string(filepath.Separator), 2)[0]
		if strings.HasPrefix(first, ".") {
			return "", false
		}
		return filepath.Join(root, first), true
	}
	return "", false
}

func (w *Watcher) schedule(ctx context.Context, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[key]; ok && t.Stop() {
		t.Reset(w.delay)
		return
	}
	w.syncs.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.delay, func() {
		defer w.syncs.Done()
		w.mu.Lock()
		if w.pending[key] == t {
			delete(w.pending, key)
		}
		w.mu.Unlock()
		w.sync(ctx, key)
	})
	w.pending[key] = t
}

// sync brings the extension at key in line with the file system.
func (w *Watcher) sync(ctx context.Context, key string) {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	loaded, isLoaded := w.host.byPath(key)

	m, err := Inspect(key)
	if err != nil {
		if isLoaded {
			if err := w.host.Unload(loaded.ID()); err != nil {
				w.log.Warn("unload %s: %v", loaded.ID(), err)
			}
		} else if !isNotExist(err) && !errors.Is(err, ErrNoEntryPoint) {
			w.log.Warn("inspect %s: %v", key, err)
		}
		return
	}

	if isLoaded {
		if loaded.ID() == m.ID() {
			if _, err := w.host.Reload(ctx, loaded.ID()); err != nil {
				w.log.Error("reload %s: %v", loaded.ID(), err)
			}
			return
		}
		_ = w.host.Unload(loaded.ID())
	}
	if _, err := w.host.LoadPath(ctx, key); err != nil {
		w.log.Error("load %s: %v", key, err)
	}
}

// rescan syncs every entry of every root.
func (w *Watcher) rescan(ctx context.Context) {
	seen := make(map[string]bool)
	for _, root := range w.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if key, ok := w.keyOf(filepath.Join(root, e.Name())); ok {
				seen[key] = true
				w.schedule(ctx, key)
			}
		}
	}
	for _, ext := range w.host.Extensions() {
		if p := ext.Path(); p != "" && !seen[p] {
			if _, ok := w.keyOf(p); ok {
				w.schedule(ctx, p)
			}
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.closed = true
	for key, t := range w.pending {
		if t.Stop() {
			w.syncs.Done()
		}
		delete(w.pending, key)
	}
	w.mu.Unlock()
	w.syncs.Wait()
	_ = w.fsw.Close()
}
