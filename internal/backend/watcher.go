package backend

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atomicstack/node-browser/internal/logging/events"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	// KindChanged reports that a watched document changed on disk.
	KindChanged Kind = iota
	// KindError carries a watcher failure.
	KindError
)

// Event names the watched root that changed, or an error.
type Event struct {
	Kind Kind
	Path string
	Err  error
}

// Watcher reports changes to opened documents. Bursts of writes to one root
// collapse into a single event after the debounce interval.
type Watcher struct {
	fs    *fsnotify.Watcher
	mu    sync.RWMutex
	roots []string
	tick  time.Duration
	gate  *throttle

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher watches every path in roots. Directories are watched
// recursively, skipping hidden ones; files are watched through their parent.
// Roots that do not exist on disk (package patterns, for instance) are
// ignored.
func NewWatcher(roots []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fs:     fsw,
		tick:   max(debounce/2, 10*time.Millisecond),
		gate:   newThrottle(debounce),
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
	}
	for _, root := range roots {
		if err := w.add(root); err != nil {
			cancel()
			_ = fsw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.run()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w, nil
}

func (w *Watcher) add(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil
	}
	w.mu.Lock()
	if slices.Contains(w.roots, abs) {
		w.mu.Unlock()
		return nil
	}
	w.roots = append(w.roots, abs)
	w.mu.Unlock()
	events.Backend.Watch(abs)
	if !info.IsDir() {
		return w.fs.Add(filepath.Dir(abs))
	}
	return w.addTree(abs)
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// followNewDir starts watching a directory created inside a directory root.
func (w *Watcher) followNewDir(ev fsnotify.Event, root string) error {
	if !ev.Has(fsnotify.Create) || ev.Name == root || strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return nil
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.addTree(ev.Name)
}

// Add starts watching another root while the watcher runs.
func (w *Watcher) Add(root string) error {
	return w.add(root)
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Roots returns the absolute paths being watched.
func (w *Watcher) Roots() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.roots...)
}

// Stop cancels the watcher and releases the underlying notifier.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the event loop has exited and the events channel is
// closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer func() { _ = w.fs.Close() }()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			root := w.rootFor(ev.Name)
			if root == "" || ev.Op == fsnotify.Chmod {
				continue
			}
			events.Backend.Change(ev.Name, ev.Op.String())
			w.gate.mark(root)
			if err := w.followNewDir(ev, root); err != nil && !w.emit(Event{Kind: KindError, Err: err}) {
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if !w.emit(Event{Kind: KindError, Err: err}) {
				return
			}
		case <-ticker.C:
			for _, root := range w.gate.due() {
				if !w.emit(Event{Kind: KindChanged, Path: root}) {
					return
				}
			}
		}
	}
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}

// rootFor maps a changed path back to the watched root containing it. A
// SQLite database in WAL mode is written through its -wal file, which counts
// as the database itself.
func (w *Watcher) rootFor(path string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, root := range w.roots {
		if path == root || path == root+"-wal" || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}
