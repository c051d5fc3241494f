// Package watcher reports audio files that changed under a directory tree.
//
// Writes are debounced: a file is reported once its size and modification
// time have stayed the same for the settle delay, so a tagger rewriting a
// file produces one event.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventType is the kind of change.
type EventType int

const (
	// EventChanged is emitted when a file was created or written and has settled.
	EventChanged EventType = iota
	// EventRemoved is emitted when a file was deleted or renamed away.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one settled change.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

// Options configures a Watcher.
type Options struct {
	// SettleDelay is how long a file must stay unchanged. Default 100ms.
	SettleDelay time.Duration

	// Match selects the files to report. Nil reports every file.
	Match func(path string) bool
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 100 * time.Millisecond
	}
	if o.Match == nil {
		o.Match = func(string) bool { return true }
	}
}

func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

type pending struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Watcher watches directory trees with fsnotify.
type Watcher struct {
	logger  *zap.Logger
	opts    Options
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pending

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
}

// New returns a watcher. Call Watch to add directories and Run to start
// delivering events.
func New(logger *zap.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger.Named("watcher"),
		opts:    opts,
		watcher: fw,
		pending: make(map[string]*pending),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds path and, for a directory, every non-hidden subdirectory.
// A file path watches its parent directory.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.watcher.Add(filepath.Dir(path))
	}
	return w.watchTree(path)
}

func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("cannot access path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Error("cannot add watch", zap.String("path", p), zap.Error(err))
			return nil
		}
		w.logger.Debug("watching", zap.String("path", p))
		return nil
	})
}

// Run delivers events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("dropped watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name
	if hidden(path) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watchTree(path); err != nil {
				w.logger.Warn("cannot watch new directory", zap.String("path", path), zap.Error(err))
			}
			return
		}
	}

	if !w.opts.Match(path) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(path)
		w.emit(Event{Type: EventRemoved, Path: path})
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		w.settle(path)
	}
}

// settle (re)starts the settle timer for path.
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}

	p := &pending{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
	w.pending[path] = p
}

func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		w.emit(Event{Type: EventRemoved, Path: path})
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size, p.modTime = info.Size(), info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()
	w.emit(Event{Type: EventChanged, Path: path, Size: info.Size(), ModTime: info.ModTime()})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// Events returns the settled changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns errors reported by fsnotify.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		for _, p := range w.pending {
			p.timer.Stop()
		}
		clear(w.pending)
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
