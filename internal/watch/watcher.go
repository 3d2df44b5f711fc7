// Package watch reports debounced batches of changed source files so the
// CLI can rescan its inputs.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"apistub/internal/pyparse"
)

// DefaultExtensions are the source suffixes that trigger a rescan.
var DefaultExtensions = []string{".go", ".py", ".pyi", ".yaml", ".yml"}

// Watcher watches input roots and calls onChange with each debounced batch.
type Watcher struct {
	fsWatcher *fsnotify.Watcher

	// Directory roots watched recursively.
	dirs []string
	// File roots; their parent directories are watched.
	files map[string]bool
	exts  map[string]bool

	debounceDelay time.Duration
	pendingFiles  map[string]struct{}
	pendingMu     sync.Mutex
	debounceTimer *time.Timer

	onChange func(files []string)
	onError  func(error)

	done     chan struct{}
	stopOnce sync.Once
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounceDelay sets how long the watcher waits for further changes
// before reporting a batch.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithExtensions replaces DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			w.exts[e] = true
		}
	}
}

// WithOnError sets the callback for watcher errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a Watcher over roots, each a directory or a single file.
func New(roots []string, onChange func(files []string), opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		files:         make(map[string]bool),
		debounceDelay: 300 * time.Millisecond,
		pendingFiles:  make(map[string]struct{}),
		onChange:      onChange,
		done:          make(chan struct{}),
	}

	WithExtensions(DefaultExtensions...)(w)

	for _, opt := range opts {
		opt(w)
	}

	for _, root := range roots {
		if err := w.addRoot(root); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}

	return w, nil
}

func (w *Watcher) addRoot(root string) error {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		w.files[root] = true
		return w.fsWatcher.Add(filepath.Dir(root))
	}

	w.dirs = append(w.dirs, root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && pyparse.SkipDir(d.Name()) {
			return filepath.SkipDir
		}

		return w.fsWatcher.Add(path)
	})
}

// Start begins watching for changes.
func (w *Watcher) Start() {
	go w.eventLoop()
}

// Stop stops the watcher. Pending batches are dropped.
func (w *Watcher) Stop() error {
	var err error

	w.stopOnce.Do(func() {
		close(w.done)

		w.pendingMu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.pendingMu.Unlock()

		err = w.fsWatcher.Close()
	})

	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}

			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	path := filepath.Clean(event.Name)

	// New directories under a recursive root are watched too.
	if event.Op.Has(fsnotify.Create) && w.underDir(path) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !pyparse.SkipDir(info.Name()) {
				_ = w.fsWatcher.Add(path)
			}

			return
		}
	}

	if !w.relevant(path) {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pendingFiles[path] = struct{}{}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.flush)
}

func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}

	if !w.exts[filepath.Ext(path)] || strings.HasSuffix(path, "_test.go") {
		return false
	}

	return w.underDir(path)
}

func (w *Watcher) underDir(path string) bool {
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	files := make([]string, 0, len(w.pendingFiles))
	for f := range w.pendingFiles {
		files = append(files, f)
	}
	w.pendingFiles = make(map[string]struct{})
	w.pendingMu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if len(files) == 0 || w.onChange == nil {
		return
	}

	slices.Sort(files)
	w.onChange(files)
}
