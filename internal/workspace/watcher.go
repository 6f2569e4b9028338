// Package workspace mirrors the .rs files of a workspace directory into a
// [rust.Project] and keeps them current as they change on disk.
package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/rust"
)

// DefaultDebounce is how long the watcher waits for more events before
// syncing a batch.
const DefaultDebounce = 100 * time.Millisecond

// ignoredDirs are directory names never loaded nor watched.
var ignoredDirs = []string{".git", "target", "node_modules", ".idea"}

// IsSource reports whether name is a Rust source file.
func IsSource(name string) bool {
	return strings.HasSuffix(name, ".rs")
}

func ignored(name string) bool {
	for _, dir := range ignoredDirs {
		if name == dir {
			return true
		}
	}
	return false
}

// RelPath returns the project path of the file at abs: slash separated and
// relative to root when abs lies inside root, the slashed abs otherwise.
func RelPath(root, abs string) string {
	if rel, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(abs)
}

// Load puts every source file under root into proj and returns how many
// files were loaded. Unreadable entries are skipped.
func Load(root string, proj *rust.Project) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != root && ignored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(d.Name()) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warnw("failed to read source file", "path", path, "error", err)
			return nil
		}
		proj.PutFile(RelPath(root, path), &rust.File{Content: content})
		n++
		return nil
	})
	return n, err
}

// Watcher keeps a project in sync with the source files under a directory.
// Events are debounced and applied in batches from a single goroutine.
type Watcher struct {
	// Debounce is the batching window. It must be set before Start.
	Debounce time.Duration

	root     string
	proj     *rust.Project
	skip     func(path string) bool
	onChange func(paths []string)

	watcher  *fsnotify.Watcher
	events   chan string
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool
}

// New creates a watcher for root. skip reports project paths whose content
// is owned by someone else, such as documents open in an editor; it may be
// nil. onChange is called with the project paths of each synced batch and
// may be nil.
func New(root string, proj *rust.Project, skip func(path string) bool, onChange func(paths []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		Debounce: DefaultDebounce,
		root:     root,
		proj:     proj,
		skip:     skip,
		onChange: onChange,
		watcher:  fw,
		events:   make(chan string, 1024),
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and its subdirectories until ctx is done or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && ignored(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !ignored(info.Name()) {
						if err := w.addRecursive(event.Name); err != nil {
							logger.Warnw("failed to watch directory", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}
			if !IsSource(event.Name) {
				continue
			}
			select {
			case w.events <- event.Name:
			default:
				logger.Warnw("watcher buffer full, dropping event", "path", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}
		clear(pending)
		w.Sync(paths)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case path := <-w.events:
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.Debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// Sync reloads the files at the given absolute paths: existing files are
// put into the project, missing ones are deleted from it. Paths accepted
// by the skip function are left alone.
func (w *Watcher) Sync(paths []string) {
	var changed []string
	for _, abs := range paths {
		path := RelPath(w.root, abs)
		if w.skip != nil && w.skip(path) {
			continue
		}
		content, err := os.ReadFile(abs)
		switch {
		case err == nil:
			if f, ok := w.proj.File(path); ok && string(f.Content) == string(content) {
				continue
			}
			w.proj.PutFile(path, &rust.File{Content: content})
		case errors.Is(err, fs.ErrNotExist):
			if w.proj.DeleteFile(path) != nil {
				continue
			}
		default:
			logger.Warnw("failed to read source file", "path", abs, "error", err)
			continue
		}
		changed = append(changed, path)
	}
	if len(changed) > 0 {
		logger.Debugw("synced workspace files", "files", changed)
		if w.onChange != nil {
			w.onChange(changed)
		}
	}
}
