package compiledb

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/bgindexd/internal/debug"
)

// DebounceInterval is how long FileWatcher waits after the last event in a
// burst before delivering a batch.
const DebounceInterval = 300 * time.Millisecond

// FileWatcher watches a directory tree with fsnotify and delivers debounced
// batches of changed absolute paths.
type FileWatcher struct {
	root     string
	callback func(changed []string)
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// NewFileWatcher creates a watcher over root's directory tree. callback is
// invoked from a private goroutine after each debounce window closes.
func NewFileWatcher(root string, callback func(changed []string)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		root:     root,
		callback: callback,
		watcher:  w,
		pending:  make(map[string]struct{}),
	}

	if err := fw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}

	return fw, nil
}

func (fw *FileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				debug.LogIndexing("compiledb: failed to watch %s: %v\n", path, err)
			}
		}
		return nil
	})
}

// Run blocks, processing fsnotify events until ctx is cancelled.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			debug.LogIndexing("compiledb: watcher error: %v\n", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = fw.addTree(event.Name)
		}
	}

	fw.mu.Lock()
	fw.pending[filepath.Clean(event.Name)] = struct{}{}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(DebounceInterval, fw.flush)
	fw.mu.Unlock()
}

func (fw *FileWatcher) flush() {
	fw.mu.Lock()
	if len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		changed = append(changed, p)
	}
	fw.pending = make(map[string]struct{})
	fw.mu.Unlock()

	sort.Strings(changed)
	fw.callback(changed)
}
