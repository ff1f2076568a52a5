package watcher

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

/*
Watcher reports progress of an adb pull by watching the host side of the
copy.
1. AddWatch registers the backup directory and everything below it.
2. Directories created by the pull are added as they appear, files are
   counted.
3. Progress lines are debounced: a burst of files prints a single
   "Pulled N files..." line once no event arrived for the debounce window.

It only prints to the console writer, never to the run log.
*/
type Watcher struct {
	fsNotifyWatcher *fsnotify.Watcher
	watchedDirs     map[string]bool
	out             io.Writer
	files           int
	ctx             context.Context
	cancel          context.CancelFunc
	mu              sync.Mutex
	debounce        time.Duration
	timer           *time.Timer
	debounceMu      sync.Mutex
}

func NewWatcher(out io.Writer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		fsNotifyWatcher: fsWatcher,
		watchedDirs:     make(map[string]bool),
		out:             out,
		ctx:             ctx,
		cancel:          cancel,
		debounce:        500 * time.Millisecond,
	}, nil
}

// AddWatch watches path and all directories below it.
func (w *Watcher) AddWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.addTree(path, false)
}

// addTree watches every directory under root. With count set, files
// already present are added to the total.
func (w *Watcher) addTree(root string, count bool) error {
	return filepath.WalkDir(root, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if count {
				w.files++
			}
			return nil
		}
		if w.watchedDirs[walkPath] {
			return nil
		}
		if err := w.fsNotifyWatcher.Add(walkPath); err != nil {
			return err
		}
		w.watchedDirs[walkPath] = true
		return nil
	})
}

func (w *Watcher) Start() {
	go w.handleEvents()
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsNotifyWatcher.Events:
			if !ok {
				return
			}
			w.processEvent(event)
		case err, ok := <-w.fsNotifyWatcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.out, "progress monitor: %v\n", err)
		}
	}
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != fsnotify.Create {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	if info.IsDir() {
		// adb may have filled the directory before the watch was added
		_ = w.addTree(event.Name, true)
	} else {
		w.files++
	}
	w.mu.Unlock()

	w.debouncedReport()
}
