package watcher

import (
	"fmt"
	"time"
)

/*
Debouncer:
  - every new file resets the timer
  - the progress line is printed once the window passes without events
*/
func (w *Watcher) debouncedReport() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		fmt.Fprintf(w.out, "Pulled %d files...\n", w.Files())
	})
}

// Files returns the number of files seen so far.
func (w *Watcher) Files() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files
}

// Close stops watching and returns the number of files seen.
func (w *Watcher) Close() (int, error) {
	w.cancel()
	err := w.fsNotifyWatcher.Close()

	w.debounceMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.debounceMu.Unlock()

	return w.Files(), err
}
