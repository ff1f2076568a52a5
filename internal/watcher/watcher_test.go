package watcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_CountsFilesInNewDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "existing.db"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	out := &syncBuffer{}
	w, err := NewWatcher(out)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.debounce = 50 * time.Millisecond

	if err := w.AddWatch(root); err != nil {
		t.Fatalf("AddWatch failed: %v", err)
	}
	w.Start()

	if err := os.WriteFile(filepath.Join(root, "msgstore.db.crypt14"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return w.Files() >= 1 })

	sub := filepath.Join(root, "Media", "WhatsApp Images")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.watchedDirs[sub]
	})
	if err := os.WriteFile(filepath.Join(sub, "IMG-001.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return w.Files() >= 2 })
	waitFor(t, func() bool { return strings.Contains(out.String(), "Pulled ") })

	n, err := w.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if n < 2 {
		t.Errorf("Close returned %d files, want at least 2", n)
	}
}
