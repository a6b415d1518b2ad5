package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"biochar/internal/platform/watch"
)

func TestWatcherCoalescesMatchingWrites(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w, err := watch.New(dir, "biochar.db")
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "biochar.db-wal"), []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	select {
	case <-w.Changes:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a change notification")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w, err := watch.New(dir, "biochar.db")
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-w.Changes:
		t.Fatalf("unexpected notification for unrelated file")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherStartFailureReleasesHandle(t *testing.T) {
	t.Parallel()
	w, err := watch.New(filepath.Join(t.TempDir(), "missing"), "biochar.db")
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Fatalf("expected start to fail for a missing directory")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("stop blocked after a failed start")
	}
	if _, ok := <-w.Changes; ok {
		t.Fatalf("changes channel should be closed")
	}
}
