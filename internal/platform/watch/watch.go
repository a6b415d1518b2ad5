// Package watch reports debounced changes to files in a directory so views
// can re-read state written by other processes.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 150 * time.Millisecond

// Watcher coalesces bursts of filesystem events on files whose base name
// starts with one of the configured prefixes into single notifications.
type Watcher struct {
	Changes <-chan struct{}

	dir      string
	prefixes []string
	debounce time.Duration
	changes  chan struct{}
	done     chan struct{}
	once     sync.Once
	watcher  *fsnotify.Watcher
}

// New watches dir for writes to files named with any of prefixes. An empty
// prefix list matches every file.
func New(dir string, prefixes ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan struct{}, 1)
	return &Watcher{
		Changes:  ch,
		dir:      dir,
		prefixes: prefixes,
		debounce: defaultDebounce,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins delivering notifications. If the directory cannot be watched
// the underlying handle is released and Stop becomes a no-op.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		w.once.Do(func() {
			_ = w.watcher.Close()
			close(w.done)
			close(w.changes)
		})
		return err
	}
	go w.loop()
	return nil
}

func (w *Watcher) Stop() {
	w.once.Do(func() {
		_ = w.watcher.Close()
		<-w.done
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
				// a notification is already pending
			}
		}
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.prefixes) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, prefix := range w.prefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}
