// Package watch reloads dictionary files when they change on disk.
// Editors and compilers often write a file in several steps or replace it by
// rename, so the parent directory is watched and events are debounced per
// file: the callback fires once the file has been quiet for the interval.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bastiangx/tapdict/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of files.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)
	log      *log.Logger

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]int
	timers  map[string]*time.Timer
	done    chan struct{}
	stopped bool
}

// New starts a watcher calling onChange with the absolute path of every
// watched file that was written, created or renamed into place.
func New(debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		debounce: debounce,
		onChange: onChange,
		log:      logger.New("watch"),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Add watches path. Adding a path twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	w.log.Debugf("Watching %s", abs)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	if t, ok := w.timers[abs]; ok {
		t.Stop()
		delete(w.timers, abs)
	}
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fw.Remove(dir)
	}
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(filepath.Clean(event.Name))
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("File watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// schedule (re)arms the quiet period timer of path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || !w.files[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		fire := !w.stopped && w.files[path]
		w.mu.Unlock()
		if fire {
			w.log.Debugf("Detected change in %s", path)
			w.onChange(path)
		}
	})
}

// Close stops the watcher. Pending callbacks are dropped.
// Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	for _, t := range w.timers {
		t.Stop()
	}
	close(w.done)
	return w.fw.Close()
}
