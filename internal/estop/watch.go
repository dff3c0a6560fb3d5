package estop

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	. "github.com/chumyin/zeroclaw/internal/logging"
	"github.com/chumyin/zeroclaw/internal/paths"
)

// Watcher picks up estop.json changes written by a process other than the
// one holding this Watcher, so a sibling agent process notices an engage or
// resume without polling. It is optional: nothing in the fabric requires a
// watcher to be running for the CLI's own read-modify-write commands, which
// always re-read the file before acting.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	onChange  func(EstopState)
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// NewWatcher starts watching the estop state file's directory and invokes
// onChange with the freshly loaded state whenever the file is written,
// created, or removed by another process.
func NewWatcher(onChange func(EstopState)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	statePath, err := paths.EstopStatePath()
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	dir := filepath.Dir(statePath)
	if err := paths.EnsureDir(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.stopCh:
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
			L_warn("estop: watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isEstopStateFile(event.Name) {
		return
	}
	relevant := event.Op&fsnotify.Write != 0 ||
		event.Op&fsnotify.Create != 0 ||
		event.Op&fsnotify.Remove != 0
	if !relevant {
		return
	}

	state, err := Load()
	if err != nil {
		L_warn("estop: failed to reload state after external write", "error", err)
		return
	}
	L_debug("estop: external state change detected", "path", event.Name, "op", event.Op.String())
	w.onChange(state)
}

func isEstopStateFile(path string) bool {
	return filepath.Base(path) == "estop.json"
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	return w.fsWatcher.Close()
}
