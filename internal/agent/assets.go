package agent

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchCodeRoot watches PROBING_CODE_ROOT for changes and invokes
// onChange (debounced by the caller if needed) whenever a script file
// is written, mirroring the teacher's cmd/bd/list.go fsnotify.Write
// watch. Returns a stop func; a no-op stop if root is empty or the
// watcher can't be created.
func WatchCodeRoot(root string, onChange func(path string)) (stop func()) {
	if root == "" {
		return func() {}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("agent: fsnotify unavailable for code root", "error", err)
		return func() {}
	}
	if err := watcher.Add(root); err != nil {
		slog.Warn("agent: failed to watch code root", "root", root, "error", err)
		_ = watcher.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					onChange(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("agent: code root watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		_ = watcher.Close()
	}
}
