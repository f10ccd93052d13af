package server

import (
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const assetReloadDebounce = 200 * time.Millisecond

// AssetBundle serves the static UI bundle, either from an embedded
// fs.FS or, when PROBING_ASSETS_ROOT names a directory, from disk —
// watched with fsnotify so edits apply without a restart, the same
// debounced-watcher shape the teacher uses for its live issue list
// (cmd/bd/list.go).
type AssetBundle struct {
	mu      sync.RWMutex
	root    fs.FS
	watcher *fsnotify.Watcher
	closed  chan struct{}
}

// NewAssetBundle serves embedded. If assetsRoot is non-empty it
// overrides embedded with a live directory tree and starts watching it.
func NewAssetBundle(embedded fs.FS, assetsRoot string) *AssetBundle {
	b := &AssetBundle{root: embedded, closed: make(chan struct{})}
	if assetsRoot == "" {
		return b
	}
	b.root = os.DirFS(assetsRoot)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("assets: fsnotify unavailable, serving without live reload", "error", err)
		return b
	}
	if err := watcher.Add(assetsRoot); err != nil {
		slog.Warn("assets: failed to watch directory", "root", assetsRoot, "error", err)
		_ = watcher.Close()
		return b
	}
	b.watcher = watcher
	go b.watchLoop(assetsRoot)
	return b
}

// watchLoop re-roots the bundle at assetsRoot on every debounced write;
// os.DirFS reads are always live, so this exists mainly to drop any
// directory-listing caches a future version might add on top.
func (b *AssetBundle) watchLoop(assetsRoot string) {
	var debounce *time.Timer
	for {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(assetReloadDebounce, func() {
				b.mu.Lock()
				b.root = os.DirFS(assetsRoot)
				b.mu.Unlock()
			})
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("assets: watcher error", "error", err)
		case <-b.closed:
			return
		}
	}
}

// Close stops the watcher goroutine, if one is running.
func (b *AssetBundle) Close() {
	if b.watcher != nil {
		_ = b.watcher.Close()
	}
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
}

// ServeHTTP serves req.URL.Path from the bundle, falling back to
// index.html for client-side routed app paths.
func (b *AssetBundle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	root := b.root
	b.mu.RUnlock()

	name := r.URL.Path
	if name == "" || name == "/" {
		name = "index.html"
	} else {
		name = name[1:] // fs.FS paths are never rooted at "/"
	}

	data, err := fs.ReadFile(root, name)
	if err != nil {
		data, err = fs.ReadFile(root, "index.html")
		name = "index.html"
		if err != nil {
			http.NotFound(w, r)
			return
		}
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Write(data)
}
