package server

import (
	"io/fs"
	"net/http"

	"github.com/probing-go/probing/internal/cluster"
	"github.com/probing-go/probing/internal/extension"
	"github.com/probing-go/probing/internal/probe"
	"github.com/probing-go/probing/internal/query"
)

// assetPrefixes lists the static bundle's own path prefixes, kept
// public regardless of Auth, matching spec.md §4.H's allowlist.
var assetPrefixes = []string{"/assets/", "/static/"}

// RoutesConfig bundles everything routes.go needs to wire the mux.
type RoutesConfig struct {
	Engine         *query.Engine
	Registry       *cluster.Registry
	ProbeFactory   *probe.Factory
	SharedProbe    probe.Probe
	Extensions     *extension.Manager
	Assets         fs.FS
	AssetsRoot     string
	FileWhitelist  []string
	MaxRequestSize int64
}

// fallback tries the extension manager's RPC routes first (so a
// registered extension can claim any path), then serves the static
// bundle — this is what makes client-side app routes and the SPA
// index work without a dedicated catch-all registration.
type fallback struct {
	ext    *ExtensionHandler
	assets *AssetBundle
}

func (f *fallback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w}
	f.ext.ServeHTTP(rec, r)
	if rec.status == http.StatusNotFound && !rec.wrote {
		f.assets.ServeHTTP(w, r)
	}
}

// statusRecorder defers writing the 404 body so fallback can retry
// against the asset bundle instead.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	if code != http.StatusNotFound {
		s.wrote = true
		s.ResponseWriter.WriteHeader(code)
	}
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == http.StatusNotFound && !s.wrote {
		return len(b), nil // swallow http.NotFound's body, fallback takes over
	}
	s.wrote = true
	return s.ResponseWriter.Write(b)
}

// NewMux assembles every route of spec.md §4.H behind the body-size
// cap middleware.
func NewMux(cfg RoutesConfig) http.Handler {
	mux := http.NewServeMux()

	assets := NewAssetBundle(cfg.Assets, cfg.AssetsRoot)
	extHandler := NewExtensionHandler(cfg.Extensions)

	mux.Handle("/query", NewQueryHandler(cfg.Engine))
	mux.Handle("/probe", NewProbeHandler(cfg.ProbeFactory))
	mux.Handle("/apis/nodes", NewNodesHandler(cfg.Registry))
	mux.HandleFunc("/apis/overview", handleOverview)
	mux.Handle("/apis/files", NewFilePolicy(cfg.FileWhitelist).handlerFunc())
	mux.Handle("/apis/flamegraph", NewFlamegraphHandler(cfg.SharedProbe))
	mux.Handle("/ws/repl", NewReplHandler(cfg.ProbeFactory))
	for _, prefix := range assetPrefixes {
		mux.Handle(prefix, assets)
	}
	mux.Handle("/", &fallback{ext: extHandler, assets: assets})

	return BodySizeLimit(mux, cfg.MaxRequestSize)
}

func (p *FilePolicy) handlerFunc() http.HandlerFunc {
	return p.handleFiles
}
