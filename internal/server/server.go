// Package server implements the agent's dual-transport HTTP endpoint
// (spec.md §4.H): request routing, auth, body-size limiting, static
// asset serving, and the WebSocket REPL, grounded on the teacher's
// internal/rpc HTTP wrapper (steveyegge-beads/internal/rpc/http_server.go).
package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/probing-go/probing/internal/cluster"
	"github.com/probing-go/probing/internal/extension"
	"github.com/probing-go/probing/internal/probe"
	"github.com/probing-go/probing/internal/query"
)

// Config configures Server's listeners and policies.
type Config struct {
	SocketPath     string // Unix domain socket path; empty disables it
	TCPAddr        string // TCP listen address; empty disables it
	AuthToken      string
	AuthUsername   string
	MaxRequestSize int64
	RateLimit      float64 // requests/sec sustained per client; 0 disables the limiter
	RateBurst      float64
	Assets         fs.FS
	AssetsRoot     string
	FileWhitelist  []string
	// Metrics is the Prometheus registry served at GET /metrics. Nil
	// selects the global default registry.
	Metrics *prometheus.Registry

	Engine       *query.Engine
	Registry     *cluster.Registry
	ProbeFactory *probe.Factory
	SharedProbe  probe.Probe
	Extensions   *extension.Manager
}

// Server is the agent's HTTP control plane: the pieces spec.md §4.H
// names, wired over whichever of the Unix-socket/TCP transports are
// configured, matching the teacher's dual rpcServer/httpServer split.
type Server struct {
	cfg       Config
	auth      *Auth
	limiter   *RateLimiter
	httpSrv   *http.Server
	listeners []net.Listener
}

// New builds a Server without starting it.
func New(cfg Config) (*Server, error) {
	auth, err := NewAuth(cfg.AuthToken, cfg.AuthUsername, "Probe Server")
	if err != nil {
		return nil, err
	}

	mux := NewMux(RoutesConfig{
		Engine:         cfg.Engine,
		Registry:       cfg.Registry,
		ProbeFactory:   cfg.ProbeFactory,
		SharedProbe:    cfg.SharedProbe,
		Extensions:     cfg.Extensions,
		Assets:         cfg.Assets,
		AssetsRoot:     cfg.AssetsRoot,
		FileWhitelist:  cfg.FileWhitelist,
		MaxRequestSize: cfg.MaxRequestSize,
	})

	metricsHandler := promhttp.Handler()
	if cfg.Metrics != nil {
		metricsHandler = promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{})
	}
	top := http.NewServeMux()
	top.Handle("/metrics", metricsHandler)
	top.Handle("/", auth.Middleware(mux, assetPrefixes))

	var handler http.Handler = top
	var limiter *RateLimiter
	if cfg.RateLimit > 0 {
		limiter = NewRateLimiter(cfg.RateLimit, cfg.RateBurst, 10*time.Minute)
		handler = limiter.Middleware(handler)
	}

	return &Server{
		cfg:     cfg,
		auth:    auth,
		limiter: limiter,
		httpSrv: &http.Server{
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

// Serve opens every configured transport and blocks until ctx is
// canceled, then shuts down gracefully with a 5s drain budget,
// mirroring the teacher's HTTPServer.Start context-driven shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.SocketPath == "" && s.cfg.TCPAddr == "" {
		return errors.New("server: no transport configured")
	}

	if s.cfg.SocketPath != "" {
		ln, err := listenUnixSocket(s.cfg.SocketPath)
		if err != nil {
			return err
		}
		s.listeners = append(s.listeners, ln)
	}
	if s.cfg.TCPAddr != "" {
		ln, err := listenTCP(s.cfg.TCPAddr)
		if err != nil {
			s.closeListeners()
			return err
		}
		s.listeners = append(s.listeners, ln)
	}

	errc := make(chan error, len(s.listeners))
	for _, ln := range s.listeners {
		ln := ln
		go func() { errc <- s.httpSrv.Serve(ln) }()
	}

	if s.limiter != nil {
		go s.limiter.RunEvictionSweep(time.Minute)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.limiter != nil {
			s.limiter.Close()
		}
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("server: listener exited", "error", err)
		return err
	}
}

func (s *Server) closeListeners() {
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	s.listeners = nil
}

// Addrs returns the address each active listener is bound to, for
// logging/diagnostics.
func (s *Server) Addrs() []string {
	out := make([]string, 0, len(s.listeners))
	for _, ln := range s.listeners {
		out = append(out, ln.Addr().String())
	}
	return out
}
