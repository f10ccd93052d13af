package agent

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/probing-go/probing/internal/cluster"
	"github.com/probing-go/probing/internal/extension"
	"github.com/probing-go/probing/internal/probe"
	"github.com/probing-go/probing/internal/query"
	"github.com/probing-go/probing/internal/query/tables"
	"github.com/probing-go/probing/internal/reporter"
	"github.com/probing-go/probing/internal/server"
	"github.com/probing-go/probing/internal/tsdb"
)

// Agent owns the process-wide runtime: the extension manager, query
// catalog, cluster registry, time-series store, HTTP server(s), the
// reporter, and signal handlers. Load/Unload implement spec.md §4.J.
type Agent struct {
	cfg *Config
	log *slog.Logger

	Extensions *extension.Manager
	Catalog    *query.Catalog
	Engine     *query.Engine
	Registry   *cluster.Registry
	TSDB       *tsdb.Store
	Probes     *probe.Factory
	Metrics    *Metrics

	srv       *server.Server
	srvCancel context.CancelFunc
	srvDone   chan struct{}

	reporterCancel context.CancelFunc
	signalStop     func()
	assetsStop     func()

	mu     sync.Mutex
	loaded bool
}

// New constructs an Agent from Config without starting anything. The
// built-in process.* tables (envs, threads, kmsg) are registered
// immediately so they're queryable even before Load starts the server.
func New(cfg *Config) *Agent {
	catalog := query.NewCatalog(query.DefaultCatalog)
	catalog.RegisterNamespace(tables.NewNamespace())
	return &Agent{
		cfg:        cfg,
		log:        NewLogger(cfg.Log),
		Extensions: extension.NewManager(),
		Catalog:    catalog,
		Registry:   cluster.NewRegistry(nil),
		TSDB:       tsdb.NewStore(),
		Probes:     probe.NewFactory(nil),
	}
}

// Load performs spec.md §4.J's boot sequence: apply PROBING_ARGS
// commands, install signal handlers, start the Unix socket server,
// and — if a port is configured — the TCP server and reporter.
func (a *Agent) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return nil
	}

	a.Engine = query.NewEngine(a.Catalog, a.Extensions)

	metrics, err := NewMetrics(a.cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	a.Metrics = metrics

	a.applyBootCommands()

	decode, backtrace := DefaultSignals()
	a.signalStop = Install(decode, backtrace, a.applyBootCommands)

	if a.cfg.CodeRoot != "" {
		a.assetsStop = WatchCodeRoot(a.cfg.CodeRoot, func(path string) {
			a.log.Info("agent: code root changed", "path", path)
		})
	} else {
		a.assetsStop = func() {}
	}

	socketPath, err := a.socketPath()
	if err != nil {
		return err
	}

	srvCfg := server.Config{
		SocketPath:     socketPath,
		AuthToken:      a.cfg.AuthToken,
		AuthUsername:   a.cfg.AuthUsername,
		MaxRequestSize: a.cfg.MaxRequestSize,
		RateLimit:      50,
		RateBurst:      100,
		AssetsRoot:     a.cfg.AssetsRoot,
		FileWhitelist:  []string{a.cfg.AssetsRoot, a.cfg.CodeRoot},
		Metrics:        a.Metrics.Registry,
		Engine:         a.Engine,
		Registry:       a.Registry,
		ProbeFactory:   a.Probes,
		SharedProbe:    a.Probes.New("shared"),
		Extensions:     a.Extensions,
	}

	localRank := envIntOr("LOCAL_RANK", 0)
	rank := envIntOr("RANK", 0)
	if a.cfg.Port > 0 {
		if rank == 0 {
			srvCfg.TCPAddr = "0.0.0.0:" + strconv.Itoa(a.cfg.Port+localRank)
		} else if a.cfg.MasterAddr != "" {
			srvCfg.TCPAddr = a.cfg.MasterAddr + ":" + strconv.Itoa(a.cfg.Port+localRank)
		}
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}
	a.srv = srv

	serveCtx, cancel := context.WithCancel(ctx)
	a.srvCancel = cancel
	a.srvDone = make(chan struct{})
	go func() {
		defer close(a.srvDone)
		if err := srv.Serve(serveCtx); err != nil {
			a.log.Error("agent: server exited", "error", err)
		}
	}()

	if a.cfg.Port > 0 {
		rCtx, rCancel := context.WithCancel(ctx)
		a.reporterCancel = rCancel
		rep := reporter.New(a.Registry, a.cfg.MasterAddr, srvCfg.TCPAddr, 10*time.Second)
		go rep.Run(rCtx)
	}

	a.loaded = true
	return nil
}

// Unload stops both servers and removes the Unix socket file, per
// spec.md §4.J.
func (a *Agent) Unload(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return nil
	}

	if a.reporterCancel != nil {
		a.reporterCancel()
	}
	if a.signalStop != nil {
		a.signalStop()
	}
	if a.assetsStop != nil {
		a.assetsStop()
	}
	if a.srvCancel != nil {
		a.srvCancel()
	}
	if a.srvDone != nil {
		<-a.srvDone
	}
	if a.Metrics != nil {
		a.Metrics.Shutdown(ctx)
	}

	socketPath, err := a.socketPath()
	if err == nil {
		_ = os.Remove(socketPath)
	}

	a.loaded = false
	return nil
}

func (a *Agent) socketPath() (string, error) {
	root := a.cfg.CtrlRoot
	if root == "" {
		root = defaultCtrlRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(root, strconv.Itoa(os.Getpid())), nil
}

// applyBootCommands parses PROBING_ARGS (";"-separated, each either
// "enable <feature>"/"disable <feature>" or "set <key>=<value>") and
// applies each, logging and continuing past any single failure —
// matching the query engine's own SET-statement resilience.
func (a *Agent) applyBootCommands() {
	if a.cfg.Args == "" {
		return
	}
	shared := a.Probes.New("boot")
	for _, cmd := range strings.Split(a.cfg.Args, ";") {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if err := a.applyOne(cmd, shared); err != nil {
			a.log.Warn("agent: boot command failed", "command", cmd, "error", err)
		}
	}
}

func (a *Agent) applyOne(cmd string, p probe.Probe) error {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}
	switch strings.ToLower(fields[0]) {
	case "enable":
		if len(fields) < 2 {
			return &malformedCommandError{cmd}
		}
		return p.Enable(probe.Feature(fields[1]))
	case "disable":
		if len(fields) < 2 {
			return &malformedCommandError{cmd}
		}
		return p.Disable(probe.Feature(fields[1]))
	case "set":
		kv := strings.SplitN(strings.Join(fields[1:], " "), "=", 2)
		if len(kv) != 2 {
			return &malformedCommandError{cmd}
		}
		return a.Extensions.Set(strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
	default:
		return &malformedCommandError{cmd}
	}
}

type malformedCommandError struct{ cmd string }

func (e *malformedCommandError) Error() string { return "agent: malformed boot command: " + e.cmd }

func envIntOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
