// Command probing-agent runs the diagnostic agent as a standalone
// process: it loads configuration from the environment, starts the
// control-plane server(s), and blocks until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/probing-go/probing/internal/agent"
)

const unloadTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "optional probing.yaml with install-time defaults")
	flag.Parse()

	cfg, err := agent.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("probing-agent: config: %v", err)
	}

	logger := agent.NewLogger(cfg.Log)
	a := agent.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("probing-agent: received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := a.Load(ctx); err != nil {
		logger.Error("probing-agent: load failed", "error", err)
		os.Exit(1)
	}
	logger.Info("probing-agent: started", "port", cfg.Port, "ctrl_root", cfg.CtrlRoot)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), unloadTimeout)
	defer shutdownCancel()
	if err := a.Unload(shutdownCtx); err != nil {
		logger.Error("probing-agent: unload failed", "error", err)
		os.Exit(1)
	}
	logger.Info("probing-agent: stopped")
}
