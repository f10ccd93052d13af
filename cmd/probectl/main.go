// Command probectl is the CLI front end to a running probing-agent: it
// issues query/probe/nodes requests over the agent's control plane,
// grounded on the teacher's cmd/bd cobra root-command structure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/probing-go/probing/internal/client"
)

var (
	socketPath string
	agentPID   int
	remoteAddr string
	authToken  string
	ctx        context.Context
	cancel     context.CancelFunc
)

func dial() *client.Client {
	if remoteAddr != "" {
		return client.DialTCP(remoteAddr, authToken)
	}
	path := socketPath
	if path == "" {
		path = resolveSocketPath(agentPID)
	}
	return client.DialUnix(path, authToken)
}

// resolveSocketPath reproduces the agent's own socketPath layout
// (ctrlRoot/<pid>) so --pid is enough to find a locally running agent
// without requiring the full --socket path.
func resolveSocketPath(pid int) string {
	root := os.Getenv("PROBING_CTRL_ROOT")
	if root == "" {
		root = "/tmp/probing/"
	}
	if pid == 0 {
		pid = os.Getppid()
	}
	return root + fmt.Sprint(pid)
}

var rootCmd = &cobra.Command{
	Use:   "probectl",
	Short: "probectl - control plane CLI for a running probing-agent",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "agent Unix domain socket path (default: $PROBING_CTRL_ROOT/<pid>)")
	rootCmd.PersistentFlags().IntVar(&agentPID, "pid", 0, "agent process ID, used to derive --socket when it's unset (default: parent process)")
	rootCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "", "agent TCP/HTTP address, overrides --socket")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("PROBING_AUTH_TOKEN"), "bearer auth token")

	rootCmd.AddCommand(queryCmd, probeCmd, nodesCmd, flamegraphCmd)

	if err := rootCmd.Execute(); err != nil {
		if cancel != nil {
			cancel()
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cancel != nil {
		cancel()
	}
}
