// Package reporter implements the periodic node-descriptor push of
// spec.md §4.I: build this process's Node from environment variables
// and either apply it to the local cluster.Registry (rank 0) or PUT it
// to the configured aggregator.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/probing-go/probing/internal/cluster"
)

const (
	defaultInterval = 10 * time.Second
	putTimeout      = 100 * time.Millisecond
)

// Reporter pushes this process's Node descriptor every Interval tick.
type Reporter struct {
	Registry   *cluster.Registry
	Aggregator string // host:port; empty means this node is rank 0 / local-only
	Addr       string // this node's own bound address, recorded in the Node
	Interval   time.Duration

	client *http.Client
}

// New builds a Reporter. aggregator is read from MASTER_ADDR by the
// caller (internal/agent wires env → Config); an empty aggregator
// means this node always applies locally regardless of its own rank,
// matching a single-node deployment.
func New(registry *cluster.Registry, aggregator, addr string, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Reporter{
		Registry:   registry,
		Aggregator: aggregator,
		Addr:       addr,
		Interval:   interval,
		client: &http.Client{
			Timeout:   putTimeout,
			Transport: &http.Transport{DialContext: nodelayDialContext},
		},
	}
}

// Run ticks until ctx is canceled. Each tick's network failure is
// logged and never retried within the same tick — spec.md §4.I is
// explicit that the next tick is the retry.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reporter) tick(ctx context.Context) {
	node := nodeFromEnv(r.Addr)
	if node.RankOr() == 0 || r.Aggregator == "" {
		r.Registry.Put(node)
		return
	}
	if err := r.putRemote(ctx, node); err != nil {
		slog.Warn("reporter: failed to push node to aggregator", "aggregator", r.Aggregator, "error", err)
	}
}

func (r *Reporter) putRemote(ctx context.Context, node cluster.Node) error {
	body, err := json.Marshal(node)
	if err != nil {
		return err
	}
	reqCtx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPut,
		"http://"+r.Aggregator+"/apis/nodes", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &httpStatusError{resp.StatusCode}
	}
	return nil
}

type httpStatusError struct{ status int }

func (e *httpStatusError) Error() string {
	return "reporter: aggregator returned " + strconv.Itoa(e.status)
}

// nodeFromEnv builds a Node from the process environment variables
// named in spec.md §4.I, stamping addr as this node's bound address.
func nodeFromEnv(addr string) cluster.Node {
	host, _ := os.Hostname()
	return cluster.Node{
		Host:           host,
		Addr:           addr,
		Rank:           envInt("RANK"),
		LocalRank:      envInt("LOCAL_RANK"),
		WorldSize:      envInt("WORLD_SIZE"),
		GroupRank:      envInt("GROUP_RANK"),
		GroupWorldSize: envInt("GROUP_WORLD_SIZE"),
		RoleName:       envString("ROLE_NAME"),
		RoleRank:       envInt("ROLE_RANK"),
		RoleWorldSize:  envInt("ROLE_WORLD_SIZE"),
	}
}

func envInt(key string) *int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func envString(key string) *string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	return &v
}
