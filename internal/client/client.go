// Package client implements probectl's connection to a running agent:
// an HTTP client dialed over either the agent's Unix domain socket or
// a remote TCP address, grounded on the teacher's internal/rpc
// HTTPClient (http_client.go) dial-and-wrap-in-http.Client idiom.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/probing-go/probing/internal/wire"
)

// Client talks to one agent's control plane over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// DialUnix connects to the agent listening on the Unix domain socket
// at socketPath.
func DialUnix(socketPath string, token string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: 5 * time.Second}
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &Client{
		baseURL: "http://unix",
		token:   token,
		http:    &http.Client{Transport: transport, Timeout: 30 * time.Second},
	}
}

// DialTCP connects to the agent listening at addr (host:port), or a
// full http(s):// URL for a remote aggregator-fronted agent.
func DialTCP(addr string, token string) *Client {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimSuffix(base, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// /query and /probe encode failures as a structured body (wire.Data's
	// DataError / wire.ProbeReply's ReturnErr) rather than a bare status,
	// so a non-2xx here isn't itself a transport failure — only a status
	// with no decodable body (auth/routing failures) is.
	if out == nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("client: %s %s: status %d", method, path, resp.StatusCode)
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode >= 300 {
			return fmt.Errorf("client: %s %s: status %d", method, path, resp.StatusCode)
		}
		return err
	}
	return nil
}

// Query runs expr against the agent's query engine.
func (c *Client) Query(ctx context.Context, expr string, opts map[string]string) (*wire.Data, error) {
	var data wire.Data
	if err := c.do(ctx, http.MethodPost, "/query", wire.Query{Expr: expr, Opts: opts}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Probe sends a single probe call (backtrace/eval/enable/disable/flamegraph).
func (c *Client) Probe(ctx context.Context, call wire.ProbeCall) (*wire.ProbeReply, error) {
	var reply wire.ProbeReply
	if err := c.do(ctx, http.MethodPost, "/probe", call, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Nodes lists every node the agent's cluster registry currently holds.
func (c *Client) Nodes(ctx context.Context) ([]json.RawMessage, error) {
	var nodes []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/apis/nodes", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
