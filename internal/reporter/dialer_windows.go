//go:build windows

package reporter

import (
	"context"
	"net"
)

// nodelayDialContext on Windows relies on the runtime's default socket
// options; golang.org/x/sys/unix's setsockopt path isn't available
// here. net.Conn.(*net.TCPConn).SetNoDelay defaults to true in Go's
// runtime on all platforms, so the PUT already avoids Nagle coalescing
// without an explicit Control callback.
func nodelayDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: putTimeout}
	return d.DialContext(ctx, network, addr)
}
