//go:build !windows

package reporter

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// nodelayDialContext dials with TCP_NODELAY set on the raw socket
// before the handshake completes, per spec.md §4.I: the node PUT is a
// single small request on a short global timeout budget, so Nagle's
// coalescing delay is the latency risk worth eliminating, not
// keep-alive behavior.
func nodelayDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d := net.Dialer{
		Timeout: putTimeout,
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
			}); err != nil {
				return err
			}
			return sockErr
		},
	}
	return d.DialContext(ctx, network, addr)
}
