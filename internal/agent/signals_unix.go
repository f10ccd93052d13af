//go:build !windows

package agent

import (
	"os"
	"syscall"
)

// DefaultSignals returns the conventional decode/backtrace signal
// pair: SIGUSR1 decodes PROBING_ARGS-style commands, SIGUSR2 dumps a
// backtrace.
func DefaultSignals() (decode, backtrace os.Signal) {
	return syscall.SIGUSR1, syscall.SIGUSR2
}
