//go:build windows

package agent

import "os"

// DefaultSignals has no SIGUSR1/SIGUSR2 equivalent on Windows, so both
// roles fall back to os.Interrupt; once Install is called with them, an
// interrupt triggers both command-decode and backtrace capture.
func DefaultSignals() (decode, backtrace os.Signal) {
	return os.Interrupt, os.Interrupt
}
