package agent

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInstallTriggersOnCommand(t *testing.T) {
	decode, backtrace := DefaultSignals()
	calls := make(chan struct{}, 1)
	stop := Install(decode, backtrace, func() { calls <- struct{}{} })
	defer stop()

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(decode))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("onCommand was never invoked")
	}
}

func TestCaptureBacktraceRoundTrip(t *testing.T) {
	h := &SignalHandlers{}
	require.Equal(t, "", h.TakeBacktrace())
	h.captureBacktrace()
	bt := h.TakeBacktrace()
	require.NotEmpty(t, bt)
	require.Equal(t, "", h.TakeBacktrace())
}

func TestDefaultSignalsAreSet(t *testing.T) {
	decode, backtrace := DefaultSignals()
	require.NotNil(t, decode)
	require.NotNil(t, backtrace)
}
