package agent

import (
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
)

// SignalHandlers installs the two handlers of spec.md §4.J: one signal
// decodes and applies a command, another dumps a single-shot native
// backtrace. Grounded on the teacher's agent-controller main.go
// signal.Notify+cancel shutdown pattern, generalized to two distinct
// signals with two distinct actions instead of one shutdown action.
type SignalHandlers struct {
	decodeCh    chan os.Signal
	backtraceCh chan os.Signal

	mu    sync.Mutex
	slot  string // single-slot bounded buffer for the last captured backtrace
	onCmd func()
}

// Install registers decodeSig to trigger onCommand (applying a decoded
// command list) and backtraceSig to trigger a signal-safe capture of
// runtime.Stack into a bounded single slot, consumed later via
// TakeBacktrace. Returns a stop func that removes both handlers.
func Install(decodeSig, backtraceSig os.Signal, onCommand func()) (stop func()) {
	h := &SignalHandlers{
		decodeCh:    make(chan os.Signal, 1),
		backtraceCh: make(chan os.Signal, 1),
		onCmd:       onCommand,
	}
	signal.Notify(h.decodeCh, decodeSig)
	signal.Notify(h.backtraceCh, backtraceSig)

	done := make(chan struct{})
	go h.consume(done)
	return func() {
		signal.Stop(h.decodeCh)
		signal.Stop(h.backtraceCh)
		close(done)
	}
}

func (h *SignalHandlers) consume(done chan struct{}) {
	for {
		select {
		case <-h.decodeCh:
			if h.onCmd != nil {
				h.onCmd()
			}
		case <-h.backtraceCh:
			h.captureBacktrace()
		case <-done:
			return
		}
	}
}

// captureBacktrace dumps every goroutine's stack into the bounded
// single slot, overwriting (never blocking) per spec.md's "overflow is
// dropped" signal-safety rule.
func (h *SignalHandlers) captureBacktrace() {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	h.mu.Lock()
	h.slot = string(buf[:n])
	h.mu.Unlock()
	slog.Info("agent: captured signal-triggered backtrace", "bytes", n)
}

// TakeBacktrace returns and clears the most recently captured
// backtrace, or "" if none is pending.
func (h *SignalHandlers) TakeBacktrace() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.slot
	h.slot = ""
	return out
}
