//go:build linux

package inject

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// wordSize is the ptrace PEEKTEXT/POKETEXT transfer unit.
const wordSize = int(unsafe.Sizeof(uintptr(0)))

// InstructionWriter wraps ptrace's word-at-a-time PEEKTEXT/POKETEXT
// primitives behind a byte-slice Read/Write interface, so the rest of
// the injector doesn't deal with alignment directly.
type InstructionWriter struct {
	pid int
}

// NewInstructionWriter returns a writer targeting the given tracee.
func NewInstructionWriter(pid int) *InstructionWriter {
	return &InstructionWriter{pid: pid}
}

// Read copies len(buf) bytes starting at addr out of the tracee.
func (w *InstructionWriter) Read(addr uint64, buf []byte) error {
	n, err := unix.PtracePeekText(w.pid, uintptr(addr), buf)
	if err != nil {
		return fmt.Errorf("inject: PEEKTEXT at 0x%x: %w", addr, err)
	}
	if n != len(buf) {
		return fmt.Errorf("inject: PEEKTEXT at 0x%x: short read %d/%d bytes", addr, n, len(buf))
	}
	return nil
}

// Write copies data into the tracee starting at addr. Writes that
// don't end on a word boundary read-modify-write the final partial
// word so neighboring bytes are preserved.
func (w *InstructionWriter) Write(addr uint64, data []byte) error {
	full := (len(data) / wordSize) * wordSize
	if full > 0 {
		n, err := unix.PtracePokeText(w.pid, uintptr(addr), data[:full])
		if err != nil {
			return fmt.Errorf("inject: POKETEXT at 0x%x: %w", addr, err)
		}
		if n != full {
			return fmt.Errorf("inject: POKETEXT at 0x%x: short write %d/%d bytes", addr, n, full)
		}
	}
	if full == len(data) {
		return nil
	}

	tailAddr := addr + uint64(full)
	tail := data[full:]
	existing := make([]byte, wordSize)
	if err := w.Read(tailAddr, existing); err != nil {
		return err
	}
	copy(existing, tail)
	n, err := unix.PtracePokeText(w.pid, uintptr(tailAddr), existing)
	if err != nil {
		return fmt.Errorf("inject: POKETEXT tail at 0x%x: %w", tailAddr, err)
	}
	if n != wordSize {
		return fmt.Errorf("inject: POKETEXT tail at 0x%x: short write %d/%d bytes", tailAddr, n, wordSize)
	}
	return nil
}

// WriteCString null-terminates s and writes it at addr, returning the
// number of bytes written (including the terminator).
func (w *InstructionWriter) WriteCString(addr uint64, s string) (int, error) {
	buf := append([]byte(s), 0)
	if err := w.Write(addr, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}
