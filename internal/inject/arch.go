//go:build linux

package inject

import "golang.org/x/sys/unix"

// Registers is the tracee's general-purpose register file, as read by
// PTRACE_GETREGS; its concrete field layout (Rip/Rax vs Pc/Regs[8]) is
// GOARCH-specific and only ever touched inside arch_<GOARCH>.go.
type Registers = unix.PtraceRegs

// Arch supplies the architecture-specific pieces of the attach protocol:
// trampoline bytes, which register holds the call target, argument
// register order, and the tracee stack's minimum alignment.
type Arch interface {
	// Trampoline returns the shellcode written at the tracee's PC: a
	// call through the scratch register followed by a trap, so the
	// tracee stops right after the call returns.
	Trampoline() []byte
	// StackAlignment is the number of bytes the tracee's stack pointer
	// must be a multiple of before the trampoline runs.
	StackAlignment() uint64

	// PC/SetPC read and write the program counter.
	PC(regs *Registers) uint64
	SetPC(regs *Registers, v uint64)
	// SP/SetSP read and write the stack pointer.
	SP(regs *Registers) uint64
	SetSP(regs *Registers, v uint64)
	// SetScratch loads the call target (e.g. dlopen's address) into the
	// architecture's scratch register (rax on x86_64, x8 on aarch64).
	SetScratch(regs *Registers, addr uint64)
	// SetArgs loads up to three argument registers with the call's
	// arguments, in calling-convention order.
	SetArgs(regs *Registers, a0, a1, a2 uint64)
	// ReturnValue reads the call's return value register after the
	// trampoline traps.
	ReturnValue(regs *Registers) uint64
}
