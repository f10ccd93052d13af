//go:build linux

// Package inject implements the ptrace-based process injector: it
// attaches to a running target by pid, writes an architecture-specific
// trampoline into its address space, and drives it through dlopen and
// setenv calls to load the agent shared object with its environment,
// restoring the tracee exactly as found on every exit path.
package inject

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"
)

const (
	rtldNow          = 0x2
	loaderWaitBudget = 5 * time.Second
	scratchAreaSize  = 256 // bytes reserved below SP for trampoline + strings
)

// Injector drives one ptrace attach session at a time; the tracer
// cannot be shared across concurrent targets (spec.md §5).
type Injector struct {
	arch Arch
}

// New returns an Injector using this process's own GOARCH trampoline,
// or an error if the platform has no Arch implementation registered.
func New() (*Injector, error) {
	arch := newArch()
	if arch == nil {
		return nil, fmt.Errorf("inject: unsupported architecture")
	}
	return &Injector{arch: arch}, nil
}

// Attach runs the full 10-step protocol of spec.md §4.G against pid:
// wait for the loader, save state, write the trampoline, dlopen
// libPath, setenv every entry of env, then restore the tracee exactly.
func (inj *Injector) Attach(ctx context.Context, pid int, libPath string, env map[string]string) error {
	if err := unix.PtraceAttach(pid); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	var waitStatus syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &waitStatus, 0, nil); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	defer unix.PtraceDetach(pid)

	if err := inj.waitForLoader(ctx, pid); err != nil {
		return err
	}

	writer := NewInstructionWriter(pid)

	var savedRegs Registers
	if err := unix.PtraceGetRegs(pid, &savedRegs); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	pc := inj.arch.PC(&savedRegs)

	tramp := inj.arch.Trampoline()
	savedCode := make([]byte, len(tramp))
	if err := writer.Read(pc, savedCode); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}

	restore := func() error {
		if err := writer.Write(pc, savedCode); err != nil {
			return err
		}
		return unix.PtraceSetRegs(pid, &savedRegs)
	}
	// Every exit path below restores code+registers before returning,
	// per the round-trip invariant (spec.md §8 scenario 6).
	defer restore()

	dlopenAddr, _, err := resolveLibrarySymbol(pid, "libdl", "dlopen")
	if err != nil {
		// glibc >= 2.34 folds libdl into libc.
		dlopenAddr, _, err = resolveLibrarySymbol(pid, "libc", "dlopen")
		if err != nil {
			return &AttachFailed{Pid: pid, Err: err}
		}
	}
	setenvAddr, _, err := resolveLibrarySymbol(pid, "libc", "setenv")
	if err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}

	if err := writer.Write(pc, tramp); err != nil {
		return &RemoteWriteFailed{Pid: pid, Err: err}
	}

	handle, err := inj.callRemote(pid, writer, dlopenAddr, pc, func(regs *Registers, strAddr uint64) {
		inj.arch.SetArgs(regs, strAddr, rtldNow, 0)
	}, libPath)
	if err != nil {
		return err
	}
	if int64(handle) <= 0 {
		return &LoadFailed{Pid: pid, LibPath: libPath}
	}

	for k, v := range env {
		normalized := normalizeEnvKey(k)
		if err := inj.setenvRemote(pid, writer, setenvAddr, pc, normalized, v); err != nil {
			return err
		}
	}

	return nil
}

// normalizeEnvKey replaces "." with "_" in keys prefixed "probing.",
// per spec.md §4.G's invariant.
func normalizeEnvKey(key string) string {
	if strings.HasPrefix(key, "probing.") {
		return strings.ReplaceAll(key, ".", "_")
	}
	return key
}

// callRemote writes str onto the tracee's stack below the current SP
// (respecting arch alignment), points the scratch register at target,
// sets argument registers via setArgs, runs the trampoline to
// completion, and returns the call's return value.
func (inj *Injector) callRemote(pid int, writer *InstructionWriter, target, pc uint64,
	setArgs func(regs *Registers, strAddr uint64), str string) (uint64, error) {

	var regs Registers
	if err := unix.PtraceGetRegs(pid, &regs); err != nil {
		return 0, &AttachFailed{Pid: pid, Err: err}
	}

	sp := inj.arch.SP(&regs)
	sp -= scratchAreaSize
	sp = alignDown(sp, inj.arch.StackAlignment())
	strAddr := sp

	if _, err := writer.WriteCString(strAddr, str); err != nil {
		return 0, &RemoteWriteFailed{Pid: pid, Err: err}
	}

	inj.arch.SetPC(&regs, pc)
	inj.arch.SetSP(&regs, sp)
	inj.arch.SetScratch(&regs, target)
	setArgs(&regs, strAddr)

	if err := unix.PtraceSetRegs(pid, &regs); err != nil {
		return 0, &AttachFailed{Pid: pid, Err: err}
	}
	if err := inj.runToTrap(pid); err != nil {
		return 0, err
	}

	var after Registers
	if err := unix.PtraceGetRegs(pid, &after); err != nil {
		return 0, &AttachFailed{Pid: pid, Err: err}
	}
	return inj.arch.ReturnValue(&after), nil
}

func (inj *Injector) setenvRemote(pid int, writer *InstructionWriter, setenvAddr, pc uint64, key, value string) error {
	var regs Registers
	if err := unix.PtraceGetRegs(pid, &regs); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	sp := alignDown(inj.arch.SP(&regs)-scratchAreaSize, inj.arch.StackAlignment())

	keyAddr := sp
	n, err := writer.WriteCString(keyAddr, key)
	if err != nil {
		return &RemoteWriteFailed{Pid: pid, Err: err}
	}
	valAddr := keyAddr + uint64(n)
	if _, err := writer.WriteCString(valAddr, value); err != nil {
		return &RemoteWriteFailed{Pid: pid, Err: err}
	}

	inj.arch.SetPC(&regs, pc)
	inj.arch.SetSP(&regs, sp)
	inj.arch.SetScratch(&regs, setenvAddr)
	inj.arch.SetArgs(&regs, keyAddr, valAddr, 1) // overwrite=1
	if err := unix.PtraceSetRegs(pid, &regs); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	return inj.runToTrap(pid)
}

func alignDown(addr, align uint64) uint64 {
	if align == 0 {
		return addr
	}
	return addr &^ (align - 1)
}

// runToTrap continues the tracee until it stops on the trampoline's
// trap instruction (or exits/signals, which is reported as an error).
func (inj *Injector) runToTrap(pid int) error {
	if err := unix.PtraceCont(pid, 0); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	var status syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &status, 0, nil); err != nil {
		return &AttachFailed{Pid: pid, Err: err}
	}
	if status.Exited() {
		return &AttachFailed{Pid: pid, Err: fmt.Errorf("tracee exited during remote call (status %d)", status.ExitStatus())}
	}
	if !status.Stopped() {
		return &AttachFailed{Pid: pid, Err: fmt.Errorf("unexpected wait status %v", status)}
	}
	return nil
}

// waitForLoader polls /proc/<pid>/maps for the dynamic loader with a
// bounded exponential back-off, failing with LoaderNotFound once the
// budget is exhausted.
func (inj *Injector) waitForLoader(ctx context.Context, pid int) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 20), ctx)
	deadline := time.Now().Add(loaderWaitBudget)

	op := func() error {
		if time.Now().After(deadline) {
			return backoff.Permanent(&LoaderNotFound{Pid: pid})
		}
		mapped, err := loaderMapped(pid)
		if err != nil {
			return backoff.Permanent(&AttachFailed{Pid: pid, Err: err})
		}
		if !mapped {
			return fmt.Errorf("inject: loader not yet mapped in pid %d", pid)
		}
		return nil
	}
	if err := backoff.Retry(op, b); err != nil {
		if lnf, ok := err.(*LoaderNotFound); ok {
			return lnf
		}
		if af, ok := err.(*AttachFailed); ok {
			return af
		}
		return &LoaderNotFound{Pid: pid}
	}
	return nil
}
