//go:build linux && arm64

package inject

// arm64Arch implements Arch for aarch64 tracees: trampoline is
// `nop; nop; blr x8; brk #0` (16 bytes), the scratch register is x8,
// and the first three AAPCS64 argument registers are x0, x1, x2.
type arm64Arch struct{}

func newArch() Arch { return arm64Arch{} }

// nopNopBlrX8Brk0 is the 16-byte trampoline: two nops (alignment
// padding), `blr x8`, then `brk #0` so the tracee traps right after
// the call returns.
var nopNopBlrX8Brk0 = []byte{
	0x1f, 0x20, 0x03, 0xd5, // nop
	0x1f, 0x20, 0x03, 0xd5, // nop
	0x00, 0x01, 0x3f, 0xd6, // blr x8
	0x00, 0x00, 0x20, 0xd4, // brk #0
}

func (arm64Arch) Trampoline() []byte     { return nopNopBlrX8Brk0 }
func (arm64Arch) StackAlignment() uint64 { return 16 }

func (arm64Arch) PC(r *Registers) uint64       { return r.Pc }
func (arm64Arch) SetPC(r *Registers, v uint64) { r.Pc = v }
func (arm64Arch) SP(r *Registers) uint64       { return r.Sp }
func (arm64Arch) SetSP(r *Registers, v uint64) { r.Sp = v }

func (arm64Arch) SetScratch(r *Registers, addr uint64) { r.Regs[8] = addr }

func (arm64Arch) SetArgs(r *Registers, a0, a1, a2 uint64) {
	r.Regs[0] = a0
	r.Regs[1] = a1
	r.Regs[2] = a2
}

func (arm64Arch) ReturnValue(r *Registers) uint64 { return r.Regs[0] }
