//go:build linux && amd64

package inject

// amd64Arch implements Arch for x86_64 tracees: trampoline is
// `call rax; int3`, the scratch register is rax, and the first three
// System V AMD64 integer argument registers are rdi, rsi, rdx.
type amd64Arch struct{}

func newArch() Arch { return amd64Arch{} }

// callRaxInt3 is `ff d0` (call rax) followed by `cc` (int3).
var callRaxInt3 = []byte{0xff, 0xd0, 0xcc}

func (amd64Arch) Trampoline() []byte     { return callRaxInt3 }
func (amd64Arch) StackAlignment() uint64 { return 16 }

func (amd64Arch) PC(r *Registers) uint64       { return r.Rip }
func (amd64Arch) SetPC(r *Registers, v uint64) { r.Rip = v }
func (amd64Arch) SP(r *Registers) uint64       { return r.Rsp }
func (amd64Arch) SetSP(r *Registers, v uint64) { r.Rsp = v }

func (amd64Arch) SetScratch(r *Registers, addr uint64) { r.Rax = addr }

func (amd64Arch) SetArgs(r *Registers, a0, a1, a2 uint64) {
	r.Rdi = a0
	r.Rsi = a1
	r.Rdx = a2
}

func (amd64Arch) ReturnValue(r *Registers) uint64 { return r.Rax }
