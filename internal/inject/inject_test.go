//go:build linux

package inject

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEnvKey(t *testing.T) {
	require.Equal(t, "probing_log_level", normalizeEnvKey("probing.log.level"))
	require.Equal(t, "PATH", normalizeEnvKey("PATH"))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, uint64(0x1000), alignDown(0x1007, 16))
	require.Equal(t, uint64(0x1000), alignDown(0x1000, 16))
	require.Equal(t, uint64(0x2a), alignDown(0x2a, 0))
}

func TestParseMapsLine(t *testing.T) {
	line := "7f1234560000-7f1234580000 r-xp 00000000 08:01 131099                     /usr/lib/x86_64-linux-gnu/libc.so.6"
	r, ok := parseMapsLine(line)
	require.True(t, ok)
	require.Equal(t, uint64(0x7f1234560000), r.start)
	require.Equal(t, uint64(0x7f1234580000), r.end)
	require.Equal(t, "/usr/lib/x86_64-linux-gnu/libc.so.6", r.path)
}

func TestParseMapsLineAnonymousMapping(t *testing.T) {
	_, ok := parseMapsLine("7f1234560000-7f1234580000 rw-p 00000000 00:00 0")
	require.True(t, ok) // valid region, empty path
}

func TestBaseName(t *testing.T) {
	require.Equal(t, "ld-linux-x86-64.so.2", baseName("/lib64/ld-linux-x86-64.so.2"))
	require.Equal(t, "libc.so.6", baseName("libc.so.6"))
}

func TestArchTrampolineIs16ByteAlignedOnARM64OrNonEmptyOnAMD64(t *testing.T) {
	arch := newArch()
	require.NotNil(t, arch)
	tramp := arch.Trampoline()
	require.NotEmpty(t, tramp)
	require.True(t, arch.StackAlignment() >= 16)
}

func TestArchRegisterRoundTrip(t *testing.T) {
	arch := newArch()
	var regs Registers
	arch.SetPC(&regs, 0x1000)
	require.Equal(t, uint64(0x1000), arch.PC(&regs))
	arch.SetSP(&regs, 0x2000)
	require.Equal(t, uint64(0x2000), arch.SP(&regs))
	arch.SetScratch(&regs, 0x3000)
	arch.SetArgs(&regs, 0x10, 0x20, 0x30)
	arch.SetPC(&regs, 0x4000)
	require.Equal(t, uint64(0x4000), arch.PC(&regs))
}
