//go:build linux

package fuzzer

import (
	"testing"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCrashSignatureUsesFaultAddress(t *testing.T) {
	a := &internal.CrashReport{SignalName: "SIGSEGV", PC: 0x401000, InputSha: "aaa"}
	b := &internal.CrashReport{SignalName: "SIGSEGV", PC: 0x401000, InputSha: "bbb"}
	c := &internal.CrashReport{SignalName: "SIGSEGV", PC: 0x402000, InputSha: "aaa"}

	require.Equal(t, crashSignature(a), crashSignature(b))
	require.NotEqual(t, crashSignature(a), crashSignature(c))
}

func TestCrashSignatureFallsBackToInputHash(t *testing.T) {
	a := &internal.CrashReport{SignalName: "SIGABRT", InputSha: "aaa"}
	b := &internal.CrashReport{SignalName: "SIGABRT", InputSha: "bbb"}

	require.NotEqual(t, crashSignature(a), crashSignature(b))
}

func TestIsHang(t *testing.T) {
	f := &Fuzzer{}

	require.True(t, f.isHang(&internal.RunState{TermSignal: int(unix.SIGPROF)}))
	require.True(t, f.isHang(&internal.RunState{TermSignal: int(unix.SIGXCPU)}))
	require.True(t, f.isHang(&internal.RunState{TermSignal: int(unix.SIGKILL)}))

	// Crashed and cleanly exited runs are not hangs.
	require.False(t, f.isHang(&internal.RunState{TermSignal: int(unix.SIGSEGV)}))
	require.False(t, f.isHang(&internal.RunState{Exited: true}))
}
