//go:build linux && amd64

package trace

import "golang.org/x/sys/unix"

// crashProgramCounter reads the faulting instruction pointer. Best
// effort: zero means the registers were unreadable.
func crashProgramCounter(pid int) uint64 {
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(pid, &regs); err != nil {
		return 0
	}
	return regs.Rip
}
