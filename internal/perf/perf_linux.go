//go:build linux

// Package perf is the instrumentation collaborator: it binds a
// hardware branch counter to each fuzzed child via perf_event_open.
package perf

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/arch"
	"golang.org/x/sys/unix"
)

type Instrumenter struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Instrumenter {
	return &Instrumenter{log: log}
}

// Activate opens a branch-instruction counter bound to pid. The child
// is still stopped at its exec trap when this runs, so the counter
// observes the whole target lifetime.
func (p *Instrumenter) Activate(pid int, cfg *internal.Config) (arch.Handle, error) {
	attr := unix.PerfEventAttr{
		Type:   unix.PERF_TYPE_HARDWARE,
		Config: unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS,
		Bits:   unix.PerfBitDisabled | unix.PerfBitInherit | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
	attr.Size = uint32(unsafe.Sizeof(attr))

	fd, err := unix.PerfEventOpen(&attr, pid, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return 0, fmt.Errorf("failed to open perf event for pid %d: %w", pid, err)
	}
	if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
		_ = unix.Close(fd)
		return 0, fmt.Errorf("failed to reset perf counter: %w", err)
	}
	if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
		_ = unix.Close(fd)
		return 0, fmt.Errorf("failed to enable perf counter: %w", err)
	}

	p.log.Debug("perf counter enabled", "pid", pid, "fd", fd)
	return arch.Handle(fd), nil
}

// Analyze reads the final counter value into the run state and
// releases the handle.
func (p *Instrumenter) Analyze(cfg *internal.Config, run *internal.RunState, h arch.Handle) {
	fd := int(h)
	defer unix.Close(fd)

	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil || n != len(buf) {
		p.log.Debug("failed to read perf counter", "fd", fd, "err", err)
		return
	}
	run.BranchCount = binary.LittleEndian.Uint64(buf[:])
}
