//go:build linux

// Package trace is the low-level observation collaborator: it marks
// children as tracees before exec and turns raw wait statuses into
// terminal/non-terminal verdicts, recording crashes on the way.
package trace

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fuzzkit/fuzzkit/internal"
	"golang.org/x/sys/unix"
)

type Tracer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Tracer {
	return &Tracer{log: log}
}

// Prepare verifies the kernel will let us trace our own children. Runs
// once, before any launch.
func (t *Tracer) Prepare() error {
	data, err := os.ReadFile("/proc/sys/kernel/yama/ptrace_scope")
	if err != nil {
		// No yama, no restrictions.
		return nil
	}
	scope, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil
	}
	if scope >= 2 {
		return fmt.Errorf("kernel.yama.ptrace_scope=%d forbids tracing children, lower it to 0 or 1", scope)
	}
	return nil
}

// EnableOnSelf marks the calling process as a tracee of its parent.
// Runs in the child, immediately before exec.
func (t *Tracer) EnableOnSelf(cfg *internal.Config) error {
	if _, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_TRACEME, 0, 0, 0, 0, 0); errno != 0 {
		return fmt.Errorf("failed to enable tracing on self: %w", errno)
	}
	return nil
}

var crashSignals = map[unix.Signal]bool{
	unix.SIGSEGV: true,
	unix.SIGABRT: true,
	unix.SIGBUS:  true,
	unix.SIGILL:  true,
	unix.SIGFPE:  true,
}

// Classify consumes one raw wait status and reports whether it is
// terminal for the child. Stopped tracees are resumed so the target
// keeps running; a stop on a crash signal is recorded and the signal
// delivered so the process dies with it on the next continue.
func (t *Tracer) Classify(cfg *internal.Config, status unix.WaitStatus, pid int, run *internal.RunState) bool {
	switch {
	case status.Exited():
		run.Exited = true
		run.ExitCode = status.ExitStatus()
		return true

	case status.Signaled():
		sig := status.Signal()
		run.TermSignal = int(sig)
		if crashSignals[sig] && run.Crash == nil {
			t.recordCrash(run, pid, sig)
		}
		return true

	case status.Stopped():
		sig := status.StopSignal()
		deliver := unix.Signal(0)
		if sig != unix.SIGTRAP {
			// The exec trap is swallowed, everything else is forwarded.
			deliver = sig
		}
		if crashSignals[sig] && run.Crash == nil {
			t.recordCrash(run, pid, sig)
		}
		if err := unix.PtraceCont(pid, int(deliver)); err != nil {
			t.log.Debug("failed to resume tracee", "pid", pid, "err", err)
		}
		return false

	default:
		// Continued events and anything unrecognized keep the loop going.
		return false
	}
}

func (t *Tracer) recordCrash(run *internal.RunState, pid int, sig unix.Signal) {
	run.Crash = &internal.CrashReport{
		Signal:     int(sig),
		SignalName: unix.SignalName(sig),
		PC:         crashProgramCounter(pid),
		CasePath:   run.CasePath,
		FoundAt:    time.Now(),
	}
	t.log.Info("crash detected",
		"pid", pid,
		"signal", run.Crash.SignalName,
		"pc", fmt.Sprintf("%#x", run.Crash.PC),
		"case", run.CasePath)
}
