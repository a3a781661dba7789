//go:build linux

package arch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"syscall"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type waitEvent struct {
	pid    int
	status unix.WaitStatus
	err    error
}

type fakeTracer struct {
	classified int
}

func (f *fakeTracer) Prepare() error                            { return nil }
func (f *fakeTracer) EnableOnSelf(cfg *internal.Config) error   { return nil }
func (f *fakeTracer) Classify(cfg *internal.Config, status unix.WaitStatus, pid int, run *internal.RunState) bool {
	f.classified++
	return status.Exited() || status.Signaled()
}

type fakeInstr struct {
	activated int
	analyzed  int
	handle    Handle
	fail      bool
}

func (f *fakeInstr) Activate(pid int, cfg *internal.Config) (Handle, error) {
	f.activated++
	if f.fail {
		return 0, fmt.Errorf("perf_event_open denied")
	}
	return f.handle, nil
}

func (f *fakeInstr) Analyze(cfg *internal.Config, run *internal.RunState, h Handle) {
	f.analyzed++
}

func scriptedSupervisor(tracer Tracer, instr Instrumenter, events []waitEvent) *Supervisor {
	s := NewSupervisor(tracer, instr, slog.New(slog.NewTextHandler(io.Discard, nil)))
	i := 0
	s.wait = func(pgid int) (int, unix.WaitStatus, error) {
		ev := events[i]
		i++
		return ev.pid, ev.status, ev.err
	}
	return s
}

const (
	// Raw Linux wait status encodings.
	statusStopTrap = unix.WaitStatus(int(unix.SIGTRAP)<<8 | 0x7f)
	statusExitZero = unix.WaitStatus(0)
)

func TestReapActivatesInstrumentationOnce(t *testing.T) {
	tracer := &fakeTracer{}
	instr := &fakeInstr{handle: 42}
	s := scriptedSupervisor(tracer, instr, []waitEvent{
		{pid: 100, status: statusStopTrap},
		{pid: 100, status: statusStopTrap},
		{pid: 100, status: statusExitZero},
	})

	run := &internal.RunState{}
	err := s.Reap(&internal.Config{}, run, 100)
	require.NoError(t, err)

	require.Equal(t, 1, instr.activated)
	require.Equal(t, 3, tracer.classified)
	require.Equal(t, 1, instr.analyzed)
}

func TestReapRetriesInterruptedWaits(t *testing.T) {
	tracer := &fakeTracer{}
	instr := &fakeInstr{}
	s := scriptedSupervisor(tracer, instr, []waitEvent{
		{pid: -1, err: unix.EINTR},
		{pid: 0},
		{pid: 100, status: statusExitZero},
	})

	err := s.Reap(&internal.Config{}, &internal.RunState{}, 100)
	require.NoError(t, err)

	require.Equal(t, 1, tracer.classified)
	require.Equal(t, 1, instr.activated)
	require.Equal(t, 1, instr.analyzed)
}

// WNOTHREAD restricts the wait to children of the calling task, so
// forking and reaping must share one locked OS thread.
func TestWaitProcessGroupReapsOnForkingThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	proc, err := os.StartProcess("/bin/true", []string{"true"}, &os.ProcAttr{
		Sys: &syscall.SysProcAttr{Setpgid: true},
	})
	require.NoError(t, err)
	pid := proc.Pid
	require.NoError(t, proc.Release())

	for {
		got, status, err := waitProcessGroup(pid)
		if err == unix.EINTR {
			continue
		}
		require.NoError(t, err)
		require.Equal(t, pid, got)
		require.True(t, status.Exited())
		return
	}
}

func TestReapActivationFailureIsFatal(t *testing.T) {
	tracer := &fakeTracer{}
	instr := &fakeInstr{fail: true}
	s := scriptedSupervisor(tracer, instr, []waitEvent{
		{pid: 100, status: statusStopTrap},
	})

	err := s.Reap(&internal.Config{}, &internal.RunState{}, 100)
	require.Error(t, err)

	require.Equal(t, 0, tracer.classified)
	require.Equal(t, 0, instr.analyzed)
}
