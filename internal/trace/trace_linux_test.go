//go:build linux

package trace_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/trace"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// Raw Linux wait status encodings: exits are code<<8, terminations are
// the signal number, stops are sig<<8|0x7f.
func exitStatus(code int) unix.WaitStatus   { return unix.WaitStatus(code << 8) }
func killStatus(sig unix.Signal) unix.WaitStatus { return unix.WaitStatus(sig) }
func stopStatus(sig unix.Signal) unix.WaitStatus { return unix.WaitStatus(int(sig)<<8 | 0x7f) }

// bogusPid is never a live process, so resume and register reads fail
// harmlessly inside Classify.
const bogusPid = 1 << 22

func newTracer() *trace.Tracer {
	return trace.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClassifyExit(t *testing.T) {
	run := &internal.RunState{}
	terminal := newTracer().Classify(&internal.Config{}, exitStatus(3), bogusPid, run)

	require.True(t, terminal)
	require.True(t, run.Exited)
	require.Equal(t, 3, run.ExitCode)
	require.Nil(t, run.Crash)
}

func TestClassifyCrashSignal(t *testing.T) {
	run := &internal.RunState{CasePath: "/tmp/case1"}
	terminal := newTracer().Classify(&internal.Config{}, killStatus(unix.SIGSEGV), bogusPid, run)

	require.True(t, terminal)
	require.False(t, run.Exited)
	require.Equal(t, int(unix.SIGSEGV), run.TermSignal)
	require.NotNil(t, run.Crash)
	require.Equal(t, "SIGSEGV", run.Crash.SignalName)
	require.Equal(t, "/tmp/case1", run.Crash.CasePath)
}

func TestClassifyWatchdogSignal(t *testing.T) {
	run := &internal.RunState{}
	terminal := newTracer().Classify(&internal.Config{}, killStatus(unix.SIGPROF), bogusPid, run)

	require.True(t, terminal)
	require.Equal(t, int(unix.SIGPROF), run.TermSignal)
	require.Nil(t, run.Crash)
}

func TestClassifyExecTrapIsNotTerminal(t *testing.T) {
	run := &internal.RunState{}
	terminal := newTracer().Classify(&internal.Config{}, stopStatus(unix.SIGTRAP), bogusPid, run)

	require.False(t, terminal)
	require.Nil(t, run.Crash)
}

func TestClassifyCrashStopRecordsBeforeDeath(t *testing.T) {
	tr := newTracer()
	run := &internal.RunState{CasePath: "/tmp/case2"}

	terminal := tr.Classify(&internal.Config{}, stopStatus(unix.SIGABRT), bogusPid, run)
	require.False(t, terminal)
	require.NotNil(t, run.Crash)
	require.Equal(t, "SIGABRT", run.Crash.SignalName)
	first := run.Crash

	// The eventual termination keeps the stop-time report.
	terminal = tr.Classify(&internal.Config{}, killStatus(unix.SIGABRT), bogusPid, run)
	require.True(t, terminal)
	require.Same(t, first, run.Crash)
}
