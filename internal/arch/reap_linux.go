//go:build linux

package arch

import (
	"fmt"

	"github.com/fuzzkit/fuzzkit/internal"
	"golang.org/x/sys/unix"
)

// reapState makes the one-shot instrumentation activation a structural
// property of the supervision loop instead of an ad hoc flag.
type reapState int

const (
	stateWaiting reapState = iota
	stateInstrumentationPending
	stateMonitoring
	stateDone
)

// Reap blocks until the trace subsystem classifies a state change of
// the child's process group as terminal, then hands the captured
// instrumentation handle to analysis. The reaper is the sole consumer
// of wait notifications for the child. A non-nil error means the
// engine has lost observability and must not continue.
func (s *Supervisor) Reap(cfg *internal.Config, run *internal.RunState, pgid int) error {
	var handle Handle
	state := stateWaiting

	for state != stateDone {
		pid, status, err := s.wait(pgid)
		if err != nil || pid <= 0 {
			// Interrupted waits are retried; a non-positive pid with
			// no error is not a valid terminal state either.
			continue
		}

		if state == stateWaiting {
			state = stateInstrumentationPending
		}

		if state == stateInstrumentationPending {
			handle, err = s.instr.Activate(pid, cfg)
			if err != nil {
				s.log.Error("failed to activate instrumentation", "pid", pid, "err", err)
				return fmt.Errorf("failed to activate instrumentation for pid %d: %w", pid, err)
			}
			state = stateMonitoring
		}

		s.log.Debug("process state change", "pid", pid, "status", int(status))

		if s.tracer.Classify(cfg, status, pid, run) {
			state = stateDone
		}
	}

	s.instr.Analyze(cfg, run, handle)
	return nil
}

func waitProcessGroup(pgid int) (int, unix.WaitStatus, error) {
	var status unix.WaitStatus
	pid, err := unix.Wait4(-pgid, &status, unix.WALL|unix.WNOTHREAD|unix.WUNTRACED|unix.WCONTINUED, nil)
	return pid, status, err
}
