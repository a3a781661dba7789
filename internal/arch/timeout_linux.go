//go:build linux

package arch

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// A watchdog is one independent expiry mechanism armed in the child
// before exec. The layers are not redundant: a target can sleep
// through the CPU timer, catch the timer signals, or both, and each
// layer closes one such escape.
type watchdog struct {
	name    string
	seconds int64
	arm     func(seconds int64) error
}

func timeoutLayers(timeoutSec int64) []watchdog {
	if timeoutSec == 0 {
		return nil
	}
	return []watchdog{
		{name: "cpu-interval-timer", seconds: timeoutSec, arm: armCpuIntervalTimer},
		{name: "wall-clock-timer", seconds: timeoutSec * 2, arm: armWallClockTimer},
		{name: "cpu-rlimit", seconds: timeoutSec * 2, arm: armCpuRlimit},
	}
}

func armTimeoutLayers(timeoutSec int64) error {
	for _, w := range timeoutLayers(timeoutSec) {
		if err := w.arm(w.seconds); err != nil {
			return fmt.Errorf("failed to arm %s: %w", w.name, err)
		}
	}
	return nil
}

// Fires every `seconds` of process CPU time.
func armCpuIntervalTimer(seconds int64) error {
	it := unix.Itimerval{
		Interval: unix.Timeval{Sec: seconds},
		Value:    unix.Timeval{Sec: seconds},
	}
	_, err := unix.Setitimer(unix.ItimerProf, it)
	return err
}

// Fires once on the wall clock, for targets that sleep instead of
// burning CPU.
func armWallClockTimer(seconds int64) error {
	it := unix.Itimerval{
		Value: unix.Timeval{Sec: seconds},
	}
	_, err := unix.Setitimer(unix.ItimerReal, it)
	return err
}

// Backstop for targets that install handlers swallowing SIGPROF and
// SIGALRM; the kernel kills on the hard CPU limit regardless.
func armCpuRlimit(seconds int64) error {
	rl := unix.Rlimit{Cur: uint64(seconds), Max: uint64(seconds)}
	return unix.Setrlimit(unix.RLIMIT_CPU, &rl)
}
