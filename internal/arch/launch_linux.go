//go:build linux

package arch

import (
	"os"
	"os/exec"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/stdio"
	"golang.org/x/sys/unix"
)

// LaunchChild runs in the freshly re-exec'd child context. It hardens
// the process, arms the watchdogs, enables tracing on itself and
// replaces the process image with the target. On success it does not
// return; any returned error means the launch attempt is dead.
func (s *Supervisor) LaunchChild(cfg *internal.Config, casePath string) error {
	if err := hardenEnvironment(); err != nil {
		s.log.Error("failed to harden child environment", "err", err)
		return err
	}

	if cfg.TimeoutSec > 0 {
		if err := armTimeoutLayers(cfg.TimeoutSec); err != nil {
			s.log.Error("failed to arm timeout watchdogs", "err", err)
			return err
		}
	}

	applyAddressSpaceLimit(s.log, cfg.AsLimitMiB)

	if cfg.NullifyStdio {
		stdio.Nullify()
	}

	if cfg.FuzzStdin {
		if err := stdio.RedirectStdin(casePath); err != nil {
			s.log.Error("failed to redirect stdin", "case", casePath, "err", err)
			return err
		}
	}

	if err := s.tracer.EnableOnSelf(cfg); err != nil {
		s.log.Error("failed to enable tracing on self", "err", err)
		return err
	}

	argv, err := BuildArgv(cfg.Cmdline, casePath, cfg.FuzzStdin)
	if err != nil {
		s.log.Error("failed to materialize argument vector", "err", err)
		return err
	}

	s.log.Debug("launching target", "target", argv[0], "case", casePath)

	path, err := exec.LookPath(argv[0])
	if err == nil {
		err = unix.Exec(path, argv, os.Environ())
	}

	// Exec failed; put the streams back so the error is visible.
	stdio.Recover()
	s.log.Error("failed to exec target", "target", argv[0], "err", err)
	return err
}
