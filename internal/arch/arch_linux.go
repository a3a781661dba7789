//go:build linux

// Package arch owns the OS-level core of the engine: launching targets
// inside a hardened, resource-limited child context and supervising
// them until the trace subsystem declares the run over.
package arch

import (
	"fmt"
	"log/slog"

	"github.com/fuzzkit/fuzzkit/internal"
	"golang.org/x/sys/unix"
)

// Handle identifies an activated instrumentation resource. For the
// perf collaborator it is the counter file descriptor.
type Handle int

// Tracer is the low-level process observation collaborator. Prepare
// runs once per engine, EnableOnSelf in the child just before exec,
// Classify in the supervisor after every wait.
type Tracer interface {
	Prepare() error
	EnableOnSelf(cfg *internal.Config) error
	Classify(cfg *internal.Config, status unix.WaitStatus, pid int, run *internal.RunState) bool
}

// Instrumenter is the counter-collection collaborator. Activate binds
// instrumentation to a live pid; Analyze consumes the handle once the
// run is terminal.
type Instrumenter interface {
	Activate(pid int, cfg *internal.Config) (Handle, error)
	Analyze(cfg *internal.Config, run *internal.RunState, h Handle)
}

// Supervisor ties the launcher and reaper to their collaborators.
type Supervisor struct {
	tracer Tracer
	instr  Instrumenter
	log    *slog.Logger

	wait func(pgid int) (int, unix.WaitStatus, error)
}

func NewSupervisor(tracer Tracer, instr Instrumenter, log *slog.Logger) *Supervisor {
	return &Supervisor{
		tracer: tracer,
		instr:  instr,
		log:    log,
		wait:   waitProcessGroup,
	}
}

// Init prepares the trace subsystem. It must be called once before the
// first launch; if it fails, no launches may proceed.
func (s *Supervisor) Init() error {
	if err := s.tracer.Prepare(); err != nil {
		return fmt.Errorf("failed to prepare trace subsystem: %w", err)
	}
	return nil
}
