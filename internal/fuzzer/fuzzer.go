//go:build linux

// Package fuzzer drives fuzzing campaigns: it feeds corpus cases to
// workers, supervises every run and routes findings to the report
// gatherer.
package fuzzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/arch"
	"github.com/fuzzkit/fuzzkit/internal/corpus"
	"github.com/fuzzkit/fuzzkit/internal/utils"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

type Fuzzer struct {
	cfg  *internal.Config
	sup  *arch.Supervisor
	corp *corpus.Corpus
	gath internal.ReportGatherer
	log  *slog.Logger

	workDir  string
	crashDir string
	maxIters int64

	execs   *xsync.Counter
	crashes *xsync.Counter
	hangs   *xsync.Counter
	seen    *xsync.MapOf[string, struct{}]
	signals mapset.Set[string]
}

func New(cfg *internal.Config, sup *arch.Supervisor, corp *corpus.Corpus,
	gath internal.ReportGatherer, log *slog.Logger,
	workDir string, crashDir string, maxIters int64) *Fuzzer {

	return &Fuzzer{
		cfg:      cfg,
		sup:      sup,
		corp:     corp,
		gath:     gath,
		log:      log,
		workDir:  workDir,
		crashDir: crashDir,
		maxIters: maxIters,
		execs:    xsync.NewCounter(),
		crashes:  xsync.NewCounter(),
		hangs:    xsync.NewCounter(),
		seen:     xsync.NewMapOf[string, struct{}](),
		signals:  mapset.NewSet[string](),
	}
}

// Run executes the campaign with the given number of workers and
// blocks until the iteration budget is exhausted or ctx is cancelled.
func (f *Fuzzer) Run(ctx context.Context, workers int) error {
	if err := os.MkdirAll(f.workDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	if err := os.MkdirAll(f.crashDir, 0755); err != nil {
		return fmt.Errorf("failed to create crash directory: %w", err)
	}

	f.gath.StartCampaign(utils.SystemInfo())

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return f.workerLoop(ctx, w)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		f.gath.InternalError(err.Error())
		f.gath.FinishCampaign(f.stats())
		return err
	}

	f.gath.FinishCampaign(f.stats())
	return nil
}

// Replay runs a single case once, without the per-run copy.
func (f *Fuzzer) Replay(casePath string) error {
	if err := os.MkdirAll(f.crashDir, 0755); err != nil {
		return fmt.Errorf("failed to create crash directory: %w", err)
	}
	run, err := f.runCase(casePath)
	if err != nil {
		return err
	}
	f.gath.FinishCase(run)
	f.classify(run)
	return nil
}

func (f *Fuzzer) workerLoop(ctx context.Context, id int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if f.maxIters > 0 && f.execs.Value() >= f.maxIters {
			return nil
		}
		if err := f.runOne(id); err != nil {
			return err
		}
	}
}

func (f *Fuzzer) runOne(worker int) error {
	seed := f.corp.Next()
	casePath, err := f.materializeCase(seed, worker)
	if err != nil {
		return err
	}
	defer os.Remove(casePath)

	f.gath.ReachCase(casePath)

	run, err := f.runCase(casePath)
	if err != nil {
		return err
	}

	f.gath.FinishCase(run)
	f.classify(run)
	return nil
}

func (f *Fuzzer) runCase(casePath string) (*internal.RunState, error) {
	// The child is cloned from this thread and ptrace ties the tracee
	// to the forking task: Wait4 with WNOTHREAD and PtraceCont only
	// work from it, so the goroutine must not migrate until the run
	// is reaped.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pid, err := f.spawnChild(casePath)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn child: %w", err)
	}

	run := &internal.RunState{CasePath: casePath}
	if err := f.sup.Reap(f.cfg, run, pid); err != nil {
		// Observability is gone; the campaign must stop.
		return nil, err
	}
	f.execs.Inc()

	// Anything the target forked is not worth keeping around.
	_ = unix.Kill(-pid, unix.SIGKILL)

	return run, nil
}

func (f *Fuzzer) classify(run *internal.RunState) {
	switch {
	case run.Crash != nil:
		f.handleCrash(run)
	case f.isHang(run):
		f.hangs.Inc()
		f.gath.ReportHang(run.CasePath)
	}
}

func (f *Fuzzer) handleCrash(run *internal.RunState) {
	f.crashes.Inc()
	crash := run.Crash

	input, err := os.ReadFile(crash.CasePath)
	if err != nil {
		f.log.Warn("failed to read crashing input", "case", crash.CasePath, "err", err)
	}
	crash.InputSha = Sha256Hex(input)
	f.signals.Add(crash.SignalName)

	if _, dup := f.seen.LoadOrStore(crashSignature(crash), struct{}{}); dup {
		return
	}

	path, err := SaveArtifact(f.crashDir, crash, input)
	if err != nil {
		f.log.Warn("failed to archive crash input", "err", err)
	} else {
		f.log.Info("crash archived", "path", path)
	}
	f.gath.ReportCrash(crash, input)
}

// Signals the watchdog layers or the parent-death contract deliver; a
// run killed by one of them without a recorded crash counts as a hang.
var hangSignals = map[int]bool{
	int(unix.SIGPROF):   true,
	int(unix.SIGALRM):   true,
	int(unix.SIGVTALRM): true,
	int(unix.SIGXCPU):   true,
	int(unix.SIGKILL):   true,
}

func (f *Fuzzer) isHang(run *internal.RunState) bool {
	return !run.Exited && hangSignals[run.TermSignal]
}

// crashSignature keys crash dedup: faulting address when we have one,
// otherwise the input hash.
func crashSignature(c *internal.CrashReport) string {
	if c.PC != 0 {
		return fmt.Sprintf("%s.%#x", c.SignalName, c.PC)
	}
	return fmt.Sprintf("%s.%s", c.SignalName, c.InputSha)
}

// materializeCase copies the seed into a private working file the
// target is allowed to clobber.
func (f *Fuzzer) materializeCase(seed string, worker int) (string, error) {
	data, err := os.ReadFile(seed)
	if err != nil {
		return "", fmt.Errorf("failed to read seed %s: %w", seed, err)
	}

	name := fmt.Sprintf("fuzzkit.%d.%d.%s", os.Getpid(), worker, uuid.NewString())
	path := filepath.Join(f.workDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to materialize case %s: %w", path, err)
	}
	return path, nil
}

func (f *Fuzzer) stats() *internal.CampaignStats {
	unique := uint64(0)
	f.seen.Range(func(string, struct{}) bool {
		unique++
		return true
	})

	sigs := f.signals.ToSlice()
	sort.Strings(sigs)

	return &internal.CampaignStats{
		Execs:         uint64(f.execs.Value()),
		Crashes:       uint64(f.crashes.Value()),
		UniqueCrashes: unique,
		Hangs:         uint64(f.hangs.Value()),
		Signals:       sigs,
	}
}
