// Package termgath prints campaign reports to the terminal.
package termgath

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fuzzkit/fuzzkit/internal"
)

var _ internal.ReportGatherer = (*TerminalGatherer)(nil)

type TerminalGatherer struct {
	startedAt time.Time
	verbose   bool

	crash *color.Color
	hang  *color.Color
	good  *color.Color
	bad   *color.Color
}

func New(verbose bool) *TerminalGatherer {
	return &TerminalGatherer{
		startedAt: time.Now(),
		verbose:   verbose,
		crash:     color.New(color.FgRed, color.Bold),
		hang:      color.New(color.FgYellow),
		good:      color.New(color.FgGreen),
		bad:       color.New(color.FgRed),
	}
}

func (t *TerminalGatherer) StartCampaign(systemInfo string) {
	fmt.Println("== campaign started ==")
	if systemInfo != "" {
		fmt.Println(systemInfo)
	}
}

func (t *TerminalGatherer) ReachCase(casePath string) {
	if t.verbose {
		fmt.Printf("-> %s\n", casePath)
	}
}

func (t *TerminalGatherer) FinishCase(run *internal.RunState) {
	if !t.verbose {
		return
	}
	if run.Exited {
		fmt.Printf("<- %s exit=%d branches=%d\n", run.CasePath, run.ExitCode, run.BranchCount)
		return
	}
	fmt.Printf("<- %s signal=%d branches=%d\n", run.CasePath, run.TermSignal, run.BranchCount)
}

func (t *TerminalGatherer) ReportCrash(crash *internal.CrashReport, input []byte) {
	t.crash.Printf("!! crash: %s pc=%#x case=%s sha256=%s\n",
		crash.SignalName, crash.PC, crash.CasePath, crash.InputSha)
}

func (t *TerminalGatherer) ReportHang(casePath string) {
	t.hang.Printf("?? hang: %s\n", casePath)
}

func (t *TerminalGatherer) InternalError(msg string) {
	t.bad.Printf("== internal error: %s ==\n", msg)
}

func (t *TerminalGatherer) FinishCampaign(stats *internal.CampaignStats) {
	dur := time.Since(t.startedAt).Round(time.Millisecond)
	t.good.Printf("== campaign finished in %s ==\n", dur)
	fmt.Printf("execs=%d crashes=%d unique=%d hangs=%d\n",
		stats.Execs, stats.Crashes, stats.UniqueCrashes, stats.Hangs)
	if len(stats.Signals) > 0 {
		fmt.Printf("signals: %s\n", strings.Join(stats.Signals, " "))
	}
}
