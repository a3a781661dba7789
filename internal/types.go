package internal

import "time"

// FilePlaceholder is the reserved token in a target command line that
// gets substituted with the current test case path.
const FilePlaceholder = "___FILE___"

// Config describes the fuzz target. It is shared read-only by every
// worker in a campaign and is never mutated after startup.
type Config struct {
	Cmdline      []string `json:"cmdline"`
	FuzzStdin    bool     `json:"fuzz_stdin"`
	NullifyStdio bool     `json:"nullify_stdio"`
	TimeoutSec   int64    `json:"timeout_sec"`
	AsLimitMiB   int64    `json:"as_limit_mib"`
}

// RunState accumulates the outcome of a single fuzzing run. It is
// owned by exactly one launcher/reaper pair for the run's lifetime.
type RunState struct {
	CasePath string `json:"case_path"`

	Exited     bool `json:"exited"`
	ExitCode   int  `json:"exit_code"`
	TermSignal int  `json:"term_signal"`

	BranchCount uint64 `json:"branch_count"`

	Crash *CrashReport `json:"crash"`
}

// CrashReport is written into the RunState by the trace subsystem when
// a run terminates on a crash signal.
type CrashReport struct {
	Signal     int       `json:"signal"`
	SignalName string    `json:"signal_name"`
	PC         uint64    `json:"pc"`
	CasePath   string    `json:"case_path"`
	InputSha   string    `json:"input_sha256"`
	FoundAt    time.Time `json:"found_at"`
}

// CampaignStats summarizes a finished campaign.
type CampaignStats struct {
	Execs         uint64   `json:"execs"`
	Crashes       uint64   `json:"crashes"`
	UniqueCrashes uint64   `json:"unique_crashes"`
	Hangs         uint64   `json:"hangs"`
	Signals       []string `json:"signals"`
}
