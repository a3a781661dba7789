package api

// RunData is the wire form of a single run's outcome.
type RunData struct {
	CasePath   string `json:"case_path"`
	Exited     bool   `json:"exited"`
	ExitCode   int    `json:"exit_code"`
	TermSignal *int   `json:"term_signal"`
	Branches   uint64 `json:"branches"`
}
