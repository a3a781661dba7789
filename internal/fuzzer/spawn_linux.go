//go:build linux

package fuzzer

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/fuzzkit/fuzzkit/internal"
)

// LaunchCommand is the hidden CLI command the child re-exec enters.
const LaunchCommand = "launch"

const childSpecEnv = "FUZZKIT_CHILD_SPEC"

// spawnChild re-execs the fuzzkit binary in launch mode. The child
// hardens itself and execs the target in place, so the returned pid is
// the target's pid. Setpgid gives the child its own process group for
// the reaper to wait on.
func (f *Fuzzer) spawnChild(casePath string) (int, error) {
	self, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve own binary: %w", err)
	}

	spec, err := json.Marshal(f.cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to encode child spec: %w", err)
	}

	attr := &os.ProcAttr{
		Env:   append(os.Environ(), childSpecEnv+"="+string(spec)),
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
		Sys:   &syscall.SysProcAttr{Setpgid: true},
	}

	proc, err := os.StartProcess(self, []string{self, LaunchCommand, casePath}, attr)
	if err != nil {
		return 0, err
	}
	pid := proc.Pid
	// The reaper owns wait; drop the os.Process handle.
	_ = proc.Release()
	return pid, nil
}

// ChildSpec recovers the config passed by spawnChild. Called from the
// re-exec'd child.
func ChildSpec() (*internal.Config, error) {
	raw := os.Getenv(childSpecEnv)
	if raw == "" {
		return nil, fmt.Errorf("%s is not set; the %s command is internal to fuzzkit", childSpecEnv, LaunchCommand)
	}
	var cfg internal.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode child spec: %w", err)
	}
	return &cfg, nil
}
