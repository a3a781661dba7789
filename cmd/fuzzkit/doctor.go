package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "check kernel settings fuzzkit depends on",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			good := color.New(color.FgGreen)
			warn := color.New(color.FgYellow)
			bad := color.New(color.FgRed, color.Bold)

			ok := true

			scope, err := readIntSysctl("/proc/sys/kernel/yama/ptrace_scope")
			switch {
			case err != nil:
				warn.Printf("ptrace_scope: unreadable (%v), assuming ptrace works\n", err)
			case scope >= 2:
				bad.Printf("ptrace_scope: %d, ptrace is restricted to privileged processes\n", scope)
				ok = false
			default:
				good.Printf("ptrace_scope: %d\n", scope)
			}

			paranoid, err := readIntSysctl("/proc/sys/kernel/perf_event_paranoid")
			switch {
			case err != nil:
				warn.Printf("perf_event_paranoid: unreadable (%v), assuming perf works\n", err)
			case paranoid > 2:
				bad.Printf("perf_event_paranoid: %d, unprivileged perf counters are disabled\n", paranoid)
				ok = false
			default:
				good.Printf("perf_event_paranoid: %d\n", paranoid)
			}

			pattern, err := os.ReadFile("/proc/sys/kernel/core_pattern")
			if err == nil && strings.HasPrefix(strings.TrimSpace(string(pattern)), "|") {
				warn.Printf("core_pattern pipes cores to %s, core dumps will not land on disk\n",
					strings.TrimSpace(string(pattern)))
			}

			if !ok {
				return fmt.Errorf("this machine is not ready for fuzzing")
			}
			good.Println("all checks passed")
			return nil
		},
	}
}

func readIntSysctl(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
