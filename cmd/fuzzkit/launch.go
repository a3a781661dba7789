package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/fuzzkit/fuzzkit/internal/arch"
	"github.com/fuzzkit/fuzzkit/internal/fuzzer"
	"github.com/fuzzkit/fuzzkit/internal/perf"
	"github.com/fuzzkit/fuzzkit/internal/trace"
	"github.com/urfave/cli/v3"
)

// launchCmd is the re-exec entry point of spawned children. It hardens
// the process and execs the target in place; on success it never
// returns to Go code.
func launchCmd(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:   fuzzer.LaunchCommand,
		Hidden: true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// PTRACE_TRACEME marks the calling task and exec must
			// replace that same task; the thread stays locked until
			// the image is gone.
			runtime.LockOSThread()

			casePath := cmd.Args().First()
			if casePath == "" {
				return fmt.Errorf("launch needs a case path")
			}
			cfg, err := fuzzer.ChildSpec()
			if err != nil {
				return err
			}
			sup := arch.NewSupervisor(trace.New(logger), perf.New(logger), logger)
			return sup.LaunchChild(cfg, casePath)
		},
	}
}
