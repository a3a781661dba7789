package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/arch"
	"github.com/fuzzkit/fuzzkit/internal/fuzzer"
	"github.com/fuzzkit/fuzzkit/internal/gatherer/termgath"
	"github.com/fuzzkit/fuzzkit/internal/perf"
	"github.com/fuzzkit/fuzzkit/internal/trace"
	"github.com/fuzzkit/fuzzkit/internal/xdg"
	"github.com/urfave/cli/v3"
)

func replayCmd(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "run the target once on a saved case",
		ArgsUsage: "case-file target command with " + internal.FilePlaceholder,
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "timeout", Usage: "per-run CPU budget in seconds, 0 disables the watchdogs"},
			&cli.Int64Flag{Name: "as-limit-mib", Usage: "target address space limit in MiB, 0 disables"},
			&cli.BoolFlag{Name: "fuzz-stdin", Usage: "feed the case over stdin instead of " + internal.FilePlaceholder},
			&cli.BoolFlag{Name: "quiet-stdio", Usage: "point the target's stdio at /dev/null"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return fmt.Errorf("replay needs a case file and a target command")
			}
			cfg := &internal.Config{
				Cmdline:      args[1:],
				FuzzStdin:    cmd.Bool("fuzz-stdin"),
				NullifyStdio: cmd.Bool("quiet-stdio"),
				TimeoutSec:   cmd.Int64("timeout"),
				AsLimitMiB:   cmd.Int64("as-limit-mib"),
			}

			sup := arch.NewSupervisor(trace.New(logger), perf.New(logger), logger)
			if err := sup.Init(); err != nil {
				return fmt.Errorf("failed to initialize supervision: %w", err)
			}

			dirs := xdg.New()
			fz := fuzzer.New(cfg, sup, nil, termgath.New(true), logger,
				dirs.WorkDir(), dirs.CrashDir(), 1)
			return fz.Replay(args[0])
		},
	}
}
