package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "fuzzkit",
		Usage: "supervise and instrument native targets under fuzzing",
		Commands: []*cli.Command{
			runCmd(logger),
			replayCmd(logger),
			serveCmd(logger),
			doctorCmd(),
			launchCmd(logger),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Error("fuzzkit exited with error", "err", err)
		os.Exit(1)
	}
}
