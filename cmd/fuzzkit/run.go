package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/arch"
	"github.com/fuzzkit/fuzzkit/internal/campaign"
	"github.com/fuzzkit/fuzzkit/internal/corpus"
	"github.com/fuzzkit/fuzzkit/internal/environment"
	"github.com/fuzzkit/fuzzkit/internal/fuzzer"
	"github.com/fuzzkit/fuzzkit/internal/gatherer/natsgath"
	"github.com/fuzzkit/fuzzkit/internal/gatherer/termgath"
	"github.com/fuzzkit/fuzzkit/internal/perf"
	"github.com/fuzzkit/fuzzkit/internal/s3downl"
	"github.com/fuzzkit/fuzzkit/internal/seedstore"
	"github.com/fuzzkit/fuzzkit/internal/trace"
	"github.com/fuzzkit/fuzzkit/internal/xdg"
	"github.com/fuzzkit/fuzzkit/sqsgath"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

func runCmd(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a fuzzing campaign",
		ArgsUsage: "[-- target command with " + internal.FilePlaceholder + "]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "campaign", Aliases: []string{"c"}, Usage: "campaign TOML file; overrides the other flags"},
			&cli.StringFlag{Name: "corpus", Usage: "directory with seed inputs"},
			&cli.Int64Flag{Name: "timeout", Usage: "per-run CPU budget in seconds, 0 disables the watchdogs"},
			&cli.Int64Flag{Name: "as-limit-mib", Usage: "target address space limit in MiB, 0 disables"},
			&cli.BoolFlag{Name: "fuzz-stdin", Usage: "feed the case over stdin instead of " + internal.FilePlaceholder},
			&cli.BoolFlag{Name: "quiet-stdio", Usage: "point the target's stdio at /dev/null"},
			&cli.IntFlag{Name: "workers", Value: 1, Usage: "concurrent target instances"},
			&cli.Int64Flag{Name: "max-iters", Usage: "stop after this many runs, 0 means unbounded"},
			&cli.StringFlag{Name: "sink", Value: "term", Usage: "report sink: term, nats or sqs"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "report every case to the terminal sink"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			camp, err := campaignFromCli(cmd)
			if err != nil {
				return err
			}
			env := environment.ReadEnvConfig()
			gath, cleanup, err := buildGatherer(camp.Sink, uuid.NewString(), env, cmd.Bool("verbose"))
			if err != nil {
				return err
			}
			defer cleanup()
			return runCampaign(ctx, logger, camp, gath, env)
		},
	}
}

func campaignFromCli(cmd *cli.Command) (*campaign.Campaign, error) {
	if path := cmd.String("campaign"); path != "" {
		return campaign.Parse(path)
	}
	camp := &campaign.Campaign{
		Config: internal.Config{
			Cmdline:      cmd.Args().Slice(),
			FuzzStdin:    cmd.Bool("fuzz-stdin"),
			NullifyStdio: cmd.Bool("quiet-stdio"),
			TimeoutSec:   cmd.Int64("timeout"),
			AsLimitMiB:   cmd.Int64("as-limit-mib"),
		},
		CorpusDir: cmd.String("corpus"),
		Sink:      cmd.String("sink"),
		Workers:   int(cmd.Int("workers")),
		MaxIters:  cmd.Int64("max-iters"),
	}
	if err := camp.Validate(); err != nil {
		return nil, err
	}
	return camp, nil
}

func buildGatherer(sink string, campaignUuid string, env *environment.EnvConfig, verbose bool) (internal.ReportGatherer, func(), error) {
	switch sink {
	case "term":
		return termgath.New(verbose), func() {}, nil
	case "nats":
		nc, err := nats.Connect(env.NatsURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", env.NatsURL, err)
		}
		return natsgath.New(nc, campaignUuid, env.NatsSubject), func() { _ = nc.Drain() }, nil
	case "sqs":
		if env.SqsQueueURL == "" {
			return nil, nil, fmt.Errorf("sink sqs requires SQS_QUEUE_URL to be set")
		}
		return sqsgath.New(campaignUuid, env.SqsQueueURL, env.AwsRegion), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown report sink %q", sink)
	}
}

func runCampaign(ctx context.Context, logger *slog.Logger, camp *campaign.Campaign,
	gath internal.ReportGatherer, env *environment.EnvConfig) error {

	dirs := xdg.New()

	if len(camp.RemoteSeeds) > 0 {
		if err := fetchRemoteSeeds(camp, env, dirs); err != nil {
			return err
		}
	}

	corp, err := corpus.Load(camp.CorpusDir, dirs.SeedCacheDir())
	if err != nil {
		return err
	}
	logger.Info("corpus loaded", "cases", corp.Len(), "dir", camp.CorpusDir)

	sup := arch.NewSupervisor(trace.New(logger), perf.New(logger), logger)
	if err := sup.Init(); err != nil {
		return fmt.Errorf("failed to initialize supervision: %w", err)
	}

	fz := fuzzer.New(&camp.Config, sup, corp, gath, logger,
		dirs.WorkDir(), dirs.CrashDir(), camp.MaxIters)
	return fz.Run(ctx, camp.Workers)
}

// fetchRemoteSeeds downloads referenced seeds into the corpus
// directory before the corpus is scanned.
func fetchRemoteSeeds(camp *campaign.Campaign, env *environment.EnvConfig, dirs *xdg.Dirs) error {
	store := seedstore.New(camp.CorpusDir, dirs.SeedCacheDir(),
		s3downl.NewDownloadFunc(env.AwsRegion))
	go store.Start()

	for _, seed := range camp.RemoteSeeds {
		if err := store.Schedule(seed.Sha256, seed.Url); err != nil {
			return err
		}
	}
	for _, seed := range camp.RemoteSeeds {
		if _, err := store.Await(seed.Sha256); err != nil {
			return fmt.Errorf("failed to fetch seed %s: %w", seed.Sha256, err)
		}
	}
	return nil
}
