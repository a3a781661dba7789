package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fuzzkit/fuzzkit"
	"github.com/fuzzkit/fuzzkit/internal"
	"github.com/fuzzkit/fuzzkit/internal/campaign"
	"github.com/fuzzkit/fuzzkit/internal/environment"
	"github.com/fuzzkit/fuzzkit/sqsgath"
	"github.com/urfave/cli/v3"
)

func serveCmd(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "consume campaign requests from the SQS request queue",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env := environment.ReadEnvConfig()
			if env.SqsQueueURL == "" {
				return fmt.Errorf("serve requires SQS_QUEUE_URL to be set")
			}

			awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(env.AwsRegion))
			if err != nil {
				return fmt.Errorf("failed to load AWS config: %w", err)
			}
			client := sqs.NewFromConfig(awsCfg)

			logger.Info("listening for campaign requests", "queue", env.SqsQueueURL)
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}

				output, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
					QueueUrl:            aws.String(env.SqsQueueURL),
					MaxNumberOfMessages: 1,
					WaitTimeSeconds:     20,
				})
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					logger.Error("failed to receive campaign request", "err", err)
					time.Sleep(1 * time.Second)
					continue
				}

				for _, message := range output.Messages {
					var req fuzzkit.CampaignReq
					if err := json.Unmarshal([]byte(*message.Body), &req); err != nil {
						logger.Error("failed to decode campaign request", "err", err)
						continue
					}

					if err := handleRequest(ctx, logger, env, &req); err != nil {
						logger.Error("campaign failed", "campaign", req.CampaignUuid, "err", err)
					}

					_, err = client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
						QueueUrl:      aws.String(env.SqsQueueURL),
						ReceiptHandle: message.ReceiptHandle,
					})
					if err != nil {
						logger.Error("failed to delete request message", "err", err)
					}
				}
			}
		},
	}
}

func handleRequest(ctx context.Context, logger *slog.Logger, env *environment.EnvConfig, req *fuzzkit.CampaignReq) error {
	corpusDir, err := os.MkdirTemp("", "fuzzkit-corpus-*")
	if err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}
	defer os.RemoveAll(corpusDir)

	camp := &campaign.Campaign{
		Config: internal.Config{
			Cmdline:      req.Target.Cmd,
			FuzzStdin:    req.Target.FuzzStdin,
			NullifyStdio: req.Target.NullifyStdio,
			TimeoutSec:   req.Target.TimeoutSec,
			AsLimitMiB:   req.Target.AsLimitMiB,
		},
		CorpusDir: corpusDir,
		Sink:      "sqs",
		Workers:   req.Workers,
		MaxIters:  req.MaxIters,
	}

	for _, seed := range req.Seeds {
		switch {
		case seed.Content != nil:
			data, err := base64.StdEncoding.DecodeString(*seed.Content)
			if err != nil {
				return fmt.Errorf("failed to decode inline seed %s: %w", seed.Sha256, err)
			}
			path := filepath.Join(corpusDir, seed.Sha256)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write inline seed %s: %w", seed.Sha256, err)
			}
		case seed.Url != nil:
			camp.RemoteSeeds = append(camp.RemoteSeeds, campaign.RemoteSeed{
				Sha256: seed.Sha256,
				Url:    *seed.Url,
			})
		default:
			return fmt.Errorf("seed %s has neither url nor content", seed.Sha256)
		}
	}

	if err := camp.Validate(); err != nil {
		return err
	}

	gath := sqsgath.New(req.CampaignUuid, req.ResSqsUrl, env.AwsRegion)
	return runCampaign(ctx, logger, camp, gath, env)
}
