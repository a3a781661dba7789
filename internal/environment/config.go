package environment

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

type EnvConfig struct {
	NatsURL     string
	NatsSubject string
	SqsQueueURL string
	AwsRegion   string
}

// ReadEnvConfig loads .env (if present) and collects the transport
// settings for the report sinks and the request queue.
func ReadEnvConfig() *EnvConfig {
	_ = godotenv.Load()

	result := &EnvConfig{
		NatsURL:     os.Getenv("NATS_URL"),
		NatsSubject: os.Getenv("NATS_SUBJECT"),
		SqsQueueURL: os.Getenv("SQS_QUEUE_URL"),
		AwsRegion:   os.Getenv("AWS_REGION"),
	}

	if result.NatsURL == "" {
		result.NatsURL = nats.DefaultURL
	}
	if result.NatsSubject == "" {
		result.NatsSubject = "fuzzkit.reports"
	}
	if result.AwsRegion == "" {
		result.AwsRegion = "eu-central-1"
	}

	return result
}
