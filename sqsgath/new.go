package sqsgath

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// New creates a gatherer that streams campaign reports to the given
// SQS response queue.
func New(campaignUuid string, responseSqsUrl string, region string) *sqsResQueueGatherer {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	return &sqsResQueueGatherer{
		sqsClient:    sqs.NewFromConfig(cfg),
		queueUrl:     responseSqsUrl,
		campaignUuid: campaignUuid,
	}
}
