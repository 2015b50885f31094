package analysis

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// QueueAPI is the subset of *sqs.Client the review queue calls.
type QueueAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type Client struct {
	sqs QueueAPI
	cfg config
}

type config struct {
	ReviewQueueUrl *string
}

// NewClient falls back to REVIEW_QUEUE_URL when queueUrl is empty.
func NewClient(sqsClient QueueAPI, queueUrl string) *Client {
	cfg := loadConfig()
	if queueUrl != "" {
		cfg.ReviewQueueUrl = aws.String(queueUrl)
	}
	return &Client{
		sqs: sqsClient,
		cfg: cfg,
	}
}

func loadConfig() config {
	var cfg config
	if v, ok := os.LookupEnv("REVIEW_QUEUE_URL"); ok {
		cfg.ReviewQueueUrl = aws.String(v)
	}
	return cfg
}
