package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/internal/domains/entities"
)

var (
	ErrReviewWorkNotFound = errors.New("review work not found")
	ErrQueueNotConfigured = errors.New("review queue not configured")
)

func (client *Client) SubmitReviewRequest(
	ctx context.Context,
	request dtos.ReviewRequest,
) error {
	if client.cfg.ReviewQueueUrl == nil {
		return ErrQueueNotConfigured
	}
	reqJson, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	_, err = client.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    client.cfg.ReviewQueueUrl,
		MessageBody: aws.String(string(reqJson)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// AcquireReviewWork long-polls for one request. An empty poll returns
// ErrReviewWorkNotFound.
func (client *Client) AcquireReviewWork(ctx context.Context) (entities.ReviewWork, error) {
	if client.cfg.ReviewQueueUrl == nil {
		return entities.ReviewWork{}, ErrQueueNotConfigured
	}
	output, err := client.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            client.cfg.ReviewQueueUrl,
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   300,
	})
	if err != nil {
		return entities.ReviewWork{},
			fmt.Errorf("failed to receive message: %w", err)
	}
	if len(output.Messages) < 1 {
		return entities.ReviewWork{}, ErrReviewWorkNotFound
	}

	msg := output.Messages[0]
	var req dtos.ReviewRequest
	err = json.Unmarshal([]byte(aws.ToString(msg.Body)), &req)
	if err != nil {
		work := entities.ReviewWork{ReceiptHandle: aws.ToString(msg.ReceiptHandle)}
		return work, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	work := dtos.ReviewRequestToEntity(req)
	work.ReceiptHandle = aws.ToString(msg.ReceiptHandle)
	return work, nil
}

func (client *Client) CompleteReviewWork(ctx context.Context, receiptHandle string) error {
	_, err := client.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      client.cfg.ReviewQueueUrl,
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
