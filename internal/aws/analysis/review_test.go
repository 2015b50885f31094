package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	sent     []string
	inbox    []types.Message
	received []*sqs.ReceiveMessageInput
	deleted  []string
}

func (q *fakeQueue) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	q.sent = append(q.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{}, nil
}

func (q *fakeQueue) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.received = append(q.received, in)
	out := &sqs.ReceiveMessageOutput{Messages: q.inbox}
	q.inbox = nil
	return out, nil
}

func (q *fakeQueue) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.deleted = append(q.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSubmitAndAcquire(t *testing.T) {
	q := &fakeQueue{}
	client := NewClient(q, "https://queue.local/reviews")
	req := dtos.ReviewRequest{Id: "r1", ClientId: "c1", Side: "white", Pgn: "1. e4 e5 *", Depth: 10}

	require.NoError(t, client.SubmitReviewRequest(context.Background(), req))
	require.Len(t, q.sent, 1)

	var sent dtos.ReviewRequest
	require.NoError(t, json.Unmarshal([]byte(q.sent[0]), &sent))
	assert.Equal(t, req, sent)

	q.inbox = []types.Message{{Body: aws.String(q.sent[0]), ReceiptHandle: aws.String("rh-1")}}
	work, err := client.AcquireReviewWork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r1", work.Id)
	assert.Equal(t, "white", work.Side)
	assert.Equal(t, 10, work.Depth)
	assert.Equal(t, "rh-1", work.ReceiptHandle)
	assert.Equal(t, "https://queue.local/reviews", aws.ToString(q.received[0].QueueUrl))

	require.NoError(t, client.CompleteReviewWork(context.Background(), work.ReceiptHandle))
	assert.Equal(t, []string{"rh-1"}, q.deleted)
}

func TestAcquireEmptyQueue(t *testing.T) {
	client := NewClient(&fakeQueue{}, "https://queue.local/reviews")
	_, err := client.AcquireReviewWork(context.Background())
	assert.ErrorIs(t, err, ErrReviewWorkNotFound)
}

func TestAcquireMalformedBodyKeepsHandle(t *testing.T) {
	q := &fakeQueue{inbox: []types.Message{{Body: aws.String("{"), ReceiptHandle: aws.String("rh-2")}}}
	work, err := NewClient(q, "https://queue.local/reviews").AcquireReviewWork(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "rh-2", work.ReceiptHandle)
}

func TestUnconfiguredQueue(t *testing.T) {
	client := &Client{sqs: &fakeQueue{}}
	assert.ErrorIs(t, client.SubmitReviewRequest(context.Background(), dtos.ReviewRequest{}), ErrQueueNotConfigured)
}
