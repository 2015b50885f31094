package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/chess-vn/movecoach/pkg/logging"
	"go.uber.org/zap"
)

// Append writes entry only if its game id is not stored yet.
func (client *Client) Append(ctx context.Context, entry entities.GameLogEntry) error {
	if entry.GameId == "" {
		return fmt.Errorf("game log entry has no id")
	}
	av, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal game log map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.GameLogsTableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(gameId)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s", gamelog.ErrDuplicateGame, entry.GameId)
		}
		return fmt.Errorf("failed to put game log: %w", err)
	}
	return nil
}

// Load scans the whole table. Items that do not unmarshal are counted as
// skipped.
func (client *Client) Load(ctx context.Context) (gamelog.LoadResult, error) {
	var res gamelog.LoadResult
	paginator := dynamodb.NewScanPaginator(client.dynamodb, &dynamodb.ScanInput{
		TableName: client.cfg.GameLogsTableName,
	})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to scan game logs: %w", err)
		}
		for _, item := range output.Items {
			var entry entities.GameLogEntry
			if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
				res.Skipped++
				logging.Debug("skipping game log item", zap.Error(err))
				continue
			}
			res.Entries = append(res.Entries, entry)
		}
	}
	return res, nil
}

var (
	_ gamelog.Store  = (*Client)(nil)
	_ gamelog.Source = (*Client)(nil)
)
