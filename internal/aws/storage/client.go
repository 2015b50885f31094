package storage

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoAPI is the subset of *dynamodb.Client the store calls.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type Client struct {
	dynamodb DynamoAPI
	cfg      config
}

type config struct {
	GameLogsTableName *string
}

func NewClient(dynamoClient DynamoAPI, tableName string) *Client {
	cfg := loadConfig()
	if tableName != "" {
		cfg.GameLogsTableName = aws.String(tableName)
	}
	return &Client{
		dynamodb: dynamoClient,
		cfg:      cfg,
	}
}

func loadConfig() config {
	cfg := config{GameLogsTableName: aws.String("GameLogs")}
	if v, ok := os.LookupEnv("GAME_LOGS_TABLE_NAME"); ok {
		cfg.GameLogsTableName = aws.String(v)
	}
	return cfg
}
