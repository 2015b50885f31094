package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chess-vn/movecoach/internal/aws/auth"
	"github.com/chess-vn/movecoach/internal/aws/storage"
	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/google/uuid"
)

var storageClient *storage.Client

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient = storage.NewClient(dynamodb.NewFromConfig(cfg), "")
}

func handler(
	ctx context.Context,
	event events.APIGatewayProxyRequest,
) (
	events.APIGatewayProxyResponse,
	error,
) {
	var req dtos.GameLogRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
		}, nil
	}
	entry := dtos.GameLogRequestToEntity(req)
	if clientId, err := auth.ClientId(event.RequestContext.Authorizer); err == nil {
		entry.ClientId = clientId
	} else if entry.ClientId == "" {
		entry.ClientId = "UNKNOWN"
	}
	if entry.GameId == "" {
		entry.GameId = uuid.NewString()
	}

	if err := storageClient.Append(ctx, entry); err != nil {
		if errors.Is(err, gamelog.ErrDuplicateGame) {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusConflict,
			}, nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
		}, fmt.Errorf("failed to put game log: %w", err)
	}

	respJson, err := json.Marshal(dtos.GameLogResponse{GameId: entry.GameId})
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
		}, fmt.Errorf("failed to marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusCreated,
		Body:       string(respJson),
	}, nil
}

func main() {
	lambda.Start(handler)
}
