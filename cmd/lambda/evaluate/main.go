package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chess-vn/movecoach/internal/app/server"
	"github.com/chess-vn/movecoach/internal/coach"
	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/pkg/logging"
	"go.uber.org/zap"
)

var coachService *coach.Service

func init() {
	cfg := server.NewConfig()
	logging.Init(cfg.LogLevel, cfg.LogDevelopment)
	eng := engine.NewUCIEngine(cfg.Engine)
	if err := eng.Start(); err != nil {
		logging.Error("engine not started", zap.Error(err))
	}
	coachService = coach.NewService(eng, cfg.Classifier, nil, cfg.Coach)
}

func respond(status int, v interface{}) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func handler(
	ctx context.Context,
	event events.APIGatewayProxyRequest,
) (
	events.APIGatewayProxyResponse,
	error,
) {
	var req dtos.EvalMoveRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respond(http.StatusBadRequest, dtos.ErrorResponse{
			Error: "invalid request body",
		}), nil
	}

	rec, err := coachService.EvaluateMove(ctx, req.Fen, req.Uci, req.Depth)
	if err != nil {
		status, message := server.StatusFor(err)
		resp := respond(status, dtos.ErrorResponse{Error: message})
		if status >= http.StatusInternalServerError {
			return resp, fmt.Errorf("failed to evaluate move: %w", err)
		}
		return resp, nil
	}
	return respond(http.StatusOK, dtos.EvalMoveResponseFromEntity(rec)), nil
}

func main() {
	lambda.Start(handler)
}
