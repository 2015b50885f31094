package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chess-vn/movecoach/internal/app/reviewer"
	"github.com/chess-vn/movecoach/internal/app/server"
	"github.com/chess-vn/movecoach/internal/aws/analysis"
	"github.com/chess-vn/movecoach/internal/aws/storage"
	"github.com/chess-vn/movecoach/internal/coach"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/chess-vn/movecoach/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	cfg := server.NewConfig()
	logging.Init(cfg.LogLevel, cfg.LogDevelopment)
	defer logging.Sync()

	if cfg.ReviewQueueUrl == "" {
		logging.Fatal("Review.QueueUrl is not set")
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Fatal("unable to load aws config", zap.Error(err))
	}

	eng := engine.NewUCIEngine(cfg.Engine)
	if err := eng.Start(); err != nil {
		logging.Fatal("couldn't initialize engine", zap.Error(err))
	}
	defer eng.Close()

	var store gamelog.Store = gamelog.NewFileStore(cfg.GameLogPath)
	if cfg.GameLogTable != "" {
		store = storage.NewClient(dynamodb.NewFromConfig(awsCfg), cfg.GameLogTable)
	}
	worker := reviewer.NewWorker(
		analysis.NewClient(sqs.NewFromConfig(awsCfg), cfg.ReviewQueueUrl),
		coach.NewService(eng, cfg.Classifier, nil, cfg.Coach),
		store,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logging.Info("reviewer started", zap.String("queue", cfg.ReviewQueueUrl))
	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		eng.Close()
		logging.Fatal("Reviewer exited: ", zap.Error(err))
	}
}
