package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chess-vn/movecoach/internal/app/server"
	"github.com/chess-vn/movecoach/internal/aws/analysis"
	"github.com/chess-vn/movecoach/internal/aws/storage"
	"github.com/chess-vn/movecoach/internal/coach"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/chess-vn/movecoach/internal/quality"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := server.NewConfig()
	logging.Init(cfg.LogLevel, cfg.LogDevelopment)
	defer logging.Sync()
	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	eng := engine.NewUCIEngine(cfg.Engine)
	if err := eng.Start(); err != nil {
		logging.Error("engine not started", zap.Error(err))
	}
	defer eng.Close()

	deps := server.Deps{
		Coach:  coach.NewService(eng, cfg.Classifier, quality.NewExplainer(), cfg.Coach),
		Engine: eng,
		Games:  gamelog.NewFileStore(cfg.GameLogPath),
	}
	if cfg.GameLogTable != "" || cfg.ReviewQueueUrl != "" {
		awsCfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			logging.Fatal("unable to load aws config", zap.Error(err))
		}
		if cfg.GameLogTable != "" {
			deps.Games = storage.NewClient(dynamodb.NewFromConfig(awsCfg), cfg.GameLogTable)
		}
		if cfg.ReviewQueueUrl != "" {
			deps.Reviews = analysis.NewClient(sqs.NewFromConfig(awsCfg), cfg.ReviewQueueUrl)
		}
	}

	srv := server.NewServer(cfg, deps)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Start(); err != nil {
		logging.Fatal("Coach server exited: ", zap.Error(err))
	}
	logging.Info("coach server stopped")
}
