// Package reviewer drains the review queue: each request is graded by the
// coach and the resulting game is appended to the game log.
package reviewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chess-vn/movecoach/internal/aws/analysis"
	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/internal/coach"
	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/chess-vn/movecoach/pkg/logging"
	"go.uber.org/zap"
)

type WorkQueue interface {
	AcquireReviewWork(ctx context.Context) (entities.ReviewWork, error)
	CompleteReviewWork(ctx context.Context, receiptHandle string) error
}

type Reviewer interface {
	ReviewGame(ctx context.Context, work entities.ReviewWork) (entities.GameLogEntry, error)
}

type Worker struct {
	queue    WorkQueue
	reviewer Reviewer
	store    gamelog.Store
	idle     time.Duration
}

func NewWorker(queue WorkQueue, reviewer Reviewer, store gamelog.Store) *Worker {
	return &Worker{
		queue:    queue,
		reviewer: reviewer,
		store:    store,
		idle:     time.Second,
	}
}

// Start processes work until ctx ends or the engine dies.
func (w *Worker) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		err := w.processOne(ctx)
		switch {
		case err == nil:
		case errors.Is(err, analysis.ErrReviewWorkNotFound):
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.idle):
			}
		case errors.Is(err, engine.ErrEngineUnavailable):
			return fmt.Errorf("failed to review game: %w", err)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			logging.Error("review failed", zap.Error(err))
		}
	}
}

func (w *Worker) processOne(ctx context.Context) error {
	work, err := w.queue.AcquireReviewWork(ctx)
	if err != nil {
		if work.ReceiptHandle != "" {
			// Undecodable message; it would fail on every redelivery.
			w.discard(ctx, work.ReceiptHandle, err)
			return nil
		}
		return err
	}

	entry, err := w.reviewer.ReviewGame(ctx, work)
	if err != nil {
		if rejected(err) {
			w.discard(ctx, work.ReceiptHandle, err)
			return nil
		}
		return err
	}
	if err := w.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append reviewed game: %w", err)
	}
	if err := w.queue.CompleteReviewWork(ctx, work.ReceiptHandle); err != nil {
		return err
	}
	logging.Info("review stored",
		zap.String("review_id", work.Id),
		zap.String("game_id", entry.GameId),
	)
	return nil
}

func (w *Worker) discard(ctx context.Context, receiptHandle string, cause error) {
	logging.Warn("discarding review request", zap.Error(cause))
	if err := w.queue.CompleteReviewWork(ctx, receiptHandle); err != nil {
		logging.Error("failed to discard review request", zap.Error(err))
	}
}

func rejected(err error) bool {
	return errors.Is(err, board.ErrInvalidPosition) ||
		errors.Is(err, board.ErrIllegalMove) ||
		errors.Is(err, coach.ErrMissingParameter) ||
		errors.Is(err, coach.ErrInvalidParameter)
}
