package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *server) handleHealth(c *gin.Context) {
	engineStatus := "unavailable"
	if s.engine != nil && s.engine.Ready() {
		engineStatus = "ready"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"engine": engineStatus,
	})
}

func (s *server) handleEvalMove(c *gin.Context) {
	var req dtos.EvalMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, ErrInvalidBody)
		return
	}
	if req.Depth < 0 {
		s.respondError(c, errNegativeDepth)
		return
	}
	rec, err := s.coach.EvaluateMove(c.Request.Context(), req.Fen, req.Uci, req.Depth)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.EvalMoveResponseFromEntity(rec))
}

func (s *server) handleBestMove(c *gin.Context) {
	depth, err := parseDepth(c.Query("depth"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	best, err := s.coach.SuggestBestMove(c.Request.Context(), c.Query("fen"), depth)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.BestMoveResponseFromEntity(best))
}

func (s *server) handleMakeMove(c *gin.Context) {
	var req dtos.MakeMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, ErrInvalidBody)
		return
	}
	out, err := s.coach.ApplyMove(req.Fen, req.Uci)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.MakeMoveResponseFromEntity(out))
}

func (s *server) handleGameLog(c *gin.Context) {
	if s.games == nil {
		s.respondError(c, ErrNotConfigured)
		return
	}
	var req dtos.GameLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, ErrInvalidBody)
		return
	}
	entry := dtos.GameLogRequestToEntity(req)
	entry.ClientId = clientId(c, req.ClientId)
	if entry.GameId == "" {
		entry.GameId = uuid.NewString()
	}
	if err := s.games.Append(c.Request.Context(), entry); err != nil {
		s.respondError(c, fmt.Errorf("failed to append game log: %w", err))
		return
	}
	logging.Info("game logged",
		zap.String("game_id", entry.GameId),
		zap.String("client_id", entry.ClientId),
		zap.Int("moves", len(entry.Moves)),
	)
	c.JSON(http.StatusCreated, dtos.GameLogResponse{GameId: entry.GameId})
}

func (s *server) handleReviewSubmit(c *gin.Context) {
	if s.reviews == nil {
		s.respondError(c, ErrNotConfigured)
		return
	}
	var req dtos.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, ErrInvalidBody)
		return
	}
	if req.Pgn == "" {
		s.respondError(c, fmt.Errorf("%w: pgn is required", ErrInvalidBody))
		return
	}
	req.ClientId = clientId(c, req.ClientId)
	req.Id = uuid.NewString()
	if err := s.reviews.SubmitReviewRequest(c.Request.Context(), req); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dtos.ReviewSubmitResponse{Id: req.Id})
}

var errNegativeDepth = fmt.Errorf("%w: depth must be a non-negative integer", ErrInvalidBody)

// parseDepth accepts an empty value, which selects the service default.
func parseDepth(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil || depth < 0 {
		return 0, errNegativeDepth
	}
	return depth, nil
}
