package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/chess-vn/movecoach/internal/aws/analysis"
	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/internal/coach"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/gamelog"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidBody   = errors.New("invalid request body")
	ErrNotConfigured = errors.New("not configured")
)

// StatusFor maps a service error to an HTTP status and a client-facing
// message. Engine and storage failures are reported without detail.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, board.ErrIllegalMove):
		return http.StatusBadRequest, "Illegal move"
	case errors.Is(err, board.ErrInvalidPosition),
		errors.Is(err, coach.ErrMissingParameter),
		errors.Is(err, coach.ErrInvalidParameter),
		errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, gamelog.ErrDuplicateGame):
		return http.StatusConflict, "game already logged"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, engine.ErrEngineUnavailable):
		return http.StatusServiceUnavailable, "engine unavailable"
	case errors.Is(err, analysis.ErrQueueNotConfigured),
		errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable, "service not configured"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
