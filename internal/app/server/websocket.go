package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type payload struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

type reply struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func (s *server) handleWebSocket(c *gin.Context) {
	authorization := c.GetHeader("Authorization")
	if token := c.Query("token"); authorization == "" && token != "" {
		authorization = "Bearer " + token
	}
	if _, err := s.auth(authorization); err != nil {
		s.respondError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(
			"failed to upgrade connection",
			zap.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logging.Info(
				"connection closed",
				zap.String("remote_address", conn.RemoteAddr().String()),
				zap.Error(err),
			)
			break
		}

		var p payload
		if err := json.Unmarshal(message, &p); err != nil {
			if err := conn.WriteJSON(reply{Type: "error", Error: "invalid payload"}); err != nil {
				break
			}
			continue
		}
		if err := conn.WriteJSON(s.handleWebSocketMessage(c.Request.Context(), p)); err != nil {
			logging.Info("failed to write reply", zap.Error(err))
			break
		}
	}
}

// handleWebSocketMessage answers one payload. Messages on a connection are
// handled in arrival order.
func (s *server) handleWebSocketMessage(ctx context.Context, p payload) reply {
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	depth := 0
	if raw := p.Data["depth"]; raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return reply{Type: p.Type, Error: "depth must be an integer"}
		}
		depth = d
	}

	switch p.Type {
	case "eval":
		rec, err := s.coach.EvaluateMove(ctx, p.Data["fen"], p.Data["uci"], depth)
		if err != nil {
			return errorReply(p.Type, err)
		}
		return reply{Type: p.Type, Data: dtos.EvalMoveResponseFromEntity(rec)}
	case "best":
		best, err := s.coach.SuggestBestMove(ctx, p.Data["fen"], depth)
		if err != nil {
			return errorReply(p.Type, err)
		}
		return reply{Type: p.Type, Data: dtos.BestMoveResponseFromEntity(best)}
	case "move":
		out, err := s.coach.ApplyMove(p.Data["fen"], p.Data["uci"])
		if err != nil {
			return errorReply(p.Type, err)
		}
		return reply{Type: p.Type, Data: dtos.MakeMoveResponseFromEntity(out)}
	default:
		logging.Info("invalid payload type", zap.String("type", p.Type))
		return reply{Type: p.Type, Error: "unknown message type"}
	}
}

func errorReply(msgType string, err error) reply {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error("websocket request failed", zap.String("type", msgType), zap.Error(err))
	}
	return reply{Type: msgType, Error: message}
}
