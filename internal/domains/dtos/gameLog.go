package dtos

import "github.com/chess-vn/movecoach/internal/domains/entities"

type MoveLogRequest struct {
	Bucket  string `json:"bucket"`
	Uci     string `json:"uci,omitempty"`
	DeltaCp *int   `json:"deltaCp,omitempty"`
}

type GameLogRequest struct {
	GameId     string           `json:"gameId,omitempty"`
	ClientId   string           `json:"clientId,omitempty"`
	Mode       string           `json:"mode"`
	Difficulty string           `json:"difficulty"`
	StartedAt  string           `json:"startedAt"`
	Result     string           `json:"result"`
	Moves      []MoveLogRequest `json:"moves"`
}

type GameLogResponse struct {
	GameId string `json:"gameId"`
}

func GameLogRequestToEntity(req GameLogRequest) entities.GameLogEntry {
	entry := entities.GameLogEntry{
		GameId:     req.GameId,
		ClientId:   req.ClientId,
		Mode:       req.Mode,
		Difficulty: req.Difficulty,
		StartedAt:  req.StartedAt,
		Result:     req.Result,
		Moves:      make([]entities.MoveLog, 0, len(req.Moves)),
	}
	for _, m := range req.Moves {
		entry.Moves = append(entry.Moves, entities.MoveLog{
			Bucket:  m.Bucket,
			Uci:     m.Uci,
			DeltaCp: m.DeltaCp,
		})
	}
	return entry
}
