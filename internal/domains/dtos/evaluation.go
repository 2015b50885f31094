package dtos

import (
	"github.com/chess-vn/movecoach/internal/domains/entities"
)

type EvalMoveRequest struct {
	Fen   string `json:"fen"`
	Uci   string `json:"uci"`
	Depth int    `json:"depth,omitempty"`
}

type EvalMoveResponse struct {
	Bucket      string `json:"bucket"`
	DeltaCp     int    `json:"deltaCp"`
	RawDeltaCp  int    `json:"rawDeltaCp"`
	Message     string `json:"message"`
	Explanation string `json:"explanation"`
	BestCp      int    `json:"bestCp"`
	UserCp      int    `json:"userCp"`
	BestMove    string `json:"bestMove,omitempty"`
}

type BestMoveResponse struct {
	BestSan *string `json:"bestSan"`
	BestUci *string `json:"bestUci"`
	MateIn  *int    `json:"mateIn"`
}

type MakeMoveRequest struct {
	Fen string `json:"fen"`
	Uci string `json:"uci"`
}

type MakeMoveResponse struct {
	Fen        string  `json:"fen"`
	Turn       string  `json:"turn"`
	IsGameOver bool    `json:"isGameOver"`
	Result     *string `json:"result"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func EvalMoveResponseFromEntity(rec entities.EvaluationRecord) EvalMoveResponse {
	return EvalMoveResponse{
		Bucket:      rec.Bucket,
		DeltaCp:     rec.DeltaCp,
		RawDeltaCp:  rec.RawDeltaCp,
		Message:     rec.Label,
		Explanation: rec.Explanation,
		BestCp:      rec.BestCp,
		UserCp:      rec.UserCp,
		BestMove:    rec.BestMoveSan,
	}
}

func BestMoveResponseFromEntity(best entities.BestMove) BestMoveResponse {
	var resp BestMoveResponse
	if best.Found {
		san, uci := best.San, best.Uci
		resp.BestSan = &san
		resp.BestUci = &uci
	}
	if best.MatePlies != nil {
		n := *best.MatePlies
		resp.MateIn = &n
	}
	return resp
}

func MakeMoveResponseFromEntity(out entities.MoveOutcome) MakeMoveResponse {
	resp := MakeMoveResponse{
		Fen:        out.Fen,
		Turn:       out.Turn,
		IsGameOver: out.IsGameOver,
	}
	if out.IsGameOver {
		result := out.Result
		resp.Result = &result
	}
	return resp
}
