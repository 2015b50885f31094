package dtos

import "github.com/chess-vn/movecoach/internal/domains/entities"

type ReviewRequest struct {
	Id         string `json:"id"`
	ClientId   string `json:"clientId"`
	Side       string `json:"side,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Pgn        string `json:"pgn"`
	Depth      int    `json:"depth,omitempty"`
}

type ReviewSubmitResponse struct {
	Id string `json:"id"`
}

func ReviewRequestToEntity(req ReviewRequest) entities.ReviewWork {
	return entities.ReviewWork{
		Id:         req.Id,
		ClientId:   req.ClientId,
		Side:       req.Side,
		Difficulty: req.Difficulty,
		Pgn:        req.Pgn,
		Depth:      req.Depth,
	}
}
