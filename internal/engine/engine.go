// Package engine talks to an external UCI analysis engine.
package engine

import (
	"context"
	"errors"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/notnil/chess"
)

var ErrEngineUnavailable = errors.New("engine unavailable")

// Analyzer runs a bounded-depth search on a position.
type Analyzer interface {
	Analyze(ctx context.Context, pos board.Position, depth int) (Result, error)
}

// Score is an engine evaluation attributed to one side. When Mate is set,
// Value is the signed distance to mate in moves (positive: Pov mates).
type Score struct {
	Value int
	Mate  bool
	Pov   chess.Color
}

// MatePlies converts a mate score to a signed ply count. A side that mates
// in N moves needs 2N-1 plies; a side mated in N moves lasts 2N plies.
func (s Score) MatePlies() (int, bool) {
	if !s.Mate {
		return 0, false
	}
	if s.Value > 0 {
		return 2*s.Value - 1, true
	}
	return 2 * s.Value, true
}

type Result struct {
	Depth int
	PV    []string
	Score Score
}

// BestMove is the first move of the principal variation, if any.
func (r Result) BestMove() string {
	if len(r.PV) == 0 {
		return ""
	}
	return r.PV[0]
}
