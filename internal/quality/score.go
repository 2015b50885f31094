// Package quality turns engine scores into move-quality buckets and short
// explanations.
package quality

import (
	"errors"
	"fmt"

	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/notnil/chess"
)

// MateScore stands in for any forced mate so all arithmetic stays on one
// integer scale.
const MateScore = 100000

var ErrInvalidScore = errors.New("invalid score")

// Normalize returns the score in centipawns from pov's point of view.
// Forced mates become ±MateScore; a mate distance of zero means the side the
// score is attributed to is already mated.
func Normalize(s engine.Score, pov chess.Color) (int, error) {
	if s.Pov != chess.White && s.Pov != chess.Black {
		return 0, fmt.Errorf("%w: score has no side", ErrInvalidScore)
	}
	if pov != chess.White && pov != chess.Black {
		return 0, fmt.Errorf("%w: no point of view", ErrInvalidScore)
	}

	var v int
	switch {
	case s.Mate && s.Value > 0:
		v = MateScore
	case s.Mate:
		v = -MateScore
	case s.Value >= MateScore || s.Value <= -MateScore:
		return 0, fmt.Errorf("%w: centipawn value %d out of range", ErrInvalidScore, s.Value)
	default:
		v = s.Value
	}
	if pov != s.Pov {
		v = -v
	}
	return v, nil
}
