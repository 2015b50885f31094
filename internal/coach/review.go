package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/chess-vn/movecoach/pkg/pgn"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ReviewMode = "review"

// ReviewGame grades every ply of the PGN played by work.Side (both sides
// when empty) and returns the game as a log entry.
func (s *Service) ReviewGame(ctx context.Context, work entities.ReviewWork) (entities.GameLogEntry, error) {
	if strings.TrimSpace(work.Pgn) == "" {
		return entities.GameLogEntry{}, missing("pgn")
	}
	side := strings.ToLower(work.Side)
	if side != "" && side != "white" && side != "black" {
		return entities.GameLogEntry{}, fmt.Errorf("%w: side must be white or black, got %q", ErrInvalidParameter, work.Side)
	}
	game, err := pgn.ParseOne(work.Pgn)
	if err != nil {
		return entities.GameLogEntry{}, fmt.Errorf("%w: unreadable pgn: %s", board.ErrInvalidPosition, err.Error())
	}
	depth := work.Depth
	if depth <= 0 {
		depth = s.cfg.EvalDepth
	}

	entry := entities.GameLogEntry{
		GameId:     work.Id,
		ClientId:   work.ClientId,
		Mode:       ReviewMode,
		Difficulty: work.Difficulty,
		StartedAt:  startedAt(game.Tags),
		Result:     game.Result(),
		Moves:      []entities.MoveLog{},
	}
	if entry.GameId == "" {
		entry.GameId = uuid.NewString()
	}

	plies := game.Plies()
	if plies > s.cfg.MaxReviewPlies {
		plies = s.cfg.MaxReviewPlies
	}
	for i := 0; i < plies; i++ {
		pos, err := board.ParsePosition(game.Fens[i])
		if err != nil {
			return entities.GameLogEntry{}, err
		}
		if side != "" && board.ColorName(pos.Turn()) != side {
			continue
		}
		move, err := moveBetween(pos, game.Fens[i+1])
		if err != nil {
			return entities.GameLogEntry{}, fmt.Errorf("ply %d: %w", i+1, err)
		}
		rec, err := s.evaluate(ctx, pos, move, depth)
		if err != nil {
			return entities.GameLogEntry{}, fmt.Errorf("ply %d: %w", i+1, err)
		}
		delta := rec.DeltaCp
		entry.Moves = append(entry.Moves, entities.MoveLog{
			Bucket:  rec.Bucket,
			Uci:     rec.Uci,
			DeltaCp: &delta,
		})
	}

	logging.Info("game reviewed",
		zap.String("game_id", entry.GameId),
		zap.String("client_id", entry.ClientId),
		zap.Int("moves", len(entry.Moves)),
	)
	return entry, nil
}

// moveBetween finds the legal move of pos that reaches next.
func moveBetween(pos board.Position, next string) (board.Move, error) {
	for _, m := range pos.LegalMoves() {
		if pos.Apply(m).SamePlacement(next) {
			return m, nil
		}
	}
	return board.Move{}, fmt.Errorf("%w: no move from %q reaches %q", board.ErrIllegalMove, pos.FEN(), next)
}

func startedAt(tags map[string]string) string {
	date := tags["UTCDate"]
	if date == "" {
		date = tags["Date"]
	}
	if t, err := time.Parse("2006.01.02", date); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}
