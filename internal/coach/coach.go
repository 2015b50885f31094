// Package coach answers the coaching queries: grade a played move, suggest
// the engine's move, apply a move, and review a whole game.
package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/quality"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/notnil/chess"
	"go.uber.org/zap"
)

var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
)

type Config struct {
	EvalDepth      int
	BestMoveDepth  int
	MaxReviewPlies int
}

func (c *Config) setDefaults() {
	if c.EvalDepth <= 0 {
		c.EvalDepth = 12
	}
	if c.BestMoveDepth <= 0 {
		c.BestMoveDepth = 18
	}
	if c.MaxReviewPlies <= 0 {
		c.MaxReviewPlies = 80
	}
}

type Service struct {
	engine     engine.Analyzer
	classifier *quality.Classifier
	explainer  *quality.Explainer
	cfg        Config
}

func NewService(
	eng engine.Analyzer,
	classifier *quality.Classifier,
	explainer *quality.Explainer,
	cfg Config,
) *Service {
	cfg.setDefaults()
	if classifier == nil {
		classifier = quality.DefaultClassifier()
	}
	if explainer == nil {
		explainer = quality.NewExplainer()
	}
	return &Service{
		engine:     eng,
		classifier: classifier,
		explainer:  explainer,
		cfg:        cfg,
	}
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, name)
}

// checkDepth rejects negative depths. Zero selects the configured default.
func checkDepth(depth int) error {
	if depth < 0 {
		return fmt.Errorf("%w: depth must be non-negative, got %d", ErrInvalidParameter, depth)
	}
	return nil
}

// EvaluateMove grades uci played from fen. The move is validated before any
// engine query; the two searches run one after the other and either both
// succeed or the call fails.
func (s *Service) EvaluateMove(ctx context.Context, fen, uci string, depth int) (entities.EvaluationRecord, error) {
	if fen == "" {
		return entities.EvaluationRecord{}, missing("fen")
	}
	if uci == "" {
		return entities.EvaluationRecord{}, missing("uci")
	}
	if err := checkDepth(depth); err != nil {
		return entities.EvaluationRecord{}, err
	}
	pos, err := board.ParsePosition(fen)
	if err != nil {
		return entities.EvaluationRecord{}, err
	}
	move, err := pos.ParseMove(uci)
	if err != nil {
		return entities.EvaluationRecord{}, err
	}
	if depth == 0 {
		depth = s.cfg.EvalDepth
	}
	return s.evaluate(ctx, pos, move, depth)
}

func (s *Service) evaluate(ctx context.Context, pos board.Position, move board.Move, depth int) (entities.EvaluationRecord, error) {
	mover := pos.Turn()

	bestRes, err := s.engine.Analyze(ctx, pos, depth)
	if err != nil {
		return entities.EvaluationRecord{}, fmt.Errorf("failed to analyze position: %w", err)
	}
	bestCp, err := quality.Normalize(bestRes.Score, mover)
	if err != nil {
		return entities.EvaluationRecord{}, err
	}

	after := pos.Apply(move)
	userCp, line, err := s.scoreAfter(ctx, after, mover, depth)
	if err != nil {
		return entities.EvaluationRecord{}, err
	}

	c := s.classifier.Classify(bestCp, userCp)

	settled := after
	for _, m := range line {
		settled = settled.Apply(m)
	}
	explanation, rule := s.explainer.Explain(quality.ExplainInput{
		Before: pos,
		After:  settled,
		Move:   move,
		Mover:  mover,
		Delta:  c.QuantizedDelta,
		Bucket: c.Bucket,
	})

	rec := entities.EvaluationRecord{
		Fen:         pos.FEN(),
		Uci:         move.UCI(),
		Bucket:      c.Bucket.String(),
		Label:       c.Label,
		Explanation: explanation,
		Rule:        rule,
		RawDeltaCp:  c.RawDelta,
		DeltaCp:     c.QuantizedDelta,
		BestCp:      bestCp,
		UserCp:      userCp,
		Depth:       depth,
	}
	if bm, err := pos.ParseMove(bestRes.BestMove()); err == nil {
		rec.BestMoveUci = bm.UCI()
		rec.BestMoveSan = pos.SAN(bm)
	}

	logging.Debug("move evaluated",
		zap.String("fen", rec.Fen),
		zap.String("uci", rec.Uci),
		zap.Int("best_cp", bestCp),
		zap.Int("user_cp", userCp),
		zap.Int("delta_cp", rec.DeltaCp),
		zap.String("bucket", rec.Bucket),
		zap.String("rule", rule),
	)
	return rec, nil
}

// scoreAfter scores the post-move position from the mover's point of view
// and returns the expected exchange: the opponent's reply followed by the
// mover's answer, as far as the engine's line gives them.
// Finished games are scored without asking the engine.
func (s *Service) scoreAfter(
	ctx context.Context,
	after board.Position,
	mover chess.Color,
	depth int,
) (int, []board.Move, error) {
	if over, method := after.Terminal(); over {
		if method == chess.Checkmate {
			return quality.MateScore, nil, nil
		}
		return 0, nil, nil
	}

	res, err := s.engine.Analyze(ctx, after, depth)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to analyze reply: %w", err)
	}
	cp, err := quality.Normalize(res.Score, mover)
	if err != nil {
		return 0, nil, err
	}
	return cp, exchangeLine(after, res.PV), nil
}

// exchangeLine parses at most the first two plies of pv, stopping at the
// first move that is not legal in sequence.
func exchangeLine(pos board.Position, pv []string) []board.Move {
	var line []board.Move
	for _, uci := range pv {
		if len(line) == 2 {
			break
		}
		m, err := pos.ParseMove(uci)
		if err != nil {
			break
		}
		line = append(line, m)
		pos = pos.Apply(m)
	}
	return line
}

// SuggestBestMove asks the engine once. Finished positions have no best move
// and are answered without a search.
func (s *Service) SuggestBestMove(ctx context.Context, fen string, depth int) (entities.BestMove, error) {
	if fen == "" {
		return entities.BestMove{}, missing("fen")
	}
	if err := checkDepth(depth); err != nil {
		return entities.BestMove{}, err
	}
	pos, err := board.ParsePosition(fen)
	if err != nil {
		return entities.BestMove{}, err
	}
	best := entities.BestMove{Fen: pos.FEN()}
	if over, _ := pos.Terminal(); over {
		return best, nil
	}
	if depth == 0 {
		depth = s.cfg.BestMoveDepth
	}

	res, err := s.engine.Analyze(ctx, pos, depth)
	if err != nil {
		return entities.BestMove{}, fmt.Errorf("failed to analyze position: %w", err)
	}
	cp, err := quality.Normalize(res.Score, pos.Turn())
	if err != nil {
		return entities.BestMove{}, err
	}
	best.ScoreCp = cp
	if plies, ok := res.Score.MatePlies(); ok {
		best.MatePlies = &plies
	}
	if m, err := pos.ParseMove(res.BestMove()); err == nil {
		best.Found = true
		best.Uci = m.UCI()
		best.San = pos.SAN(m)
	}
	return best, nil
}

// ApplyMove plays uci on fen and reports the resulting game state.
func (s *Service) ApplyMove(fen, uci string) (entities.MoveOutcome, error) {
	if fen == "" {
		return entities.MoveOutcome{}, missing("fen")
	}
	if uci == "" {
		return entities.MoveOutcome{}, missing("uci")
	}
	pos, err := board.ParsePosition(fen)
	if err != nil {
		return entities.MoveOutcome{}, err
	}
	move, err := pos.ParseMove(uci)
	if err != nil {
		return entities.MoveOutcome{}, err
	}
	out, err := pos.Play(move)
	if err != nil {
		return entities.MoveOutcome{}, err
	}
	outcome := entities.MoveOutcome{
		Fen:        out.Position.FEN(),
		Turn:       board.ColorName(out.Position.Turn()),
		IsGameOver: out.GameOver,
	}
	if out.GameOver {
		outcome.Result = string(out.Result)
		outcome.Method = out.Method.String()
	}
	return outcome, nil
}
