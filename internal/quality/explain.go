package quality

import (
	"fmt"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/notnil/chess"
)

// PieceValues are the material weights used by the explanation rules.
// Kings carry no material value.
var PieceValues = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

const (
	materialLossThreshold = 200
	tacticalDropThreshold  = -300
)

// ExplainInput carries what the rules look at. After is the position the
// material rule compares against; the orchestrator advances it by the
// opponent's expected reply when the engine provides one.
type ExplainInput struct {
	Before board.Position
	After  board.Position
	Move   board.Move
	Mover  chess.Color
	Delta  int
	Bucket Bucket
}

// Rule is one (predicate, explanation) pair.
type Rule struct {
	Name  string
	Match func(in ExplainInput) bool
	Text  func(in ExplainInput) string
}

type Explainer struct {
	rules []Rule
}

func NewExplainer(rules ...Rule) *Explainer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Explainer{rules: rules}
}

// Explain returns the text of the first matching rule and the rule's name.
func (e *Explainer) Explain(in ExplainInput) (string, string) {
	for _, r := range e.rules {
		if r.Match(in) {
			return r.Text(in), r.Name
		}
	}
	return fallbackText, "fallback"
}

const fallbackText = "The evaluation drops compared to the engine's best line."

// DefaultRules is ordered; the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "material-loss",
			Match: func(in ExplainInput) bool { return in.Delta < 0 && materialDrop(in) >= materialLossThreshold },
			Text: func(in ExplainInput) string {
				return fmt.Sprintf(
					"This move loses material: about %.1f pawns' worth disappears from your side of the board.",
					float64(materialDrop(in))/100,
				)
			},
		},
		{
			Name:  "opponent-chances",
			Match: func(in ExplainInput) bool { return in.Delta <= tacticalDropThreshold },
			Text: func(ExplainInput) string {
				return "This lets your opponent get strong tactical or positional chances."
			},
		},
		{
			Name:  "king-safety",
			Match: func(in ExplainInput) bool { return in.Delta < 0 && kingShelterPawnMove(in) },
			Text: func(ExplainInput) string {
				return "Pushing a pawn in front of your king loosens its shelter."
			},
		},
		{
			Name:  "bucket",
			Match: func(in ExplainInput) bool { return in.Bucket.Valid() },
			Text:  bucketText,
		},
		{
			Name:  "fallback",
			Match: func(ExplainInput) bool { return true },
			Text:  func(ExplainInput) string { return fallbackText },
		},
	}
}

func bucketText(in ExplainInput) string {
	switch in.Bucket {
	case Hot:
		return "This is the engine's choice or very close to it."
	case Warm, Cool:
		return "Reasonable, but a stronger continuation was available."
	default:
		return "The engine found a clearly better move in this position."
	}
}

// Material returns the summed piece values of side c.
func Material(pos board.Position, c chess.Color) int {
	total := 0
	for _, pc := range pos.Pieces() {
		if pc.Color() == c {
			total += PieceValues[pc.Type()]
		}
	}
	return total
}

// Balance is c's material minus the opponent's.
func Balance(pos board.Position, c chess.Color) int {
	return Material(pos, c) - Material(pos, c.Other())
}

func materialDrop(in ExplainInput) int {
	if in.Before.IsZero() || in.After.IsZero() {
		return 0
	}
	return Balance(in.Before, in.Mover) - Balance(in.After, in.Mover)
}

func kingShelterPawnMove(in ExplainInput) bool {
	if in.Before.IsZero() || in.Move.IsZero() {
		return false
	}
	pc := in.Before.PieceAt(in.Move.From())
	if pc.Type() != chess.Pawn || pc.Color() != in.Mover {
		return false
	}
	king, ok := in.Before.KingSquare(in.Mover)
	if !ok {
		return false
	}
	d := int(in.Move.From().File()) - int(king.File())
	return d >= -1 && d <= 1
}
