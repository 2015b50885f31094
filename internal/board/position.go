// Package board adapts github.com/notnil/chess to the small surface the
// coaching pipeline needs: parse a FEN, validate and apply moves, and answer
// simple questions about piece placement.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrIllegalMove     = errors.New("illegal move")
)

// Position is an immutable game state. Transformations return new values.
type Position struct {
	pos *chess.Position
}

// Move is a legal move of the position it was parsed from.
type Move struct {
	move *chess.Move
}

// Outcome describes the position reached after applying a move.
type Outcome struct {
	Position Position
	GameOver bool
	Result   chess.Outcome
	Method   chess.Method
}

func ParsePosition(fen string) (Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return Position{}, fmt.Errorf("%w: empty fen", ErrInvalidPosition)
	}
	withFen, err := chess.FEN(fen)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %s", ErrInvalidPosition, err.Error())
	}
	g := chess.NewGame(withFen, chess.UseNotation(chess.UCINotation{}))
	return Position{pos: g.Position()}, nil
}

func StartingPosition() Position {
	return Position{pos: chess.NewGame().Position()}
}

func (p Position) FEN() string {
	return p.pos.String()
}

func (p Position) Turn() chess.Color {
	return p.pos.Turn()
}

func (p Position) LegalMoves() []Move {
	valid := p.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, Move{move: m})
	}
	return moves
}

// ParseMove resolves a UCI string against the legal move set.
func (p Position) ParseMove(uci string) (Move, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	for _, m := range p.pos.ValidMoves() {
		if m.String() == uci {
			return Move{move: m}, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, uci)
}

// Apply plays m, which must have been obtained from p.
func (p Position) Apply(m Move) Position {
	return Position{pos: p.pos.Update(m.move)}
}

// Play applies a move through a full game so automatic draws are detected.
func (p Position) Play(m Move) (Outcome, error) {
	withFen, err := chess.FEN(p.FEN())
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", ErrInvalidPosition, err.Error())
	}
	g := chess.NewGame(withFen, chess.UseNotation(chess.UCINotation{}))
	if err := g.Move(m.move); err != nil {
		return Outcome{}, fmt.Errorf("%w: %s", ErrIllegalMove, err.Error())
	}
	return Outcome{
		Position: Position{pos: g.Position()},
		GameOver: g.Outcome() != chess.NoOutcome,
		Result:   g.Outcome(),
		Method:   g.Method(),
	}, nil
}

// SAN renders m in standard algebraic notation relative to p.
func (p Position) SAN(m Move) string {
	return chess.AlgebraicNotation{}.Encode(p.pos, m.move)
}

// Terminal reports checkmate or stalemate.
func (p Position) Terminal() (bool, chess.Method) {
	method := p.pos.Status()
	switch method {
	case chess.Checkmate, chess.Stalemate:
		return true, method
	default:
		return false, chess.NoMethod
	}
}

func (p Position) PieceAt(sq chess.Square) chess.Piece {
	return p.pos.Board().Piece(sq)
}

// Pieces returns a copy of the occupied squares.
func (p Position) Pieces() map[chess.Square]chess.Piece {
	src := p.pos.Board().SquareMap()
	out := make(map[chess.Square]chess.Piece, len(src))
	for sq, pc := range src {
		out[sq] = pc
	}
	return out
}

func (p Position) KingSquare(c chess.Color) (chess.Square, bool) {
	for sq, pc := range p.pos.Board().SquareMap() {
		if pc.Type() == chess.King && pc.Color() == c {
			return sq, true
		}
	}
	return chess.NoSquare, false
}

// SamePlacement compares piece placement and side to move, ignoring
// castling rights and move counters.
func (p Position) SamePlacement(fen string) bool {
	a := strings.Fields(p.FEN())
	b := strings.Fields(fen)
	if len(a) < 2 || len(b) < 2 {
		return false
	}
	return a[0] == b[0] && a[1] == b[1]
}

func (p Position) IsZero() bool {
	return p.pos == nil
}

func (m Move) UCI() string {
	if m.move == nil {
		return ""
	}
	return m.move.String()
}

func (m Move) From() chess.Square {
	return m.move.S1()
}

func (m Move) To() chess.Square {
	return m.move.S2()
}

func (m Move) IsZero() bool {
	return m.move == nil
}

// ColorName returns "white" or "black".
func ColorName(c chess.Color) string {
	if c == chess.Black {
		return "black"
	}
	return "white"
}
