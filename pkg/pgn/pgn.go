// Package pgn replays PGN games into position sequences.
package pgn

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/freeeve/pgn.v1"
)

var ErrNoGame = errors.New("no game in pgn")

// Game holds the tags of one game and the FEN of every position reached,
// starting with the initial position.
type Game struct {
	Tags map[string]string
	Fens []string
}

// Plies is the number of moves played.
func (g Game) Plies() int {
	if len(g.Fens) == 0 {
		return 0
	}
	return len(g.Fens) - 1
}

func (g Game) Result() string {
	if r, ok := g.Tags["Result"]; ok {
		return r
	}
	return "*"
}

func ParseFromString(pgnString string) ([]Game, error) {
	return Parse(strings.NewReader(pgnString))
}

// Parse replays every game in r. A game with a FEN tag starts from that
// position. A move that cannot be played fails the whole parse.
func Parse(r io.Reader) ([]Game, error) {
	ps := pgn.NewPGNScanner(r)

	var games []Game
	for ps.Next() {
		game, err := ps.Scan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan game %d: %w", len(games)+1, err)
		}

		b := pgn.NewBoard()
		if fen := game.Tags["FEN"]; fen != "" {
			b, err = pgn.NewBoardFEN(fen)
			if err != nil {
				return nil, fmt.Errorf("game %d: bad FEN tag: %w", len(games)+1, err)
			}
		}
		fens := []string{b.String()}
		for i, move := range game.Moves {
			if err := b.MakeMove(move); err != nil {
				return nil, fmt.Errorf("game %d ply %d: %w", len(games)+1, i+1, err)
			}
			fens = append(fens, b.String())
		}
		games = append(games, Game{
			Tags: game.Tags,
			Fens: fens,
		})
	}
	if len(games) == 0 {
		return nil, ErrNoGame
	}
	return games, nil
}

// ParseOne returns the first game in the text.
func ParseOne(pgnString string) (Game, error) {
	games, err := ParseFromString(pgnString)
	if err != nil {
		return Game{}, err
	}
	return games[0], nil
}
