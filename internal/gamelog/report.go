package gamelog

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/internal/quality"
)

const unknownClient = "UNKNOWN"

// Filter selects games. Empty fields match everything.
type Filter struct {
	ClientId   string
	Difficulty string
	Mode       string
}

func (f Filter) matchesSettings(e entities.GameLogEntry) bool {
	if f.Difficulty != "" && e.Difficulty != f.Difficulty {
		return false
	}
	if f.Mode != "" && e.Mode != f.Mode {
		return false
	}
	return true
}

// GameMetrics summarizes one game. Ratios are over all moves of the game.
type GameMetrics struct {
	Index     int
	StartedAt string
	Result    string
	Moves     int
	Good      int
	Bad       int
	GoodRatio float64
	BadRatio  float64
}

// Metrics returns false for a game without moves.
func Metrics(e entities.GameLogEntry) (GameMetrics, bool) {
	total := len(e.Moves)
	if total == 0 {
		return GameMetrics{}, false
	}
	m := GameMetrics{
		StartedAt: e.StartedAt,
		Result:    e.Result,
		Moves:     total,
	}
	for _, mv := range e.Moves {
		b, ok := quality.LookupBucket(mv.Bucket)
		if !ok {
			continue
		}
		if b.Good() {
			m.Good++
		} else {
			m.Bad++
		}
	}
	m.GoodRatio = float64(m.Good) / float64(total)
	m.BadRatio = float64(m.Bad) / float64(total)
	return m, true
}

type Phase struct {
	Games     int
	GoodRatio float64
	BadRatio  float64
}

// Trend compares the first half of a client's games with the rest. Deltas
// are in percentage points.
type Trend struct {
	Early     Phase
	Late      Phase
	GoodDelta float64
	BadDelta  float64
}

func averagePhase(games []GameMetrics) Phase {
	p := Phase{Games: len(games)}
	if len(games) == 0 {
		return p
	}
	for _, g := range games {
		p.GoodRatio += g.GoodRatio
		p.BadRatio += g.BadRatio
	}
	p.GoodRatio /= float64(len(games))
	p.BadRatio /= float64(len(games))
	return p
}

// ComputeTrend splits after max(1, n/2) games.
func ComputeTrend(games []GameMetrics) Trend {
	split := len(games) / 2
	if split < 1 {
		split = 1
	}
	if split > len(games) {
		split = len(games)
	}
	t := Trend{
		Early: averagePhase(games[:split]),
		Late:  averagePhase(games[split:]),
	}
	t.GoodDelta = (t.Late.GoodRatio - t.Early.GoodRatio) * 100
	t.BadDelta = (t.Late.BadRatio - t.Early.BadRatio) * 100
	return t
}

type ClientReport struct {
	Filter  Filter
	Games   int
	PerGame []GameMetrics
	Trend   Trend
}

// Analyze builds the report for f.ClientId, ordering games by start time.
func Analyze(entries []entities.GameLogEntry, f Filter) ClientReport {
	var filtered []entities.GameLogEntry
	for _, e := range entries {
		if e.ClientId != f.ClientId || !f.matchesSettings(e) {
			continue
		}
		filtered = append(filtered, e)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt < filtered[j].StartedAt
	})

	r := ClientReport{Filter: f, Games: len(filtered)}
	for i, e := range filtered {
		m, ok := Metrics(e)
		if !ok {
			continue
		}
		m.Index = i + 1
		r.PerGame = append(r.PerGame, m)
	}
	if len(r.PerGame) > 0 {
		r.Trend = ComputeTrend(r.PerGame)
	}
	return r
}

type ClientCount struct {
	ClientId string
	Games    int
}

// Overview counts games per client in order of first appearance.
func Overview(entries []entities.GameLogEntry, f Filter) []ClientCount {
	index := map[string]int{}
	var counts []ClientCount
	for _, e := range entries {
		if !f.matchesSettings(e) {
			continue
		}
		id := e.ClientId
		if id == "" {
			id = unknownClient
		}
		i, ok := index[id]
		if !ok {
			i = len(counts)
			index[id] = i
			counts = append(counts, ClientCount{ClientId: id})
		}
		counts[i].Games++
	}
	return counts
}

func RenderOverview(w io.Writer, counts []ClientCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No games matched the filters yet.")
		return
	}
	fmt.Fprintln(w, "Clients found in log (with given filters):")
	for _, c := range counts {
		fmt.Fprintf(w, "  %s: %d games\n", c.ClientId, c.Games)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run again with for example:")
	fmt.Fprintln(w, "  loganalyze --client-id <one-of-these> --difficulty medium")
	fmt.Fprintln(w)
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func signed(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%5.1f", v)
	}
	return fmt.Sprintf("%5.1f", v)
}

func (r ClientReport) Render(w io.Writer) {
	if r.Games == 0 {
		fmt.Fprintln(w, "No games found for that filter.")
		return
	}
	fmt.Fprintf(w, "Client:     %s\n", r.Filter.ClientId)
	fmt.Fprintf(w, "Mode:       %s\n", orAny(r.Filter.Mode))
	fmt.Fprintf(w, "Difficulty: %s\n", orAny(r.Filter.Difficulty))
	fmt.Fprintf(w, "Games:      %d\n", r.Games)
	fmt.Fprintln(w)

	for _, g := range r.PerGame {
		result := g.Result
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(w, "Game %2d | %s | result %-7s | moves %3d | good %5.1f%% | bad %5.1f%%\n",
			g.Index, ShortTime(g.StartedAt), result, g.Moves, g.GoodRatio*100, g.BadRatio*100)
	}
	if len(r.PerGame) == 0 {
		fmt.Fprintln(w, "No per-move data available.")
		return
	}

	t := r.Trend
	fmt.Fprintln(w, "\n--- Trend summary (first half vs last half) ---")
	fmt.Fprintf(w, "Early games (first %d):\n", t.Early.Games)
	fmt.Fprintf(w, "  Avg good moves: %5.1f%%\n", t.Early.GoodRatio*100)
	fmt.Fprintf(w, "  Avg bad moves : %5.1f%%\n", t.Early.BadRatio*100)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Late games (last %d):\n", t.Late.Games)
	fmt.Fprintf(w, "  Avg good moves: %5.1f%%\n", t.Late.GoodRatio*100)
	fmt.Fprintf(w, "  Avg bad moves : %5.1f%%\n", t.Late.BadRatio*100)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Change over time:")
	fmt.Fprintf(w, "  Good move rate  : %s percentage points\n", signed(t.GoodDelta))
	fmt.Fprintf(w, "  Bad move rate   : %s percentage points\n", signed(t.BadDelta))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "If good moves went up and bad moves went down,")
	fmt.Fprintln(w, "that suggests the player improved at this difficulty.")
	fmt.Fprintln(w)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ShortTime renders an ISO-8601 timestamp as "YYYY-MM-DD HH:MM", or returns
// it unchanged when it does not parse.
func ShortTime(ts string) string {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return ts
}
