package quality

import (
	"testing"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		score engine.Score
		pov   chess.Color
		want  int
	}{
		{"cp same side", engine.Score{Value: 42, Pov: chess.White}, chess.White, 42},
		{"cp other side", engine.Score{Value: 42, Pov: chess.White}, chess.Black, -42},
		{"mate for", engine.Score{Value: 3, Mate: true, Pov: chess.Black}, chess.Black, MateScore},
		{"mate against", engine.Score{Value: -2, Mate: true, Pov: chess.Black}, chess.Black, -MateScore},
		{"mate against flipped", engine.Score{Value: -2, Mate: true, Pov: chess.Black}, chess.White, MateScore},
		{"already mated", engine.Score{Value: 0, Mate: true, Pov: chess.White}, chess.White, -MateScore},
		{"already mated flipped", engine.Score{Value: 0, Mate: true, Pov: chess.White}, chess.Black, MateScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.score, tt.pov)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Normalize(engine.Score{Value: 10}, chess.White)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = Normalize(engine.Score{Value: MateScore, Pov: chess.White}, chess.White)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = Normalize(engine.Score{Value: 1, Pov: chess.White}, chess.NoColor)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestQuantize(t *testing.T) {
	c := DefaultClassifier()
	tests := map[int]int{
		0:    0,
		24:   0,
		25:   50,
		-24:  0,
		-25:  -50,
		-74:  -50,
		-75:  -100,
		149:  150,
		-601: -600,
		-626: -650,
	}
	for in, want := range tests {
		assert.Equal(t, want, c.Quantize(in), "quantize(%d)", in)
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, step := range []int{1, 7, 25, 50, 100} {
		c, err := NewClassifier(step, DefaultThresholds())
		require.NoError(t, err)
		for d := -1000; d <= 1000; d += 13 {
			q := c.Quantize(d)
			assert.Equal(t, q, c.Quantize(q))
			assert.Zero(t, q%step)
		}
	}
}

func TestQuantizeMateSentinel(t *testing.T) {
	c := DefaultClassifier()
	assert.Equal(t, 2*MateScore, c.Quantize(2*MateScore))
	assert.Equal(t, -2*MateScore, c.Quantize(-2*MateScore))
	assert.Equal(t, -MateScore-50, c.Quantize(-MateScore-40))
}

func TestClassifyBoundaries(t *testing.T) {
	c := DefaultClassifier()
	tests := []struct {
		best, user int
		quantized  int
		bucket     Bucket
	}{
		{30, 30, 0, Hot},
		{30, -20, -50, Hot},
		{0, -74, -50, Hot},
		{0, -75, -100, Warm},
		{0, -150, -150, Warm},
		{0, -175, -200, Cool},
		{0, -300, -300, Cool},
		{0, -324, -300, Cool},
		{0, -325, -350, Cold},
		{0, -600, -600, Cold},
		{0, -625, -650, Freezing},
		{MateScore, -MateScore, -2 * MateScore, Freezing},
		{-40, 200, 250, Hot},
	}
	for _, tt := range tests {
		got := c.Classify(tt.best, tt.user)
		assert.Equal(t, tt.user-tt.best, got.RawDelta)
		assert.Equal(t, tt.quantized, got.QuantizedDelta, "best=%d user=%d", tt.best, tt.user)
		assert.Equal(t, tt.bucket, got.Bucket, "best=%d user=%d", tt.best, tt.user)
	}
}

func TestBucketMonotonic(t *testing.T) {
	c := DefaultClassifier()
	prev := Hot
	for d := 1000; d >= -2000; d-- {
		b, label := c.Bucket(c.Quantize(d))
		assert.GreaterOrEqual(t, b, prev)
		assert.NotEmpty(t, label)
		prev = b
	}
	assert.Equal(t, Freezing, prev)
}

func TestNewClassifierValidation(t *testing.T) {
	_, err := NewClassifier(0, DefaultThresholds())
	assert.Error(t, err)

	_, err = NewClassifier(50, DefaultThresholds()[:4])
	assert.Error(t, err)

	swapped := DefaultThresholds()
	swapped[1].Min, swapped[2].Min = swapped[2].Min, swapped[1].Min
	_, err = NewClassifier(50, swapped)
	assert.Error(t, err)

	reordered := DefaultThresholds()
	reordered[0].Bucket, reordered[1].Bucket = reordered[1].Bucket, reordered[0].Bucket
	_, err = NewClassifier(50, reordered)
	assert.Error(t, err)

	tuned := DefaultThresholds()
	tuned[0].Min = -20
	c, err := NewClassifier(10, tuned)
	require.NoError(t, err)
	assert.Equal(t, Warm, c.Classify(0, -30).Bucket)
}

func TestParseBucket(t *testing.T) {
	for i, name := range []string{"Hot", "warm", "COOL", "Cold", "Freezing"} {
		b, err := ParseBucket(name)
		require.NoError(t, err)
		assert.Equal(t, Bucket(i), b)
	}
	_, err := ParseBucket("Lukewarm")
	assert.Error(t, err)

	b, ok := LookupBucket("Freezing")
	assert.True(t, ok)
	assert.Equal(t, Freezing, b)
	_, ok = LookupBucket("hot")
	assert.False(t, ok)

	text, err := Cold.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Cold", string(text))
	assert.True(t, Warm.Good())
	assert.False(t, Cool.Good())
}

func explainInput(t *testing.T, before, uci, after string, delta int, b Bucket) ExplainInput {
	t.Helper()
	pos, err := board.ParsePosition(before)
	require.NoError(t, err)
	m, err := pos.ParseMove(uci)
	require.NoError(t, err)
	in := ExplainInput{Before: pos, Move: m, Mover: pos.Turn(), Delta: delta, Bucket: b}
	if after == "" {
		in.After = pos.Apply(m)
	} else {
		in.After, err = board.ParsePosition(after)
		require.NoError(t, err)
	}
	return in
}

func TestMaterial(t *testing.T) {
	pos := board.StartingPosition()
	assert.Equal(t, 8*100+2*320+2*330+2*500+900, Material(pos, chess.White))
	assert.Zero(t, Balance(pos, chess.Black))
}

func TestExplainRuleOrder(t *testing.T) {
	e := NewExplainer()

	// The after position has white's queen missing.
	hang := explainInput(t,
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 4 4",
		"d1e2",
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/4P3/5N2/PPPP1PPP/RNB1KB1R w KQkq - 0 5",
		-900, Freezing)
	text, rule := e.Explain(hang)
	assert.Equal(t, "material-loss", rule)
	assert.Contains(t, text, "loses material")

	// Same material picture, but the engine sees no loss.
	even := explainInput(t,
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 4 4",
		"d1e2",
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/4P3/5N2/PPPP1PPP/RNB1KB1R w KQkq - 0 5",
		0, Hot)
	_, rule = e.Explain(even)
	assert.Equal(t, "bucket", rule)

	big := explainInput(t, board.StartingPosition().FEN(), "g1f3", "", -350, Cold)
	_, rule = e.Explain(big)
	assert.Equal(t, "opponent-chances", rule)

	// After castling short, h2-h3 is beside the king's file.
	castled := "rnbqk2r/pppp1ppp/5n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQ1RK1 w kq - 4 5"
	shelter := explainInput(t, castled, "h2h3", "", -50, Hot)
	_, rule = e.Explain(shelter)
	assert.Equal(t, "king-safety", rule)

	notShelter := explainInput(t, castled, "a2a3", "", -50, Hot)
	text, rule = e.Explain(notShelter)
	assert.Equal(t, "bucket", rule)
	assert.Contains(t, text, "engine's choice")

	zeroDelta := explainInput(t, castled, "h2h3", "", 0, Hot)
	_, rule = e.Explain(zeroDelta)
	assert.Equal(t, "bucket", rule)

	warm := explainInput(t, castled, "a2a3", "", -100, Warm)
	cool := explainInput(t, castled, "a2a3", "", -200, Cool)
	warmText, _ := e.Explain(warm)
	coolText, _ := e.Explain(cool)
	assert.Equal(t, warmText, coolText)

	unknown := explainInput(t, castled, "a2a3", "", -100, Bucket(9))
	text, rule = e.Explain(unknown)
	assert.Equal(t, "fallback", rule)
	assert.Equal(t, fallbackText, text)
}

func TestExplainCustomRules(t *testing.T) {
	e := NewExplainer(Rule{
		Name:  "never",
		Match: func(ExplainInput) bool { return false },
		Text:  func(ExplainInput) string { return "" },
	})
	text, rule := e.Explain(ExplainInput{})
	assert.Equal(t, "fallback", rule)
	assert.Equal(t, fallbackText, text)
}
