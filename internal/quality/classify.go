package quality

import (
	"errors"
	"fmt"
)

const DefaultStep = 50

// Threshold is one row of the bucket table. Rows are evaluated top-down and
// the first row whose Min does not exceed the quantized delta wins. The last
// row is the catch-all and its Min is ignored.
type Threshold struct {
	Min    int
	Bucket Bucket
	Label  string
}

func DefaultThresholds() []Threshold {
	return []Threshold{
		{Min: -50, Bucket: Hot, Label: "Looks optimal"},
		{Min: -150, Bucket: Warm, Label: "Playable but not perfect"},
		{Min: -300, Bucket: Cool, Label: "Inaccuracy"},
		{Min: -600, Bucket: Cold, Label: "Clear mistake"},
		{Bucket: Freezing, Label: "Tactical blunder"},
	}
}

type Classification struct {
	RawDelta       int
	QuantizedDelta int
	Bucket         Bucket
	Label          string
}

type Classifier struct {
	step  int
	table []Threshold
}

// NewClassifier validates the table: every bucket exactly once, in order
// from Hot to Freezing, with strictly decreasing lower bounds. That order
// makes the bucket a non-increasing function of the delta.
func NewClassifier(step int, table []Threshold) (*Classifier, error) {
	if step <= 0 {
		return nil, fmt.Errorf("quantization step must be positive, got %d", step)
	}
	if len(table) != len(bucketNames) {
		return nil, fmt.Errorf("bucket table needs %d rows, got %d", len(bucketNames), len(table))
	}
	for i, row := range table {
		if row.Bucket != Bucket(i) {
			return nil, fmt.Errorf("row %d: expected bucket %s, got %s", i, Bucket(i), row.Bucket)
		}
		if row.Label == "" {
			return nil, fmt.Errorf("row %d: empty label", i)
		}
		if i > 0 && i < len(table)-1 && row.Min >= table[i-1].Min {
			return nil, errors.New("bucket lower bounds must be strictly decreasing")
		}
	}
	rows := make([]Threshold, len(table))
	copy(rows, table)
	return &Classifier{step: step, table: rows}, nil
}

func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultStep, DefaultThresholds())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Classifier) Step() int {
	return c.step
}

// Quantize rounds delta to the nearest multiple of the step, halves away
// from zero.
func (c *Classifier) Quantize(delta int) int {
	return quantize(delta, c.step)
}

func quantize(delta, step int) int {
	if delta < 0 {
		return -quantize(-delta, step)
	}
	return (delta + step/2) / step * step
}

func (c *Classifier) Bucket(quantized int) (Bucket, string) {
	last := len(c.table) - 1
	for _, row := range c.table[:last] {
		if quantized >= row.Min {
			return row.Bucket, row.Label
		}
	}
	return c.table[last].Bucket, c.table[last].Label
}

// Classify compares the played move's score with the best score. Both must
// be normalized to the mover's point of view.
func (c *Classifier) Classify(bestScore, userScore int) Classification {
	raw := userScore - bestScore
	q := c.Quantize(raw)
	b, label := c.Bucket(q)
	return Classification{
		RawDelta:       raw,
		QuantizedDelta: q,
		Bucket:         b,
		Label:          label,
	}
}
