package quality

import (
	"fmt"
	"strings"
)

// Bucket orders move quality from best (Hot) to worst (Freezing).
type Bucket uint8

const (
	Hot Bucket = iota
	Warm
	Cool
	Cold
	Freezing
)

var bucketNames = []string{"Hot", "Warm", "Cool", "Cold", "Freezing"}

func (b Bucket) String() string {
	if int(b) < len(bucketNames) {
		return bucketNames[b]
	}
	return "Unknown"
}

func (b Bucket) Valid() bool {
	return b <= Freezing
}

// Good reports whether the bucket counts as a good move in trend reports.
func (b Bucket) Good() bool {
	return b == Hot || b == Warm
}

// LookupBucket matches s against the bucket names exactly, as they are
// written to game logs.
func LookupBucket(s string) (Bucket, bool) {
	for i, name := range bucketNames {
		if s == name {
			return Bucket(i), true
		}
	}
	return 0, false
}

// ParseBucket is case-insensitive, for hand-written configuration.
func ParseBucket(s string) (Bucket, error) {
	for i, name := range bucketNames {
		if strings.EqualFold(s, name) {
			return Bucket(i), nil
		}
	}
	return 0, fmt.Errorf("unknown bucket %q", s)
}

func (b Bucket) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("unknown bucket %d", b)
	}
	return []byte(b.String()), nil
}

func (b *Bucket) UnmarshalText(text []byte) error {
	v, err := ParseBucket(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
