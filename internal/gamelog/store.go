// Package gamelog stores finished games as append-only JSON lines and
// derives per-client trend reports from them.
package gamelog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

var (
	ErrMalformedRecord = errors.New("malformed log record")
	ErrDuplicateGame   = errors.New("game already logged")
)

const maxLineSize = 1 << 20

// Store accepts finished games. Entries are never replaced: appending a
// game id that is already stored fails with ErrDuplicateGame.
type Store interface {
	Append(ctx context.Context, entry entities.GameLogEntry) error
}

// Source yields every stored game.
type Source interface {
	Load(ctx context.Context) (LoadResult, error)
}

// LoadResult lists decoded entries in storage order. Skipped counts records
// that could not be decoded.
type LoadResult struct {
	Entries []entities.GameLogEntry
	Skipped int
}

// FileStore appends to a JSONL file. Files ending in ".gz" are read through
// gzip and cannot be appended to.
type FileStore struct {
	path string
	mu   sync.Mutex
	ids  map[string]struct{}
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Append(ctx context.Context, entry entities.GameLogEntry) error {
	if strings.HasSuffix(s.path, ".gz") {
		return fmt.Errorf("cannot append to compressed log %s", s.path)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		res, err := s.Load(ctx)
		if err != nil {
			return err
		}
		s.ids = make(map[string]struct{}, len(res.Entries))
		for _, e := range res.Entries {
			if e.GameId != "" {
				s.ids[e.GameId] = struct{}{}
			}
		}
	}
	if entry.GameId != "" {
		if _, ok := s.ids[entry.GameId]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateGame, entry.GameId)
		}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if entry.GameId != "" {
		s.ids[entry.GameId] = struct{}{}
	}
	return nil
}

// Load reads the whole file. A missing file yields no entries.
func (s *FileStore) Load(ctx context.Context) (LoadResult, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return LoadResult{}, nil
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(s.path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return LoadResult{}, fmt.Errorf("failed to open gzip log: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return Decode(ctx, r)
}

// Decode parses JSON lines. Blank lines are ignored; lines that are not a
// game object are skipped and counted.
func Decode(ctx context.Context, r io.Reader) (LoadResult, error) {
	var res LoadResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		entry, err := decodeLine(line)
		if err != nil {
			res.Skipped++
			logging.Debug("skipping log line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("failed to read log: %w", err)
	}
	return res, nil
}

func decodeLine(line []byte) (entities.GameLogEntry, error) {
	var entry entities.GameLogEntry
	if line[0] != '{' {
		return entities.GameLogEntry{}, fmt.Errorf("%w: not an object", ErrMalformedRecord)
	}
	if err := json.Unmarshal(line, &entry); err != nil {
		return entities.GameLogEntry{}, fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error())
	}
	return entry, nil
}
