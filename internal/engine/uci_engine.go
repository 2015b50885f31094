package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/freeeve/uci"
	"github.com/notnil/chess"
	"go.uber.org/zap"
)

type Config struct {
	Path    string
	Threads int
	Hash    int
}

// UCIEngine owns a single engine process. Searches are serialized: the
// protocol allows only one outstanding "go" per process.
type UCIEngine struct {
	cfg Config
	sem chan struct{}

	mu     sync.Mutex
	engine *uci.Engine
	alive  bool
}

func NewUCIEngine(cfg Config) *UCIEngine {
	if cfg.Threads <= 0 {
		cfg.Threads = 2
	}
	if cfg.Hash <= 0 {
		cfg.Hash = 128
	}
	return &UCIEngine{
		cfg: cfg,
		sem: make(chan struct{}, 1),
	}
}

// Start spawns the engine process and applies options once.
// Calling Start on a running engine is a no-op.
func (e *UCIEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.alive {
		return nil
	}

	eng, err := uci.NewEngine(e.cfg.Path)
	if err != nil {
		return fmt.Errorf("%w: failed to start engine: %s", ErrEngineUnavailable, err.Error())
	}
	err = eng.SetOptions(uci.Options{
		Threads: e.cfg.Threads,
		Hash:    e.cfg.Hash,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	})
	if err != nil {
		eng.Close()
		return fmt.Errorf("%w: failed to set options: %s", ErrEngineUnavailable, err.Error())
	}
	e.engine = eng
	e.alive = true
	logging.Info("engine started",
		zap.String("path", e.cfg.Path),
		zap.Int("threads", e.cfg.Threads),
		zap.Int("hash_mb", e.cfg.Hash),
	)
	return nil
}

// Close terminates the process. Termination errors are ignored.
func (e *UCIEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdownLocked()
}

func (e *UCIEngine) shutdownLocked() {
	if e.engine != nil {
		e.engine.Close()
		e.engine = nil
		logging.Info("engine stopped")
	}
	e.alive = false
}

func (e *UCIEngine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}

type outcome struct {
	result Result
	err    error
}

// Analyze queues for the engine and runs one search. A caller whose context
// ends stops waiting; an in-flight search still runs to completion and its
// result is dropped.
func (e *UCIEngine) Analyze(ctx context.Context, pos board.Position, depth int) (Result, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	e.mu.Lock()
	eng, alive := e.engine, e.alive
	e.mu.Unlock()
	if !alive {
		<-e.sem
		return Result{}, ErrEngineUnavailable
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() { <-e.sem }()
		res, err := e.search(eng, pos, depth)
		done <- outcome{result: res, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (e *UCIEngine) search(eng *uci.Engine, pos board.Position, depth int) (Result, error) {
	fen := pos.FEN()
	if err := eng.SetFEN(fen); err != nil {
		e.fail(err, fen)
		return Result{}, ErrEngineUnavailable
	}
	results, err := eng.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		e.fail(err, fen)
		return Result{}, ErrEngineUnavailable
	}
	res, ok := resultFromUCI(results, pos.Turn())
	if !ok {
		logging.Error("engine returned no score", zap.String("fen", fen), zap.Int("depth", depth))
		return Result{}, fmt.Errorf("%w: no score for position", ErrEngineUnavailable)
	}
	logging.Debug("engine search finished",
		zap.String("fen", fen),
		zap.Int("depth", res.Depth),
		zap.Int("score", res.Score.Value),
		zap.Bool("mate", res.Score.Mate),
	)
	return res, nil
}

// fail marks the process dead. It is not restarted mid-request.
func (e *UCIEngine) fail(err error, fen string) {
	logging.Error("engine search failed", zap.String("fen", fen), zap.Error(err))
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdownLocked()
}

// resultFromUCI picks the deepest primary line. Scores are reported from the
// side to move.
func resultFromUCI(results *uci.Results, turn chess.Color) (Result, bool) {
	if results == nil || len(results.Results) == 0 {
		return Result{}, false
	}
	var best *uci.ScoreResult
	for i := range results.Results {
		r := &results.Results[i]
		if r.MultiPV > 1 {
			continue
		}
		if best == nil || r.Depth > best.Depth {
			best = r
		}
	}
	if best == nil {
		return Result{}, false
	}
	pv := append([]string(nil), best.BestMoves...)
	if len(pv) == 0 && results.BestMove != "" && results.BestMove != "(none)" {
		pv = []string{results.BestMove}
	}
	return Result{
		Depth: best.Depth,
		PV:    pv,
		Score: Score{Value: best.Score, Mate: best.Mate, Pov: turn},
	}, true
}
