package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chess-vn/movecoach/internal/board"
	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoach struct {
	evalErr   error
	lastDepth int
}

func (f *fakeCoach) EvaluateMove(_ context.Context, fen, uci string, depth int) (entities.EvaluationRecord, error) {
	f.lastDepth = depth
	if f.evalErr != nil {
		return entities.EvaluationRecord{}, f.evalErr
	}
	if uci == "e2e5" {
		return entities.EvaluationRecord{}, fmt.Errorf("%w: %s", board.ErrIllegalMove, uci)
	}
	return entities.EvaluationRecord{
		Fen:         fen,
		Uci:         uci,
		Bucket:      "Hot",
		Label:       "Looks optimal",
		Explanation: "Strong move.",
		BestCp:      30,
		UserCp:      25,
		RawDeltaCp:  -5,
		BestMoveSan: "e5",
	}, nil
}

func (f *fakeCoach) SuggestBestMove(_ context.Context, fen string, depth int) (entities.BestMove, error) {
	f.lastDepth = depth
	if fen == "" {
		return entities.BestMove{}, errors.New("missing parameter: fen")
	}
	mate := 3
	return entities.BestMove{Fen: fen, San: "Qh5", Uci: "d1h5", Found: true, MatePlies: &mate}, nil
}

func (f *fakeCoach) ApplyMove(fen, uci string) (entities.MoveOutcome, error) {
	return entities.MoveOutcome{Fen: "after", Turn: "black"}, nil
}

type fakeEngine bool

func (f fakeEngine) Ready() bool { return bool(f) }

type memoryStore struct {
	entries []entities.GameLogEntry
}

func (m *memoryStore) Append(_ context.Context, e entities.GameLogEntry) error {
	for _, prev := range m.entries {
		if prev.GameId == e.GameId {
			return fmt.Errorf("%w: %s", gamelog.ErrDuplicateGame, e.GameId)
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

type memoryQueue struct {
	requests []dtos.ReviewRequest
}

func (q *memoryQueue) SubmitReviewRequest(_ context.Context, r dtos.ReviewRequest) error {
	q.requests = append(q.requests, r)
	return nil
}

func newTestServer(cfg Config, deps Deps) *server {
	gin.SetMode(gin.TestMode)
	if cfg.AllowOrigins == nil {
		cfg.AllowOrigins = []string{"*"}
	}
	return NewServer(cfg, deps)
}

func do(t *testing.T, s *server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(w, req)
	return w
}

func TestEvalMove(t *testing.T) {
	c := &fakeCoach{}
	s := newTestServer(Config{}, Deps{Coach: c})

	w := do(t, s, http.MethodPost, "/api/eval-move", `{"fen":"x","uci":"e7e5","depth":10}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dtos.EvalMoveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hot", resp.Bucket)
	assert.Equal(t, "Looks optimal", resp.Message)
	assert.Equal(t, "e5", resp.BestMove)
	assert.Equal(t, 10, c.lastDepth)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"illegal", nil, http.StatusBadRequest, `{"error":"Illegal move"}`},
		{"engine", fmt.Errorf("search: %w", engine.ErrEngineUnavailable), http.StatusServiceUnavailable, `{"error":"engine unavailable"}`},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, `{"error":"request timed out"}`},
		{"other", errors.New("pipe closed"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(Config{}, Deps{Coach: &fakeCoach{evalErr: tt.err}})
			w := do(t, s, http.MethodPost, "/api/eval-move", `{"fen":"x","uci":"e2e5"}`, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestEvalMoveBadBody(t *testing.T) {
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}})
	w := do(t, s, http.MethodPost, "/api/eval-move", `{"fen":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNegativeDepthMatchesAcrossEndpoints(t *testing.T) {
	c := &fakeCoach{}
	s := newTestServer(Config{}, Deps{Coach: c})

	eval := do(t, s, http.MethodPost, "/api/eval-move", `{"fen":"x","uci":"e7e5","depth":-1}`, nil)
	best := do(t, s, http.MethodGet, "/api/best-move?fen=somefen&depth=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, eval.Code)
	assert.Equal(t, http.StatusBadRequest, best.Code)
	assert.JSONEq(t, best.Body.String(), eval.Body.String())
	assert.Zero(t, c.lastDepth)
}

func TestBestMove(t *testing.T) {
	c := &fakeCoach{}
	s := newTestServer(Config{}, Deps{Coach: c})

	w := do(t, s, http.MethodGet, "/api/best-move?fen=somefen&depth=20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"bestSan":"Qh5","bestUci":"d1h5","mateIn":3}`, w.Body.String())
	assert.Equal(t, 20, c.lastDepth)

	w = do(t, s, http.MethodGet, "/api/best-move?fen=somefen&depth=deep", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMakeMove(t *testing.T) {
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}})
	w := do(t, s, http.MethodPost, "/api/make-move", `{"fen":"x","uci":"e2e4"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fen":"after","turn":"black","isGameOver":false,"result":null}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}, Engine: fakeEngine(true)})
	w := do(t, s, http.MethodGet, "/health", "", nil)
	assert.JSONEq(t, `{"status":"ok","engine":"ready"}`, w.Body.String())

	s = newTestServer(Config{}, Deps{Coach: &fakeCoach{}, Engine: fakeEngine(false)})
	w = do(t, s, http.MethodGet, "/health", "", nil)
	assert.JSONEq(t, `{"status":"ok","engine":"unavailable"}`, w.Body.String())
}

func TestGameLogClientId(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}, Games: store})

	body := `{"mode":"computer","difficulty":"easy","startedAt":"2024-05-01T10:00:00Z","result":"1-0","moves":[{"bucket":"Hot"}]}`
	w := do(t, s, http.MethodPost, "/api/games", body, map[string]string{"X-Client-Id": "header-client"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, s, http.MethodPost, "/api/games", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, store.entries, 2)
	assert.Equal(t, "header-client", store.entries[0].ClientId)
	assert.Equal(t, "UNKNOWN", store.entries[1].ClientId)
	assert.NotEmpty(t, store.entries[0].GameId)
	assert.NotEqual(t, store.entries[0].GameId, store.entries[1].GameId)

	var resp dtos.GameLogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, store.entries[1].GameId, resp.GameId)
}

func TestGameLogDuplicateId(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}, Games: store})

	body := `{"gameId":"g-7","mode":"computer","result":"1-0","moves":[]}`
	w := do(t, s, http.MethodPost, "/api/games", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, s, http.MethodPost, "/api/games", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"game already logged"}`, w.Body.String())
	assert.Len(t, store.entries, 1)
}

func TestGameLogDisabled(t *testing.T) {
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}})
	w := do(t, s, http.MethodPost, "/api/games", `{}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuth(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(Config{AuthSecret: "secret"}, Deps{Coach: &fakeCoach{}, Games: store})

	w := do(t, s, http.MethodPost, "/api/games", `{"clientId":"body"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("other"))
	require.NoError(t, err)
	w = do(t, s, http.MethodPost, "/api/games", `{"clientId":"body"}`, map[string]string{"Authorization": "Bearer " + bad})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	good, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	w = do(t, s, http.MethodPost, "/api/games", `{"clientId":"body"}`, map[string]string{"Authorization": "Bearer " + good})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.entries, 1)
	assert.Equal(t, "u1", store.entries[0].ClientId)
}

func TestReviewSubmit(t *testing.T) {
	q := &memoryQueue{}
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}, Reviews: q})

	w := do(t, s, http.MethodPost, "/api/review", `{"clientId":"c1","side":"white","pgn":"1. e4 e5 *"}`, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, q.requests, 1)
	assert.Equal(t, "c1", q.requests[0].ClientId)

	var resp dtos.ReviewSubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, q.requests[0].Id, resp.Id)

	w = do(t, s, http.MethodPost, "/api/review", `{"clientId":"c1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestTimeoutReachesCoach(t *testing.T) {
	var deadline bool
	c := &deadlineCoach{seen: &deadline}
	s := newTestServer(Config{RequestTimeout: time.Second}, Deps{Coach: c})
	w := do(t, s, http.MethodPost, "/api/eval-move", `{"fen":"x","uci":"e2e4"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, deadline)
}

type deadlineCoach struct {
	fakeCoach
	seen *bool
}

func (d *deadlineCoach) EvaluateMove(ctx context.Context, fen, uci string, depth int) (entities.EvaluationRecord, error) {
	_, *d.seen = ctx.Deadline()
	return d.fakeCoach.EvaluateMove(ctx, fen, uci, depth)
}

func TestWebSocket(t *testing.T) {
	s := newTestServer(Config{}, Deps{Coach: &fakeCoach{}})
	ts := httptest.NewServer(s.http.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(payload{Type: "eval", Data: map[string]string{"fen": "x", "uci": "e7e5"}}))
	require.NoError(t, conn.WriteJSON(payload{Type: "eval", Data: map[string]string{"fen": "x", "uci": "e2e5"}}))
	require.NoError(t, conn.WriteJSON(payload{Type: "castle"}))

	var first, second, third map[string]interface{}
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	require.NoError(t, conn.ReadJSON(&third))

	assert.Equal(t, "eval", first["type"])
	assert.Equal(t, "Hot", first["data"].(map[string]interface{})["bucket"])
	assert.Equal(t, "Illegal move", second["error"])
	assert.Equal(t, "unknown message type", third["error"])
}
