package server

import (
	"context"
	"net/http"
	"time"

	"github.com/chess-vn/movecoach/internal/domains/dtos"
	"github.com/chess-vn/movecoach/internal/domains/entities"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Coach is the set of coaching queries the server exposes.
type Coach interface {
	EvaluateMove(ctx context.Context, fen, uci string, depth int) (entities.EvaluationRecord, error)
	SuggestBestMove(ctx context.Context, fen string, depth int) (entities.BestMove, error)
	ApplyMove(fen, uci string) (entities.MoveOutcome, error)
}

type EngineStatus interface {
	Ready() bool
}

type ReviewQueue interface {
	SubmitReviewRequest(ctx context.Context, request dtos.ReviewRequest) error
}

// Deps are the collaborators owned by the caller. Games and Reviews may be
// nil, which disables the matching routes.
type Deps struct {
	Coach   Coach
	Engine  EngineStatus
	Games   gamelog.Store
	Reviews ReviewQueue
}

type server struct {
	address  string
	upgrader websocket.Upgrader
	http     *http.Server

	config  Config
	coach   Coach
	engine  EngineStatus
	games   gamelog.Store
	reviews ReviewQueue
}

func NewServer(cfg Config, deps Deps) *server {
	srv := &server{
		address: "0.0.0.0:" + cfg.Port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		config:  cfg,
		coach:   deps.Coach,
		engine:  deps.Engine,
		games:   deps.Games,
		reviews: deps.Reviews,
	}
	srv.http = &http.Server{
		Addr:    srv.address,
		Handler: srv.router(),
	}
	return srv
}

func (s *server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", clientIdHeader},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleWebSocket)

	api := router.Group("/api", s.authMiddleware(), s.timeout())
	api.POST("/eval-move", s.handleEvalMove)
	api.GET("/best-move", s.handleBestMove)
	api.POST("/make-move", s.handleMakeMove)
	api.POST("/games", s.handleGameLog)
	api.POST("/review", s.handleReviewSubmit)
	return router
}

// Start serves until the listener fails or Shutdown is called.
func (s *server) Start() error {
	logging.Info("coach server started", zap.String("port", s.config.Port))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header("X-Request-Id", requestId)
		start := time.Now()

		c.Next()

		logging.Info("request handled",
			zap.String("request_id", requestId),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// timeout bounds every API request independently of the search depth.
func (s *server) timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.RequestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *server) respondError(c *gin.Context, err error) {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, dtos.ErrorResponse{Error: message})
}
