package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"screener-engine/internal/domain"
	"screener-engine/internal/usecase"
)

const (
	ServiceName         = "screener-engine"
	ServiceVersion      = "1.0.0"
	DefaultTimeout      = 30 * time.Second
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Evaluator scores ad-hoc assets.
type Evaluator interface {
	Evaluate(snap domain.TickerSnapshot, candles []domain.Candle) domain.AnalysisRecord
	Rank(ctx context.Context, inputs []usecase.AssetInput, minScore float64, maxResults int) ([]domain.AnalysisRecord, error)
}

// CycleHistory reads past ranking cycles and per-symbol records.
type CycleHistory interface {
	History(ctx context.Context, limit int) ([]domain.RankingCycle, error)
	SymbolHistory(ctx context.Context, symbol string, limit int) ([]domain.AnalysisRecord, error)
	Record(ctx context.Context, symbol string) (domain.AnalysisRecord, error)
}

// Handler serves the REST API.
type Handler struct {
	rankings domain.ScreenerRepository
	history  CycleHistory
	eval     Evaluator
	tokens   domain.TokenRepository
	push     usecase.PushSender
	logger   *slog.Logger
}

func NewHandler(
	rankings domain.ScreenerRepository,
	history CycleHistory,
	eval Evaluator,
	tokens domain.TokenRepository,
	push usecase.PushSender,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		rankings: rankings,
		history:  history,
		eval:     eval,
		tokens:   tokens,
		push:     push,
		logger:   logger,
	}
}

// Routes builds the gin engine. Extra handlers, such as the websocket
// endpoint, are mounted with mount.
func (h *Handler) Routes(mount func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	api.GET("/rankings", h.GetRankings)
	api.GET("/rankings/:symbol", h.GetRanking)
	api.GET("/rankings/:symbol/history", h.GetSymbolHistory)
	api.POST("/evaluate", h.Evaluate)
	api.GET("/cycles", h.GetCycles)

	api.POST("/tokens/register", h.RegisterToken)
	api.POST("/tokens/unregister", h.UnregisterToken)
	api.GET("/tokens/count", h.TokenCount)
	api.POST("/notifications/test", h.SendTestNotification)

	if mount != nil {
		mount(router)
	}
	return router
}

func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"version":   ServiceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if cycle, ok := h.rankings.LatestCycle(); ok {
		body["lastCycle"] = cycle.FinishedAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeaderKey, requestID)
		c.Set(RequestIDContextKey, requestID)
		c.Next()
	}
}

func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			slog.String("request_id", c.GetString(RequestIDContextKey)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// handleError logs err and sends a JSON error body.
func (h *Handler) handleError(c *gin.Context, err error, status int, message string) {
	h.logger.Error("api error",
		slog.String("request_id", c.GetString(RequestIDContextKey)),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)
	c.JSON(status, gin.H{
		"error":      message,
		"request_id": c.GetString(RequestIDContextKey),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      message,
		"request_id": c.GetString(RequestIDContextKey),
	})
}
