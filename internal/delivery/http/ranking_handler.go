package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"screener-engine/internal/domain"
	"screener-engine/internal/usecase"
)

const (
	defaultCycleLimit = 10
	maxCycleLimit     = 100
	maxEvaluateAssets = 500
)

type rankingsResponse struct {
	CycleID   string                  `json:"cycleId"`
	UpdatedAt string                  `json:"updatedAt"`
	Evaluated int                     `json:"evaluated"`
	Count     int                     `json:"count"`
	Records   []domain.AnalysisRecord `json:"records"`
}

// GetRankings handles GET /api/rankings?limit=&minScore=
func (h *Handler) GetRankings(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil || limit < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return
	}
	minScore, err := queryFloat(c, "minScore", 0)
	if err != nil || minScore < 0 || minScore > 100 {
		badRequest(c, "minScore must be between 0 and 100")
		return
	}

	cycle, ok := h.rankings.LatestCycle()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no ranking cycle has completed yet"})
		return
	}

	records := make([]domain.AnalysisRecord, 0, len(cycle.Records))
	for _, rec := range cycle.Records {
		if rec.Score < minScore {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, rankingsResponse{
		CycleID:   cycle.ID,
		UpdatedAt: cycle.FinishedAt.UTC().Format(time.RFC3339),
		Evaluated: cycle.Evaluated,
		Count:     len(records),
		Records:   records,
	})
}

// GetRanking handles GET /api/rankings/:symbol
func (h *Handler) GetRanking(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()
	rec, err := h.history.Record(ctx, symbol)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not ranked in the latest cycle", "symbol": symbol})
	case err != nil:
		h.handleError(c, err, http.StatusInternalServerError, "failed to load record")
	default:
		c.JSON(http.StatusOK, rec)
	}
}

// GetSymbolHistory handles GET /api/rankings/:symbol/history?limit=
func (h *Handler) GetSymbolHistory(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	limit, err := queryInt(c, "limit", defaultCycleLimit)
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	if limit > maxCycleLimit {
		limit = maxCycleLimit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()
	records, err := h.history.SymbolHistory(ctx, symbol, limit)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "failed to load symbol history")
		return
	}
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "count": len(records), "records": records})
}

type evaluateRequest struct {
	Snapshot   *domain.TickerSnapshot `json:"snapshot"`
	Candles    []domain.Candle        `json:"candles"`
	Assets     []usecase.AssetInput   `json:"assets"`
	MinScore   *float64               `json:"minScore"`
	MaxResults int                    `json:"maxResults"`
}

// Evaluate handles POST /api/evaluate. A single snapshot returns its record;
// a list of assets returns the ranked, filtered records.
func (h *Handler) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	switch {
	case req.Snapshot != nil:
		if req.Snapshot.Symbol == "" {
			badRequest(c, "snapshot.symbol is required")
			return
		}
		c.JSON(http.StatusOK, h.eval.Evaluate(*req.Snapshot, req.Candles))

	case len(req.Assets) > 0:
		if len(req.Assets) > maxEvaluateAssets {
			badRequest(c, "too many assets")
			return
		}
		minScore := float64(domain.StrictMinScore)
		if req.MinScore != nil {
			minScore = *req.MinScore
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
		defer cancel()
		records, err := h.eval.Rank(ctx, req.Assets, minScore, req.MaxResults)
		switch {
		case errors.Is(err, domain.ErrInvalidConfig):
			badRequest(c, err.Error())
		case err != nil:
			h.handleError(c, err, http.StatusInternalServerError, "ranking failed")
		default:
			c.JSON(http.StatusOK, gin.H{"count": len(records), "records": records})
		}

	default:
		badRequest(c, "either snapshot or assets is required")
	}
}

// GetCycles handles GET /api/cycles?limit=
func (h *Handler) GetCycles(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultCycleLimit)
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	if limit > maxCycleLimit {
		limit = maxCycleLimit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()
	cycles, err := h.history.History(ctx, limit)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "failed to load cycles")
		return
	}
	if cycles == nil {
		cycles = []domain.RankingCycle{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cycles), "cycles": cycles})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}
