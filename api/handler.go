package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"volsim/internal/config"
	"volsim/internal/engine"
	"volsim/internal/ingest"
	"volsim/internal/model"
	"volsim/internal/pipeline"
	"volsim/internal/storage"
	"volsim/internal/strategy"
	"volsim/internal/vol"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	pipeline *pipeline.Pipeline
	store    *storage.Store
	cfg      *config.Config
	logger   *zap.Logger
}

func NewHandler(p *pipeline.Pipeline, store *storage.Store, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: p,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Simulate runs the strategy comparison on the configured quote file.
// Omitted parameters fall back to configured values.
func (h *Handler) Simulate(c *gin.Context) {
	var req struct {
		Lambda        *float64 `json:"lambda"`
		BaselineDelta *float64 `json:"baseline_delta"`
		K0            *float64 `json:"k0"`
		K1            *float64 `json:"k1"`
		MinSpread     *float64 `json:"min_spread"`
		Phi           *float64 `json:"phi"`
		AlphaAS       *float64 `json:"alpha_as"`
		Persist       bool     `json:"persist"`
		IncludeStates bool     `json:"include_states"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := pipeline.ParamsFromConfig(h.cfg)
	applyOverride(&params.Lambda, req.Lambda)
	applyOverride(&params.BaselineDelta, req.BaselineDelta)
	applyOverride(&params.K0, req.K0)
	applyOverride(&params.K1, req.K1)
	applyOverride(&params.MinSpread, req.MinSpread)
	applyOverride(&params.Phi, req.Phi)
	applyOverride(&params.AlphaAS, req.AlphaAS)

	reports, err := h.pipeline.Compare(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("simulation failed", zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if req.Persist && h.store != nil {
		for _, report := range reports {
			if _, err := h.store.SaveRun(c.Request.Context(), report); err != nil {
				h.logger.Error("failed to persist run", zap.String("run", report.Name), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist run"})
				return
			}
		}
	}

	if !req.IncludeStates {
		for i := range reports {
			reports[i].States = nil
		}
	}
	c.JSON(http.StatusOK, gin.H{"params": params, "runs": reports})
}

// ListBars returns persisted bars inside an optional RFC 3339 time range.
// An omitted start means "from the beginning"; an omitted end means "now".
func (h *Handler) ListBars(c *gin.Context) {
	start, end, err := parseTimeRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
		return
	}

	bars, err := h.store.LoadBars(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to query bars", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if bars == nil {
		bars = []model.Bar{}
	}
	c.JSON(http.StatusOK, bars)
}

// ListRuns returns the most recent persisted run summaries.
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not configured"})
		return
	}

	runs, err := h.store.ListRuns(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to query runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if runs == nil {
		runs = []storage.RunSummary{}
	}
	c.JSON(http.StatusOK, runs)
}

func parseTimeRange(startStr, endStr string) (start, end time.Time, err error) {
	end = time.Now()
	if startStr != "" {
		if start, err = time.Parse(time.RFC3339, startStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
	}
	if endStr != "" {
		if end, err = time.Parse(time.RFC3339, endStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s before start %s", endStr, startStr)
	}
	return start, end, nil
}

func applyOverride(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// statusFor maps parameter errors to 400, degenerate or malformed input
// data to 422, and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vol.ErrInvalidLambda),
		errors.Is(err, strategy.ErrInvalidSpread),
		errors.Is(err, strategy.ErrLengthMismatch),
		errors.Is(err, engine.ErrLengthMismatch),
		errors.Is(err, engine.ErrVolRequired):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoBars),
		errors.Is(err, ingest.ErrNoRows),
		errors.Is(err, ingest.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
