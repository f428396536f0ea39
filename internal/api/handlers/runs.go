package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jwpark/cyclewatch/internal/brain"
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// RunService executes analysis runs. Satisfied by brain.Orchestrator.
type RunService interface {
	Run(ctx context.Context, cfg brain.RunConfig, positions []contracts.PositionInput, totalValue float64) (*brain.RunResult, error)
	AnalyzeTicker(ctx context.Context, ticker string) (*brain.TickerAnalysis, error)
}

// RunReader loads stored runs. Satisfied by repos.RunRepository.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*brain.RunResult, error)
	LatestRunID(ctx context.Context) (string, error)
	ListActions(ctx context.Context, runID string) ([]contracts.Action, error)
}

// PositionSource loads the tracked portfolio. Satisfied by
// repos.PositionRepository.
type PositionSource interface {
	Positions(ctx context.Context) ([]contracts.PositionInput, float64, error)
}

// RunHandler handles analysis run API endpoints
// ⭐ SSOT: 런 API 핸들러는 여기서만
type RunHandler struct {
	runner     RunService
	runs       RunReader
	positions  PositionSource
	hub        *Hub
	policyHash string
	logger     *logger.Logger
}

// NewRunHandler creates a new run handler. hub may be nil when streaming is
// not wired.
func NewRunHandler(runner RunService, runs RunReader, positions PositionSource, hub *Hub, policyHash string, log *logger.Logger) *RunHandler {
	return &RunHandler{
		runner:     runner,
		runs:       runs,
		positions:  positions,
		hub:        hub,
		policyHash: policyHash,
		logger:     log,
	}
}

// TriggerRun executes a full analysis run over the stored portfolio.
// POST /api/runs
func (h *RunHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	positions, totalValue, err := h.positions.Positions(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load positions")
		respondError(w, http.StatusInternalServerError, "Failed to load positions")
		return
	}
	if len(positions) == 0 {
		respondError(w, http.StatusConflict, "No positions stored, nothing to analyze")
		return
	}

	cfg := brain.RunConfig{
		RunID:      brain.GenerateRunID(),
		Date:       time.Now(),
		PolicyHash: h.policyHash,
	}

	result, err := h.runner.Run(ctx, cfg, positions, totalValue)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", cfg.RunID).Error("Analysis run failed")
		respondError(w, http.StatusInternalServerError, "Analysis run failed")
		return
	}

	if h.hub != nil {
		h.hub.Publish(result)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetLatest returns the most recently stored run.
// GET /api/runs/latest
func (h *RunHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := h.runs.LatestRunID(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run ID")
		respondError(w, http.StatusInternalServerError, "Failed to get latest run")
		return
	}
	if runID == "" {
		respondError(w, http.StatusNotFound, "No runs stored yet")
		return
	}

	result, err := h.runs.GetRun(ctx, runID)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to load run")
		respondError(w, http.StatusInternalServerError, "Failed to load run")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetRun returns one stored run by ID.
// GET /api/runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID := mux.Vars(r)["id"]

	result, err := h.runs.GetRun(ctx, runID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetActions returns the action list of one stored run.
// GET /api/runs/{id}/actions
func (h *RunHandler) GetActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID := mux.Vars(r)["id"]

	actions, err := h.runs.ListActions(ctx, runID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"runId":   runID,
			"count":   len(actions),
			"actions": actions,
		},
	})
}

// AnalyzeTicker runs the single-ticker pipeline on demand, outside a
// portfolio context.
// GET /api/analysis/{ticker}
func (h *RunHandler) AnalyzeTicker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	analysis, err := h.runner.AnalyzeTicker(ctx, ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Warn("Ticker analysis failed")
		respondError(w, http.StatusNotFound, "No data for ticker")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    analysis,
	})
}
