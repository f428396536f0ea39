package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// PositionStore reads and replaces the tracked portfolio. Satisfied by
// repos.PositionRepository.
type PositionStore interface {
	Positions(ctx context.Context) ([]contracts.PositionInput, float64, error)
	ReplacePositions(ctx context.Context, positions []contracts.PositionInput) error
}

// PositionHandler handles portfolio position API endpoints
// ⭐ SSOT: 포지션 API 핸들러는 여기서만
type PositionHandler struct {
	store  PositionStore
	logger *logger.Logger
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(store PositionStore, log *logger.Logger) *PositionHandler {
	return &PositionHandler{
		store:  store,
		logger: log,
	}
}

// positionPayload is the wire format for one position.
type positionPayload struct {
	Ticker      string   `json:"ticker"`
	MarketValue float64  `json:"marketValue"`
	Bucket      string   `json:"bucket"`
	Profile     string   `json:"profile"`
	StoryTags   []string `json:"storyTags"`
}

// GetPositions returns the stored portfolio with derived weights.
// GET /api/positions
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	positions, totalValue, err := h.store.Positions(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load positions")
		respondError(w, http.StatusInternalServerError, "Failed to load positions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":      len(positions),
			"totalValue": totalValue,
			"positions":  positions,
		},
	})
}

// PutPositions replaces the stored portfolio.
// PUT /api/positions
func (h *PositionHandler) PutPositions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Positions []positionPayload `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(payload.Positions) == 0 {
		respondError(w, http.StatusBadRequest, "At least one position is required")
		return
	}

	positions := make([]contracts.PositionInput, 0, len(payload.Positions))
	for _, p := range payload.Positions {
		if p.Ticker == "" {
			respondError(w, http.StatusBadRequest, "Every position needs a ticker")
			return
		}
		if p.MarketValue < 0 {
			respondError(w, http.StatusBadRequest, "Market value must not be negative")
			return
		}
		positions = append(positions, contracts.PositionInput{
			Ticker:      p.Ticker,
			MarketValue: p.MarketValue,
			Bucket:      contracts.Bucket(p.Bucket),
			Profile:     contracts.Profile(p.Profile),
			StoryTags:   p.StoryTags,
		})
	}

	if err := h.store.ReplacePositions(ctx, positions); err != nil {
		h.logger.WithError(err).Error("Failed to replace positions")
		respondError(w, http.StatusInternalServerError, "Failed to store positions")
		return
	}

	h.logger.WithField("count", len(positions)).Info("Portfolio positions replaced")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count": len(positions),
		},
	})
}
