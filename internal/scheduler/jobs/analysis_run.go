package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jwpark/cyclewatch/internal/brain"
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// PositionSource loads the tracked portfolio for the scheduled run.
type PositionSource interface {
	Positions(ctx context.Context) ([]contracts.PositionInput, float64, error)
}

// RunPublisher receives completed run results, e.g. the WebSocket hub.
type RunPublisher interface {
	Publish(payload interface{})
}

// AnalysisRunJob executes the full analysis pipeline on a schedule,
// typically once per trading day after the close.
// ⭐ SSOT: 정기 분석 런 스케줄은 이 Job에서만
type AnalysisRunJob struct {
	orchestrator *brain.Orchestrator
	positions    PositionSource
	publisher    RunPublisher
	policyHash   string
	schedule     string
	logger       *logger.Logger
}

// NewAnalysisRunJob creates the scheduled analysis job. publisher may be nil.
func NewAnalysisRunJob(
	orchestrator *brain.Orchestrator,
	positions PositionSource,
	publisher RunPublisher,
	policyHash string,
	schedule string,
	log *logger.Logger,
) *AnalysisRunJob {
	return &AnalysisRunJob{
		orchestrator: orchestrator,
		positions:    positions,
		publisher:    publisher,
		policyHash:   policyHash,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *AnalysisRunJob) Name() string {
	return "analysis_run"
}

// Schedule returns the cron schedule expression (with seconds).
func (j *AnalysisRunJob) Schedule() string {
	return j.schedule
}

// Run executes one scheduled analysis over the stored portfolio.
func (j *AnalysisRunJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled analysis run")

	positions, totalValue, err := j.positions.Positions(ctx)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	if len(positions) == 0 {
		j.logger.Warn("No positions stored, skipping scheduled run")
		return nil
	}

	cfg := brain.RunConfig{
		RunID:      brain.GenerateRunID(),
		Date:       time.Now(),
		PolicyHash: j.policyHash,
	}

	result, err := j.orchestrator.Run(ctx, cfg, positions, totalValue)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	if j.publisher != nil {
		j.publisher.Publish(result)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":          result.RunID,
		"tickers":         len(result.Tickers),
		"actions":         len(result.Actions),
		"mode":            result.Portfolio.Mode,
		"transition_risk": result.Portfolio.TransitionRisk,
	}).Info("Scheduled analysis run completed")

	return nil
}
