package portfolio

import (
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// RiskAggregator rolls bucket and stock data up to portfolio-level
// transition risk and the posture mode.
//
//	R_conc  = clip(200 * sum(bucket overages), 0, 100)
//	R_phase = clip(250 * weight in PEAKING/DOWNTURN, 0, 100)
//	R_story = clip(200 * max story weight, 0, 100)
//	R_trans = 0.35*clip(2*P_port) + 0.25*R_phase + 0.20*R_conc + 0.20*R_story
//
// ⭐ SSOT: 포트폴리오 리스크 블렌드는 여기서만
type RiskAggregator struct {
	cfg     strategyconfig.Portfolio
	buckets *BucketAggregator
	logger  *logger.Logger
}

// NewRiskAggregator creates a portfolio risk aggregator.
func NewRiskAggregator(cfg strategyconfig.Portfolio, log *logger.Logger) *RiskAggregator {
	return &RiskAggregator{
		cfg:     cfg,
		buckets: NewBucketAggregator(cfg, log),
		logger:  log,
	}
}

// Aggregate computes the complete portfolio risk rollup. Cash positions
// carry zero pressure; a degenerate portfolio (no positions, zero weight)
// yields neutral results instead of dividing by zero.
func (a *RiskAggregator) Aggregate(
	positions []contracts.PositionInput,
	analyses map[string]*contracts.StockCycleAnalysis,
	totalValue float64,
) (*contracts.PortfolioRiskResult, error) {
	buckets, err := a.buckets.Aggregate(positions, analyses)
	if err != nil {
		return nil, err
	}

	result := &contracts.PortfolioRiskResult{
		TotalValue:   totalValue,
		Buckets:      buckets,
		StoryWeights: map[string]float64{},
	}

	// Portfolio pressure: cash carries zero pressure
	for _, pos := range positions {
		if pos.Bucket == contracts.BucketCash {
			continue
		}
		if analysis, ok := analyses[pos.Ticker]; ok {
			result.Pressure += pos.Weight * analysis.CyclePressure
		}
	}
	result.Phase = contracts.ScoreToPhase(result.Pressure)
	result.PressureRisk = clip(2*result.Pressure, 0, 100)

	// Phase concentration: weight parked in PEAKING/DOWNTURN names
	for _, pos := range positions {
		analysis, ok := analyses[pos.Ticker]
		if !ok {
			continue
		}
		if analysis.Phase == contracts.PhasePeaking || analysis.Phase == contracts.PhaseDownturn {
			result.PeakingWeight += pos.Weight
			result.PeakingTickers = append(result.PeakingTickers, pos.Ticker)
		}
	}
	result.PhaseConcRisk = clip(250*result.PeakingWeight, 0, 100)

	// Bucket concentration: summed overage beyond policy limits
	overage := 0.0
	for _, b := range buckets {
		overage += b.Overage
	}
	result.BucketConcRisk = clip(200*overage, 0, 100)

	// Story concentration: correlated exposure across nominally distinct names
	for _, pos := range positions {
		for _, tag := range pos.StoryTags {
			result.StoryWeights[tag] += pos.Weight
		}
	}
	for _, w := range result.StoryWeights {
		if w > result.MaxStoryWeight {
			result.MaxStoryWeight = w
		}
	}
	result.StoryConcRisk = clip(200*result.MaxStoryWeight, 0, 100)

	result.TransitionRisk = a.cfg.PressureWeight*result.PressureRisk +
		a.cfg.PhaseWeight*result.PhaseConcRisk +
		a.cfg.BucketWeight*result.BucketConcRisk +
		a.cfg.StoryWeight*result.StoryConcRisk

	result.Mode = a.mode(result.TransitionRisk, result.Phase)

	if a.logger != nil {
		a.logger.WithFields(map[string]interface{}{
			"pressure":        result.Pressure,
			"transition_risk": result.TransitionRisk,
			"mode":            result.Mode,
			"buckets":         len(buckets),
		}).Info("Aggregated portfolio risk")
	}

	return result, nil
}

// mode derives the posture from transition risk and phase.
func (a *RiskAggregator) mode(transitionRisk float64, phase contracts.CyclePhase) contracts.Mode {
	if transitionRisk > a.cfg.DefenseMinRisk ||
		phase == contracts.PhasePeaking || phase == contracts.PhaseDownturn {
		return contracts.ModeDefense
	}
	if transitionRisk < a.cfg.OffenseMaxRisk && phase.Rank() <= contracts.PhaseMid.Rank() {
		return contracts.ModeOffense
	}
	return contracts.ModeBalanced
}
