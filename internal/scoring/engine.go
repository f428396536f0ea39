package scoring

import (
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

const epsilon = 1e-9

// Engine combines triggered clusters into the dual opportunity / sell-risk
// score pair.
// ⭐ SSOT: dual score 산출은 여기서만
type Engine struct {
	cfg    strategyconfig.Scoring
	logger *logger.Logger
}

// NewEngine creates a scoring engine with the given policy.
func NewEngine(cfg strategyconfig.Scoring, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: log,
	}
}

// Score computes the dual score from cluster results. Scoring is a pure
// function of the results; the same inputs always produce the same score.
func (e *Engine) Score(ticker string, results []contracts.ClusterResult) *contracts.DualScore {
	score := &contracts.DualScore{Ticker: ticker}

	for _, r := range results {
		switch r.Category {
		case contracts.CategoryOpportunity:
			score.OpportunityClusters = append(score.OpportunityClusters, r)
		case contracts.CategorySellRisk:
			score.SellRiskClusters = append(score.SellRiskClusters, r)
		}
	}

	score.OpportunityScore = categoryScore(score.OpportunityClusters)
	score.SellRiskScore = categoryScore(score.SellRiskClusters)

	diff := score.Differential()
	score.Bias = e.bias(diff)
	score.Confidence = e.confidence(results, diff)

	if e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"ticker":      ticker,
			"opportunity": score.OpportunityScore,
			"sell_risk":   score.SellRiskScore,
			"bias":        score.Bias,
			"confidence":  score.Confidence,
		}).Debug("Calculated dual score")
	}

	return score
}

// categoryScore normalizes against the single heaviest cluster in the
// category so one maximal cluster alone can saturate to 100.
//
//	raw   = sum(strength_i * weight_i) over triggered clusters
//	score = clip(100 * raw / max(sum(weight_i) * max_weight, eps), 0, 100)
func categoryScore(results []contracts.ClusterResult) float64 {
	maxWeight := 0.0
	for _, r := range results {
		if r.Weight > maxWeight {
			maxWeight = r.Weight
		}
	}

	raw := 0.0
	weightSum := 0.0
	for _, r := range results {
		if !r.Triggered {
			continue
		}
		raw += r.Strength * r.Weight
		weightSum += r.Weight
	}

	if weightSum == 0 {
		return 0 // 발동 클러스터 없음 → 0점
	}

	denom := weightSum * maxWeight
	if denom < epsilon {
		denom = epsilon
	}
	return clip(100*raw/denom, 0, 100)
}

// bias maps the signed differential to the overall call.
func (e *Engine) bias(diff float64) contracts.Bias {
	switch {
	case diff >= e.cfg.StrongBand:
		return contracts.BiasStrongBuy
	case diff >= e.cfg.BiasBand:
		return contracts.BiasBuy
	case diff <= -e.cfg.StrongBand:
		return contracts.BiasStrongSell
	case diff <= -e.cfg.BiasBand:
		return contracts.BiasSell
	default:
		return contracts.BiasHold
	}
}

// confidence rises monotonically with the triggered-cluster count, the
// average strength of triggered clusters, and the size of the differential.
func (e *Engine) confidence(results []contracts.ClusterResult, diff float64) float64 {
	triggered := 0
	strengthSum := 0.0
	for _, r := range results {
		if r.Triggered {
			triggered++
			strengthSum += r.Strength
		}
	}

	if triggered == 0 {
		return 0
	}

	avgStrength := strengthSum / float64(triggered)
	breadth := float64(triggered) / float64(len(results))

	absDiff := diff
	if absDiff < 0 {
		absDiff = -absDiff
	}

	return clip(100*avgStrength*breadth+e.cfg.DiffWeight*absDiff, 0, 100)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
