package portfolio

import (
	"fmt"
	"sort"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// topContributorCount caps the ranked contributor list per bucket.
const topContributorCount = 5

// BucketAggregator rolls weighted per-stock pressure, phase, and critical
// signal data up into per-bucket transition risk.
//
// Formulas:
//
//	P_b    = sum(w_i * pressure_i)
//	S_b    = sum(w_i * phase_score_i)
//	B_b    = sum(w_i * critical_i) / sum(w_i)
//	R_b    = clip(clip(2 * P_b, 0, 100) * (1 + 0.8 * B_b), 0, 100)
//
// ⭐ SSOT: 버킷 집계는 여기서만
type BucketAggregator struct {
	cfg    strategyconfig.Portfolio
	logger *logger.Logger
}

// NewBucketAggregator creates a bucket aggregator with the given limits.
func NewBucketAggregator(cfg strategyconfig.Portfolio, log *logger.Logger) *BucketAggregator {
	return &BucketAggregator{
		cfg:    cfg,
		logger: log,
	}
}

// Aggregate groups positions by bucket and computes each bucket's aggregate.
// A position carrying an unknown bucket is a configuration error and rejects
// the whole call. A position without an analysis contributes weight only.
func (a *BucketAggregator) Aggregate(
	positions []contracts.PositionInput,
	analyses map[string]*contracts.StockCycleAnalysis,
) (map[contracts.Bucket]*contracts.BucketAggregate, error) {
	grouped := map[contracts.Bucket][]contracts.PositionInput{}
	for _, pos := range positions {
		if !knownBucket(pos.Bucket) {
			return nil, fmt.Errorf("position %s: unknown bucket %q", pos.Ticker, pos.Bucket)
		}
		grouped[pos.Bucket] = append(grouped[pos.Bucket], pos)
	}

	out := make(map[contracts.Bucket]*contracts.BucketAggregate, len(grouped))
	for bucket, members := range grouped {
		out[bucket] = a.aggregateBucket(bucket, members, analyses)
	}

	if a.logger != nil {
		a.logger.WithFields(map[string]interface{}{
			"buckets":   len(out),
			"positions": len(positions),
		}).Debug("Aggregated buckets")
	}

	return out, nil
}

func (a *BucketAggregator) aggregateBucket(
	bucket contracts.Bucket,
	positions []contracts.PositionInput,
	analyses map[string]*contracts.StockCycleAnalysis,
) *contracts.BucketAggregate {
	targetMax, ok := a.cfg.BucketLimits[bucket]
	if !ok {
		targetMax = 1.0
	}

	agg := &contracts.BucketAggregate{
		Bucket:    bucket,
		TargetMax: targetMax,
	}

	criticalWeight := 0.0
	var contributors []contracts.Contributor

	for _, pos := range positions {
		agg.Weight += pos.Weight

		analysis, ok := analyses[pos.Ticker]
		if !ok {
			continue
		}

		agg.Pressure += pos.Weight * analysis.CyclePressure
		agg.PhaseScore += pos.Weight * analysis.Phase.Score()

		if analysis.HasCritical() {
			criticalWeight += pos.Weight
		}

		contributors = append(contributors, contracts.Contributor{
			Ticker:          pos.Ticker,
			Weight:          pos.Weight,
			Pressure:        analysis.CyclePressure,
			Contribution:    pos.Weight * analysis.CyclePressure,
			Phase:           analysis.Phase,
			CriticalSignals: analysis.CriticalSignals,
		})
	}

	if agg.Weight > targetMax {
		agg.Overage = agg.Weight - targetMax
	}

	agg.Phase = contracts.ScoreToPhase(agg.PhaseScore)
	agg.BaseRisk = clip(2*agg.Pressure, 0, 100)

	// 비중 0 버킷은 중립 (0으로 나누지 않음)
	if agg.Weight > 0 {
		agg.CriticalBreadth = criticalWeight / agg.Weight
	}
	agg.RiskMultiplier = 1 + 0.8*agg.CriticalBreadth
	agg.TransitionRisk = clip(agg.BaseRisk*agg.RiskMultiplier, 0, 100)

	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Contribution != contributors[j].Contribution {
			return contributors[i].Contribution > contributors[j].Contribution
		}
		return contributors[i].Ticker < contributors[j].Ticker
	})
	if len(contributors) > topContributorCount {
		contributors = contributors[:topContributorCount]
	}
	agg.TopContributors = contributors

	return agg
}

func knownBucket(b contracts.Bucket) bool {
	for _, known := range contracts.KnownBuckets {
		if b == known {
			return true
		}
	}
	return false
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
