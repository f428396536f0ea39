package strategyconfig

import (
	"fmt"
	"math"

	"github.com/jwpark/cyclewatch/internal/contracts"
)

// ValidationError 검증 실패 (해당 호출만 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required policy constraints.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	// === Clusters ===
	if len(cfg.Clusters.Weights) == 0 {
		return ValidationError{"clusters.weights", "at least one cluster weight required"}
	}
	for name, w := range cfg.Clusters.Weights {
		if w <= 0 || w > 1 {
			return ValidationError{"clusters.weights." + name, "must be in (0, 1]"}
		}
	}

	// === Scoring ===
	if cfg.Scoring.BiasBand <= 0 || cfg.Scoring.StrongBand <= cfg.Scoring.BiasBand {
		return ValidationError{"scoring", "need 0 < bias_band < strong_band"}
	}

	// === Cycle ===
	c := cfg.Cycle
	if !(c.EarlyMax < c.MidMax && c.MidMax < c.SubBandMax && c.SubBandMax <= c.DownturnMin) {
		return ValidationError{"cycle", "composite bands must be strictly ordered"}
	}
	switch c.SubBandPhase {
	case contracts.PhaseMid, contracts.PhaseLate, contracts.PhasePeaking:
	default:
		return ValidationError{"cycle.sub_band_phase", "must be MID, LATE, or PEAKING"}
	}
	for name, w := range c.ComponentWeights {
		if w < 0 {
			return ValidationError{"cycle.component_weights." + name, "must be >= 0"}
		}
	}

	// === Quality ===
	q := cfg.Quality
	if q.MinLookback50DMA <= 0 || q.MinLookback200DMA <= q.MinLookback50DMA {
		return ValidationError{"quality", "need 0 < min_lookback_50dma < min_lookback_200dma"}
	}
	if q.NaNCapFraction <= 0 || q.NaNDemoteFraction <= q.NaNCapFraction || q.NaNDemoteFraction > 1 {
		return ValidationError{"quality", "need 0 < nan_cap_fraction < nan_demote_fraction <= 1"}
	}
	if q.NewsConfidenceScale <= 0 || q.NewsConfidenceScale > 1 {
		return ValidationError{"quality.news_confidence_scale", "must be in (0, 1]"}
	}

	// === Portfolio ===
	p := cfg.Portfolio
	for bucket, limit := range p.BucketLimits {
		if !isKnownBucket(bucket) {
			return ValidationError{"portfolio.bucket_limits", fmt.Sprintf("unknown bucket %q", bucket)}
		}
		if limit <= 0 || limit > 1 {
			return ValidationError{"portfolio.bucket_limits." + string(bucket), "must be in (0, 1]"}
		}
	}
	blend := p.PressureWeight + p.PhaseWeight + p.BucketWeight + p.StoryWeight
	if math.Abs(blend-1.0) > 1e-9 {
		return ValidationError{"portfolio", fmt.Sprintf("risk blend weights must sum to 1, got %.4f", blend)}
	}
	if p.OffenseMaxRisk <= 0 || p.DefenseMinRisk <= p.OffenseMaxRisk {
		return ValidationError{"portfolio", "need 0 < offense_max_risk < defense_min_risk"}
	}

	// === Actions ===
	a := cfg.Actions
	if a.ReduceRisk <= 0 || a.HighUrgencyRisk <= a.ReduceRisk {
		return ValidationError{"actions", "need 0 < reduce_risk < high_urgency_risk"}
	}
	if a.HoldContribution <= 0 || a.TrimContribution <= a.HoldContribution {
		return ValidationError{"actions", "need 0 < hold_contribution < trim_contribution"}
	}

	return nil
}

// BucketLimit returns the configured limit for a bucket, or an error for an
// unknown bucket. 알 수 없는 버킷은 설정 오류로 호출자에 반환
func (c *Config) BucketLimit(bucket contracts.Bucket) (float64, error) {
	if limit, ok := c.Portfolio.BucketLimits[bucket]; ok {
		return limit, nil
	}
	if !isKnownBucket(bucket) {
		return 0, ValidationError{"portfolio.bucket_limits", fmt.Sprintf("unknown bucket %q", bucket)}
	}
	return 1.0, nil // known bucket without an explicit limit is uncapped
}

func isKnownBucket(b contracts.Bucket) bool {
	for _, known := range contracts.KnownBuckets {
		if b == known {
			return true
		}
	}
	return false
}
