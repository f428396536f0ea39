package quality

import (
	"fmt"

	"github.com/jwpark/cyclewatch/internal/clusters"
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// Restrictions records every data quality gate that fired for one ticker.
// Gates are assessed independently and all recorded; they never abort a run.
type Restrictions struct {
	Disable50DMA       bool     `json:"disable_50dma"`
	Disable200DMA      bool     `json:"disable_200dma"`
	CapConfidence      bool     `json:"cap_confidence"`
	DemoteStrongBias   bool     `json:"demote_strong_bias"`
	DisableGoodNews    bool     `json:"disable_good_news"`
	DisableNewsRules   bool     `json:"disable_news_rules"`
	ReduceNewsConf     bool     `json:"reduce_news_conf"`
	NaNFraction        float64  `json:"nan_fraction"`
	Reasons            []string `json:"reasons"`
}

// Any reports whether at least one gate fired.
func (r *Restrictions) Any() bool {
	return r.Disable50DMA || r.Disable200DMA || r.CapConfidence ||
		r.DemoteStrongBias || r.DisableGoodNews || r.DisableNewsRules ||
		r.ReduceNewsConf
}

// Gate assesses data sufficiency and applies the resulting restrictions to
// already-computed results. Gating runs strictly after raw computation; the
// raw inputs are never mutated, so raw and gated stay inspectable side by
// side.
// ⭐ SSOT: 데이터 품질 게이트는 여기서만
type Gate struct {
	cfg    strategyconfig.Quality
	logger *logger.Logger
}

// NewGate creates a gate with the given thresholds.
func NewGate(cfg strategyconfig.Quality, log *logger.Logger) *Gate {
	return &Gate{
		cfg:    cfg,
		logger: log,
	}
}

// Assess inspects lookback length, missing-indicator fraction, and headline
// volume, and records every restriction that applies.
func (g *Gate) Assess(snap *contracts.IndicatorSnapshot, news *contracts.HeadlineAggregate) Restrictions {
	r := Restrictions{}

	if snap.LookbackDays < g.cfg.MinLookback50DMA {
		r.Disable50DMA = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("lookback %dd < %dd: 50DMA rules disabled", snap.LookbackDays, g.cfg.MinLookback50DMA))
	}
	if snap.LookbackDays < g.cfg.MinLookback200DMA {
		r.Disable200DMA = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("lookback %dd < %dd: 200DMA rules disabled", snap.LookbackDays, g.cfg.MinLookback200DMA))
	}

	r.NaNFraction = snap.NaNFraction(contracts.KeyIndicators)
	if r.NaNFraction > g.cfg.NaNCapFraction {
		r.CapConfidence = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("NaN fraction %.2f > %.2f: confidence capped", r.NaNFraction, g.cfg.NaNCapFraction))
	}
	if r.NaNFraction > g.cfg.NaNDemoteFraction {
		r.DemoteStrongBias = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("NaN fraction %.2f > %.2f: STRONG bias demoted", r.NaNFraction, g.cfg.NaNDemoteFraction))
	}

	total, positive := 0, 0
	if news != nil {
		total = news.Total
		positive = news.Positive
	}
	if positive < g.cfg.MinPositiveNews {
		r.DisableGoodNews = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("%d positive headlines < %d: good-news-not-working disabled", positive, g.cfg.MinPositiveNews))
	}
	if total < g.cfg.MinHeadlines {
		r.DisableNewsRules = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("%d headlines < %d: news clusters disabled", total, g.cfg.MinHeadlines))
	}
	if total < g.cfg.MinHeadlinesFull {
		r.ReduceNewsConf = true
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("%d headlines < %d: news confidence reduced", total, g.cfg.MinHeadlinesFull))
	}

	if g.logger != nil && r.Any() {
		g.logger.WithFields(map[string]interface{}{
			"ticker":  snap.Ticker,
			"reasons": len(r.Reasons),
		}).Debug("Data quality restrictions applied")
	}

	return r
}

// FilterClusters removes matched signals whose dependencies the restrictions
// disable, then recomputes trigger and strength per cluster. Filtering an
// already-filtered result is a no-op.
func (g *Gate) FilterClusters(results []contracts.ClusterResult, r Restrictions) []contracts.ClusterResult {
	out := make([]contracts.ClusterResult, 0, len(results))
	for _, res := range results {
		kept := make([]contracts.MatchedSignal, 0, len(res.Matched))
		for _, m := range res.Matched {
			if r.Disable50DMA && m.NeedsSMA50 {
				continue
			}
			if r.Disable200DMA && m.NeedsSMA200 {
				continue
			}
			if r.DisableNewsRules && m.FromNews {
				continue
			}
			if r.DisableGoodNews && m.Label == clusters.LabelGoodNewsNotWorking {
				continue
			}
			kept = append(kept, m)
		}
		res.Matched = kept
		out = append(out, clusters.Retrigger(res))
	}
	return out
}

// ApplyToScore returns a gated copy of the score: confidence capped and
// STRONG bias demoted per the restrictions. Caps only, so reapplying the
// same restrictions changes nothing.
func (g *Gate) ApplyToScore(score *contracts.DualScore, r Restrictions) *contracts.DualScore {
	gated := *score

	if r.CapConfidence && gated.Confidence > g.cfg.ConfidenceCap {
		gated.Confidence = g.cfg.ConfidenceCap
	}
	// 뉴스 표본 부족 → 확신도 상한을 낮춰서 축소 (비활성화 아님)
	if r.ReduceNewsConf {
		newsCap := 100 * g.cfg.NewsConfidenceScale
		if gated.Confidence > newsCap {
			gated.Confidence = newsCap
		}
	}
	if r.DemoteStrongBias {
		gated.Bias = gated.Bias.Demote()
	}

	return &gated
}
