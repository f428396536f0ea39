package clusters

import (
	"github.com/jwpark/cyclewatch/internal/contracts"
)

// =============================================================================
// Signal Cluster Catalog
// =============================================================================

// RuleInput bundles everything a rule predicate may look at.
type RuleInput struct {
	Snap *contracts.IndicatorSnapshot
	News *contracts.HeadlineAggregate
}

// Rule is one predicate inside a cluster with a fixed strength contribution.
// Requires lists the snapshot indicators that must be present (non-NaN) for
// the rule to be evaluated at all; a missing requirement makes the rule
// non-matching, never an error. Match is only called once Requires passed,
// so predicates can read indicators without re-checking presence.
type Rule struct {
	Label       string
	Delta       float64
	Requires    []string
	NeedsNews   bool
	NeedsSMA50  bool
	NeedsSMA200 bool
	Match       func(in RuleInput) bool
}

// Cluster is a named, weighted group of rules jointly signaling opportunity
// or sell-risk. The catalog is declarative data: adding a cluster never
// touches evaluator logic.
type Cluster struct {
	Name     string
	Category contracts.ClusterCategory
	Weight   float64
	Rules    []Rule
}

// LabelGoodNewsNotWorking is referenced by the data quality gate: the rule
// is unreliable with too few positive headlines and gets disabled there.
const LabelGoodNewsNotWorking = "Good news not working"

// Catalog cluster names.
// ⭐ SSOT: 클러스터 이름은 여기서만 정의 (설정 가중치 키와 일치해야 함)
const (
	ClusterMomentum     = "Technical Momentum"
	ClusterValue        = "Value/Reversal"
	ClusterBreakout     = "Breakout Potential"
	ClusterOverheating  = "Technical Overheating"
	ClusterTrendDecay   = "Trend Deterioration"
	ClusterDistribution = "Distribution Behavior"
	ClusterVolShift     = "Volatility Regime Shift"
)

func get(in RuleInput, name string) float64 {
	v, _ := in.Snap.Get(name)
	return v
}

// DefaultCatalog returns the built-in signal cluster catalog. Tiered
// conditions (e.g. RSI < 30 vs RSI < 35) are modeled as mutually exclusive
// rules so a snapshot matches at most one tier.
func DefaultCatalog() []Cluster {
	return []Cluster{
		// =====================================================================
		// Opportunity clusters
		// =====================================================================
		{
			Name:     ClusterMomentum,
			Category: contracts.CategoryOpportunity,
			Weight:   0.35,
			Rules: []Rule{
				{
					Label:    "Strong 21D momentum",
					Delta:    0.3,
					Requires: []string{contracts.IndRet21D},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndRet21D) > 0.05 },
				},
				{
					Label:    "Moderate 21D momentum",
					Delta:    0.2,
					Requires: []string{contracts.IndRet21D},
					Match: func(in RuleInput) bool {
						r := get(in, contracts.IndRet21D)
						return r > 0.02 && r <= 0.05
					},
				},
				{
					Label:    "RSI oversold (<30)",
					Delta:    0.4,
					Requires: []string{contracts.IndRSI14},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndRSI14) < 30 },
				},
				{
					Label:    "RSI near oversold (<35)",
					Delta:    0.2,
					Requires: []string{contracts.IndRSI14},
					Match: func(in RuleInput) bool {
						rsi := get(in, contracts.IndRSI14)
						return rsi >= 30 && rsi < 35
					},
				},
				{
					Label:       "Bullish trend (50>200)",
					Delta:       0.3,
					Requires:    []string{contracts.IndTrend50200},
					NeedsSMA200: true,
					Match:       func(in RuleInput) bool { return get(in, contracts.IndTrend50200) > 0.5 },
				},
				{
					Label:    "Volume confirms upside",
					Delta:    0.2,
					Requires: []string{contracts.IndVolumeZ, contracts.IndRet5D},
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndVolumeZ) > 1.5 && get(in, contracts.IndRet5D) > 0
					},
				},
			},
		},
		{
			Name:     ClusterValue,
			Category: contracts.CategoryOpportunity,
			Weight:   0.25,
			Rules: []Rule{
				{
					Label:    "Deep drawdown (>25%)",
					Delta:    0.4,
					Requires: []string{contracts.IndDrawdown},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndDrawdown) < -0.25 },
				},
				{
					Label:    "Moderate drawdown (>15%)",
					Delta:    0.2,
					Requires: []string{contracts.IndDrawdown},
					Match: func(in RuleInput) bool {
						dd := get(in, contracts.IndDrawdown)
						return dd < -0.15 && dd >= -0.25
					},
				},
				{
					Label:    "Low volatility regime",
					Delta:    0.2,
					Requires: []string{contracts.IndVolatility20D},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndVolatility20D) < 0.15 },
				},
				{
					Label:    "Near 20D support",
					Delta:    0.2,
					Requires: []string{contracts.IndPosition20D},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndPosition20D) < 0.2 },
				},
				{
					Label:     "Positive news sentiment",
					Delta:     0.3,
					NeedsNews: true,
					Match:     func(in RuleInput) bool { return in.News.SentimentTotal > 2 },
				},
			},
		},
		{
			Name:     ClusterBreakout,
			Category: contracts.CategoryOpportunity,
			Weight:   0.20,
			Rules: []Rule{
				{
					Label:    "Near 20D high",
					Delta:    0.3,
					Requires: []string{contracts.IndPriceVsHigh20D},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndPriceVsHigh20D) >= 0.98 },
				},
				{
					Label:    "Volume surge",
					Delta:    0.3,
					Requires: []string{contracts.IndVolumeZ},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndVolumeZ) > 2.0 },
				},
				{
					Label:    "Volatility expansion",
					Delta:    0.2,
					Requires: []string{contracts.IndVolatility20D, contracts.IndVolatility50D},
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndVolatility20D) > get(in, contracts.IndVolatility50D)*1.2
					},
				},
				{
					Label:    "Momentum acceleration",
					Delta:    0.2,
					Requires: []string{contracts.IndRet5D, contracts.IndRet21D},
					Match: func(in RuleInput) bool {
						r5 := get(in, contracts.IndRet5D)
						return r5 > get(in, contracts.IndRet21D)*2 && r5 > 0
					},
				},
			},
		},

		// =====================================================================
		// Sell-risk clusters
		// =====================================================================
		{
			Name:     ClusterOverheating,
			Category: contracts.CategorySellRisk,
			Weight:   0.35,
			Rules: []Rule{
				{
					Label:    "RSI extremely overbought (>80)",
					Delta:    0.4,
					Requires: []string{contracts.IndRSI14},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndRSI14) > 80 },
				},
				{
					Label:    "RSI overbought (>70)",
					Delta:    0.3,
					Requires: []string{contracts.IndRSI14},
					Match: func(in RuleInput) bool {
						rsi := get(in, contracts.IndRSI14)
						return rsi > 70 && rsi <= 80
					},
				},
				{
					Label:    "Potential RSI divergence",
					Delta:    0.3,
					Requires: []string{contracts.IndRSI14, contracts.IndRet21D},
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndRSI14) > 70 && get(in, contracts.IndRet21D) > 0.1
					},
				},
				{
					Label:    "Extended gains (>50% in 3mo)",
					Delta:    0.3,
					Requires: []string{contracts.IndRet63D},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndRet63D) > 0.5 },
				},
				{
					Label:    "Strong gains (>30% in 3mo)",
					Delta:    0.2,
					Requires: []string{contracts.IndRet63D},
					Match: func(in RuleInput) bool {
						r := get(in, contracts.IndRet63D)
						return r > 0.3 && r <= 0.5
					},
				},
				{
					Label:    "High volatility with gains",
					Delta:    0.2,
					Requires: []string{contracts.IndVolatility20D, contracts.IndRet21D},
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndVolatility20D) > 0.4 && get(in, contracts.IndRet21D) > 0.05
					},
				},
				{
					Label:    "High RSI with low volume",
					Delta:    0.2,
					Requires: []string{contracts.IndRSI14, contracts.IndVolumeZ},
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndRSI14) > 70 && get(in, contracts.IndVolumeZ) < -1
					},
				},
			},
		},
		{
			Name:     ClusterTrendDecay,
			Category: contracts.CategorySellRisk,
			Weight:   0.30,
			Rules: []Rule{
				{
					Label:      "Trading below 50DMA",
					Delta:      0.3,
					Requires:   []string{contracts.IndPriceVsSMA50},
					NeedsSMA50: true,
					Match:      func(in RuleInput) bool { return get(in, contracts.IndPriceVsSMA50) < -0.05 },
				},
				{
					Label:      "50DMA resistance",
					Delta:      0.3,
					Requires:   []string{contracts.IndPriceVsSMA50, contracts.IndRet21D},
					NeedsSMA50: true,
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndPriceVsSMA50) < 0 && get(in, contracts.IndRet21D) < -0.02
					},
				},
				{
					Label:       "Bearish trend (50<200)",
					Delta:       0.4,
					Requires:    []string{contracts.IndTrend50200},
					NeedsSMA200: true,
					Match:       func(in RuleInput) bool { return get(in, contracts.IndTrend50200) < -0.5 },
				},
				{
					Label:       "MA cross threat",
					Delta:       0.2,
					Requires:    []string{contracts.IndPriceVsSMA50, contracts.IndPriceVsSMA200},
					NeedsSMA50:  true,
					NeedsSMA200: true,
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndPriceVsSMA50) < 0 && get(in, contracts.IndPriceVsSMA200) > 0
					},
				},
			},
		},
		{
			// 뉴스 반응 기반 분포(매집 해제) 탐지 — 헤드라인이 부족하면 게이트에서 통째로 비활성화
			Name:     ClusterDistribution,
			Category: contracts.CategorySellRisk,
			Weight:   0.25,
			Rules: []Rule{
				{
					Label:     "High volume distribution",
					Delta:     0.4,
					NeedsNews: true,
					Match:     func(in RuleInput) bool { return in.News.HighVolumeWinRate < 0.3 },
				},
				{
					Label:     "Volume-based selling",
					Delta:     0.2,
					NeedsNews: true,
					Match: func(in RuleInput) bool {
						wr := in.News.HighVolumeWinRate
						return wr >= 0.3 && wr < 0.4
					},
				},
				{
					Label:     "High failed breakout rate",
					Delta:     0.3,
					NeedsNews: true,
					Match:     func(in RuleInput) bool { return in.News.FailedBreakoutRate > 0.3 },
				},
				{
					Label:     "Failed breakout pattern",
					Delta:     0.2,
					NeedsNews: true,
					Match: func(in RuleInput) bool {
						fb := in.News.FailedBreakoutRate
						return fb > 0.2 && fb <= 0.3
					},
				},
				{
					Label:     "Strong intraday weakness",
					Delta:     0.3,
					NeedsNews: true,
					Match:     func(in RuleInput) bool { return in.News.AvgIntradayWeakness < -0.3 },
				},
				{
					Label:     "Intraday selling pressure",
					Delta:     0.2,
					NeedsNews: true,
					Match: func(in RuleInput) bool {
						w := in.News.AvgIntradayWeakness
						return w < -0.2 && w >= -0.3
					},
				},
				{
					Label:     "Frequent gap downs",
					Delta:     0.2,
					NeedsNews: true,
					Match:     func(in RuleInput) bool { return in.News.GapDownFrequency > 0.1 },
				},
				{
					Label:     LabelGoodNewsNotWorking,
					Delta:     0.4,
					NeedsNews: true,
					Match: func(in RuleInput) bool {
						return in.News.EffectivenessScore < 40 ||
							in.News.FailureRate > 0.6 ||
							in.News.ConsecutiveFailures >= 3
					},
				},
			},
		},
		{
			Name:     ClusterVolShift,
			Category: contracts.CategorySellRisk,
			Weight:   0.20,
			Rules: []Rule{
				{
					Label:    "High ATR, flat returns",
					Delta:    0.4,
					Requires: []string{contracts.IndATRPct, contracts.IndRet21D},
					Match: func(in RuleInput) bool {
						r := get(in, contracts.IndRet21D)
						if r < 0 {
							r = -r
						}
						return get(in, contracts.IndATRPct) > 0.05 && r < 0.02
					},
				},
				{
					Label:    "High volatility regime",
					Delta:    0.3,
					Requires: []string{contracts.IndVolatility20D},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndVolatility20D) >= 0.35 },
				},
				{
					Label:    "Elevated volatility",
					Delta:    0.2,
					Requires: []string{contracts.IndVolatility20D},
					Match: func(in RuleInput) bool {
						v := get(in, contracts.IndVolatility20D)
						return v >= 0.25 && v < 0.35
					},
				},
				{
					Label:    "Rapid volatility expansion",
					Delta:    0.3,
					Requires: []string{contracts.IndVolatility20D, contracts.IndVolatility50D},
					Match: func(in RuleInput) bool {
						return get(in, contracts.IndVolatility20D) > get(in, contracts.IndVolatility50D)*1.3
					},
				},
				{
					Label:    "High downside deviation",
					Delta:    0.2,
					Requires: []string{contracts.IndDownsideDev},
					Match:    func(in RuleInput) bool { return get(in, contracts.IndDownsideDev) > 0.02 },
				},
			},
		},
	}
}

// MaxWeight returns the heaviest cluster weight within a category. The dual
// score normalizes against this so one maximal cluster can saturate to 100.
func MaxWeight(catalog []Cluster, category contracts.ClusterCategory) float64 {
	max := 0.0
	for _, c := range catalog {
		if c.Category == category && c.Weight > max {
			max = c.Weight
		}
	}
	return max
}
