package contracts

import "math"

// =============================================================================
// Indicator Snapshot
// =============================================================================

// Indicator name constants
// ⭐ SSOT: 지표 키 이름은 여기서만 정의
const (
	IndRSI14          = "rsi_14"
	IndRet5D          = "ret_5d"
	IndRet21D         = "ret_21d"
	IndRet63D         = "ret_63d"
	IndTrend50200     = "trend_50_200" // +1 bullish, 0 neutral, -1 bearish
	IndPriceVsSMA50   = "price_vs_sma_50"
	IndPriceVsSMA200  = "price_vs_sma_200"
	IndPriceVsHigh20D = "price_vs_high_20d"
	IndPosition20D    = "position_20d_high" // 0 = at 20D low, 1 = at 20D high
	IndVolumeZ        = "volume_z_score"
	IndVolatility20D  = "volatility_20d"
	IndVolatility50D  = "volatility_50d"
	IndATRPct         = "atr_pct"
	IndDrawdown       = "current_drawdown"
	IndDownsideDev    = "downside_deviation"
)

// KeyIndicators are the indicators used for data quality scoring.
var KeyIndicators = []string{
	IndRSI14, IndRet21D, IndRet63D, IndTrend50200,
	IndPriceVsSMA50, IndPriceVsSMA200, IndVolumeZ,
	IndVolatility20D, IndVolatility50D, IndATRPct, IndDrawdown,
}

// IndicatorSnapshot is an immutable set of precomputed indicators for one
// ticker. Missing values are stored as NaN or simply absent; both are
// treated the same by Get.
// ⭐ SSOT: 외부 데이터 계층에서 생성, 코어에서는 읽기 전용
type IndicatorSnapshot struct {
	Ticker       string             `json:"ticker"`
	LookbackDays int                `json:"lookback_days"`
	Values       map[string]float64 `json:"values"`
}

// Get returns the named indicator value. ok is false when the indicator is
// absent or NaN, so rules can treat both cases as "missing" uniformly.
func (s *IndicatorSnapshot) Get(name string) (float64, bool) {
	if s == nil || s.Values == nil {
		return 0, false
	}
	v, exists := s.Values[name]
	if !exists || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// NaNFraction returns the fraction of the given indicator names that are
// missing from the snapshot.
func (s *IndicatorSnapshot) NaNFraction(names []string) float64 {
	if len(names) == 0 {
		return 0
	}
	missing := 0
	for _, name := range names {
		if _, ok := s.Get(name); !ok {
			missing++
		}
	}
	return float64(missing) / float64(len(names))
}

// =============================================================================
// Headline Aggregate
// =============================================================================

// HeadlineAggregate summarizes headline-derived signals for one ticker.
// Produced by the news collaborator; the scoring core never sees raw
// headlines, only this aggregate.
type HeadlineAggregate struct {
	Ticker   string `json:"ticker"`
	Total    int    `json:"total"`    // 전체 헤드라인 수
	Positive int    `json:"positive"` // 긍정 헤드라인 수

	// Lexicon sentiment sum across headlines (positive minus negative hits).
	SentimentTotal float64 `json:"sentiment_total"`

	// "Good news not working" reaction stats, from forward-return pass/fail
	// of positive headlines.
	EffectivenessScore  float64 `json:"effectiveness_score"` // 0-100, lower = distribution
	FailureRate         float64 `json:"failure_rate"`        // 0-1
	ConsecutiveFailures int     `json:"consecutive_failures"`

	// Price-reaction behavior around news.
	HighVolumeWinRate   float64 `json:"high_volume_win_rate"`  // 0-1
	FailedBreakoutRate  float64 `json:"failed_breakout_rate"`  // 0-1
	AvgIntradayWeakness float64 `json:"avg_intraday_weakness"` // negative = weak closes
	GapDownFrequency    float64 `json:"gap_down_frequency"`    // 0-1

	// Cycle-related headline counts.
	CapexMentions  int     `json:"capex_mentions"`
	CycleRiskScore float64 `json:"cycle_risk_score"` // 0-100, cycle warning keyword share
}
