package strategyconfig

import "github.com/jwpark/cyclewatch/internal/contracts"

// Config는 사이클 스코어링 정책의 전체 설정
// ⭐ SSOT: 가중치/임계값 테이블은 전역이 아니라 이 객체로만 주입
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Clusters  Clusters  `yaml:"clusters" json:"clusters"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Cycle     Cycle     `yaml:"cycle" json:"cycle"`
	Quality   Quality   `yaml:"quality" json:"quality"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Actions   Actions   `yaml:"actions" json:"actions"`
}

// Meta 메타 정보
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// Clusters 시그널 클러스터 가중치 (카탈로그 이름 기준)
type Clusters struct {
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// Scoring dual score 산출 파라미터
type Scoring struct {
	// Bias bands on the differential (opportunity - sell risk).
	StrongBand float64 `yaml:"strong_band" json:"strong_band"` // >= STRONG_BUY / <= -STRONG_SELL
	BiasBand   float64 `yaml:"bias_band" json:"bias_band"`     // >= BUY / <= -SELL

	// Confidence shape: avg strength x triggered share, plus differential term.
	DiffWeight float64 `yaml:"diff_weight" json:"diff_weight"`
}

// Cycle 사이클 국면 분류 파라미터
type Cycle struct {
	// Component weights for the composite (equal by default).
	ComponentWeights map[string]float64 `yaml:"component_weights" json:"component_weights"`

	// Composite bands: <early EARLY, <mid MID, <subBandEnd sub-band,
	// <downturn LATE, else DOWNTURN.
	EarlyMax    float64 `yaml:"early_max" json:"early_max"`       // 20
	MidMax      float64 `yaml:"mid_max" json:"mid_max"`           // 40
	SubBandMax  float64 `yaml:"sub_band_max" json:"sub_band_max"` // 60
	DownturnMin float64 `yaml:"downturn_min" json:"downturn_min"` // 80

	// The 40-60 composite range is ambiguous in the source policy; it is a
	// configurable sub-band, folded into LATE by default.
	SubBandPhase contracts.CyclePhase `yaml:"sub_band_phase" json:"sub_band_phase"`
}

// Quality 데이터 품질 게이트 임계값
type Quality struct {
	MinLookback50DMA    int     `yaml:"min_lookback_50dma" json:"min_lookback_50dma"`       // 60
	MinLookback200DMA   int     `yaml:"min_lookback_200dma" json:"min_lookback_200dma"`     // 210
	NaNCapFraction      float64 `yaml:"nan_cap_fraction" json:"nan_cap_fraction"`           // 0.3
	NaNDemoteFraction   float64 `yaml:"nan_demote_fraction" json:"nan_demote_fraction"`     // 0.5
	ConfidenceCap       float64 `yaml:"confidence_cap" json:"confidence_cap"`               // 50
	MinPositiveNews     int     `yaml:"min_positive_news" json:"min_positive_news"`         // 3
	MinHeadlines        int     `yaml:"min_headlines" json:"min_headlines"`                 // 5
	MinHeadlinesFull    int     `yaml:"min_headlines_full" json:"min_headlines_full"`       // 10
	NewsConfidenceScale float64 `yaml:"news_confidence_scale" json:"news_confidence_scale"` // 0.7
}

// Portfolio 버킷 한도와 리스크 블렌드
type Portfolio struct {
	BucketLimits map[contracts.Bucket]float64 `yaml:"bucket_limits" json:"bucket_limits"`

	// Transition risk blend weights; must sum to 1.
	PressureWeight  float64 `yaml:"pressure_weight" json:"pressure_weight"`   // 0.35
	PhaseWeight     float64 `yaml:"phase_weight" json:"phase_weight"`         // 0.25
	BucketWeight    float64 `yaml:"bucket_weight" json:"bucket_weight"`       // 0.20
	StoryWeight     float64 `yaml:"story_weight" json:"story_weight"`         // 0.20

	// Mode thresholds.
	OffenseMaxRisk float64 `yaml:"offense_max_risk" json:"offense_max_risk"` // 30
	DefenseMinRisk float64 `yaml:"defense_min_risk" json:"defense_min_risk"` // 60
}

// Actions 액션 생성 임계값
type Actions struct {
	ReduceRisk       float64 `yaml:"reduce_risk" json:"reduce_risk"`               // 70
	HighUrgencyRisk  float64 `yaml:"high_urgency_risk" json:"high_urgency_risk"`   // 80
	OverageTolerance float64 `yaml:"overage_tolerance" json:"overage_tolerance"`   // 0.05
	TrimContribution float64 `yaml:"trim_contribution" json:"trim_contribution"`   // 3.0
	HoldContribution float64 `yaml:"hold_contribution" json:"hold_contribution"`   // 1.5
	AddOpportunity   float64 `yaml:"add_opportunity" json:"add_opportunity"`       // 60
	AddMaxRisk       float64 `yaml:"add_max_risk" json:"add_max_risk"`             // 40
}

// Default returns the baseline policy matching the original engine.
func Default() *Config {
	return &Config{
		Meta: Meta{
			PolicyID: "semi_cycle_v1",
			Version:  "1.0",
		},
		Clusters: Clusters{
			Weights: map[string]float64{
				"Technical Momentum":      0.35,
				"Value/Reversal":          0.25,
				"Breakout Potential":      0.20,
				"Technical Overheating":   0.35,
				"Trend Deterioration":     0.30,
				"Distribution Behavior":   0.25,
				"Volatility Regime Shift": 0.20,
			},
		},
		Scoring: Scoring{
			StrongBand: 40,
			BiasBand:   15,
			DiffWeight: 0.2,
		},
		Cycle: Cycle{
			ComponentWeights: map[string]float64{
				contracts.CompRSIOverheat:     1,
				contracts.CompPriceExtension:  1,
				contracts.CompNegativeNews:    1,
				contracts.CompVolExpansion:    1,
				contracts.CompCapexMentions:   1,
				contracts.CompMomentumVolDivg: 1,
			},
			EarlyMax:     20,
			MidMax:       40,
			SubBandMax:   60,
			DownturnMin:  80,
			SubBandPhase: contracts.PhaseLate,
		},
		Quality: Quality{
			MinLookback50DMA:    60,
			MinLookback200DMA:   210,
			NaNCapFraction:      0.3,
			NaNDemoteFraction:   0.5,
			ConfidenceCap:       50,
			MinPositiveNews:     3,
			MinHeadlines:        5,
			MinHeadlinesFull:    10,
			NewsConfidenceScale: 0.7,
		},
		Portfolio: Portfolio{
			BucketLimits: map[contracts.Bucket]float64{
				contracts.BucketMemory:      0.18,
				contracts.BucketEquipment:   0.25,
				contracts.BucketEDA:         0.15,
				contracts.BucketAnalog:      0.20,
				contracts.BucketFoundry:     0.15,
				contracts.BucketPower:       0.10,
				contracts.BucketSpeculative: 0.05,
				contracts.BucketCash:        1.00,
			},
			PressureWeight: 0.35,
			PhaseWeight:    0.25,
			BucketWeight:   0.20,
			StoryWeight:    0.20,
			OffenseMaxRisk: 30,
			DefenseMinRisk: 60,
		},
		Actions: Actions{
			ReduceRisk:       70,
			HighUrgencyRisk:  80,
			OverageTolerance: 0.05,
			TrimContribution: 3.0,
			HoldContribution: 1.5,
			AddOpportunity:   60,
			AddMaxRisk:       40,
		},
	}
}
