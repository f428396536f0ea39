package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
)

func newRiskAggregator() *RiskAggregator {
	return NewRiskAggregator(strategyconfig.Default().Portfolio, nil)
}

func TestRiskBlend_Scenario(t *testing.T) {
	a := newRiskAggregator()

	// 압력항 17, R_phase 50, R_conc 20, R_story 58을 만드는 구성:
	//   pressure = 0.20*38.5 + 0.08*10 = 8.5 → pressure_risk 17
	//   peaking weight 0.20 → 50
	//   Memory 0.28 vs 한도 0.18 → overage 0.10 → 20
	//   AI_MEMORY story weight 0.29 → 58
	positions := []contracts.PositionInput{
		{Ticker: "MU", Weight: 0.20, Bucket: contracts.BucketMemory, StoryTags: []string{"AI_MEMORY"}},
		{Ticker: "WDC", Weight: 0.08, Bucket: contracts.BucketMemory, StoryTags: []string{"AI_MEMORY"}},
		{Ticker: "TXN", Weight: 0.01, Bucket: contracts.BucketAnalog, StoryTags: []string{"AI_MEMORY"}},
		{Ticker: "CASH", Weight: 0.71, Bucket: contracts.BucketCash},
	}
	analyses := map[string]*contracts.StockCycleAnalysis{
		"MU":  {Ticker: "MU", CyclePressure: 38.5, Phase: contracts.PhasePeaking},
		"WDC": {Ticker: "WDC", CyclePressure: 10, Phase: contracts.PhaseLate},
		"TXN": {Ticker: "TXN", CyclePressure: 0, Phase: contracts.PhaseMid},
	}

	result, err := a.Aggregate(positions, analyses, 1_000_000)
	require.NoError(t, err)

	assert.InDelta(t, 8.5, result.Pressure, 1e-9)
	assert.InDelta(t, 17, result.PressureRisk, 1e-9)
	assert.InDelta(t, 50, result.PhaseConcRisk, 1e-9)  // 0.20 * 250
	assert.InDelta(t, 20, result.BucketConcRisk, 1e-9) // 0.10 * 200
	assert.InDelta(t, 58, result.StoryConcRisk, 1e-9)  // 0.29 * 200

	// 0.35*17 + 0.25*50 + 0.20*20 + 0.20*58 = 34.05
	assert.InDelta(t, 34.05, result.TransitionRisk, 1e-9)
	assert.Equal(t, contracts.ModeBalanced, result.Mode)
}

func TestRiskBlend_BucketAtLimitNoOverage(t *testing.T) {
	a := newRiskAggregator()

	// 정확히 한도(18%)에 있는 버킷은 overage 0
	positions := []contracts.PositionInput{
		{Ticker: "MU", Weight: 0.18, Bucket: contracts.BucketMemory},
	}
	analyses := map[string]*contracts.StockCycleAnalysis{
		"MU": {Ticker: "MU", CyclePressure: 10, Phase: contracts.PhaseMid},
	}

	result, err := a.Aggregate(positions, analyses, 100_000)
	require.NoError(t, err)

	assert.Zero(t, result.BucketConcRisk)
	assert.Zero(t, result.Buckets[contracts.BucketMemory].Overage)
}

func TestRiskBlend_EmptyPortfolioNeutral(t *testing.T) {
	a := newRiskAggregator()

	result, err := a.Aggregate(nil, nil, 0)
	require.NoError(t, err)

	assert.Zero(t, result.Pressure)
	assert.Equal(t, contracts.PhaseMid, result.Phase)
	assert.Zero(t, result.TransitionRisk)
	assert.Equal(t, contracts.ModeOffense, result.Mode)
}

func TestRiskBlend_CashHasZeroPressure(t *testing.T) {
	a := newRiskAggregator()

	positions := []contracts.PositionInput{
		{Ticker: "CASH", Weight: 1.0, Bucket: contracts.BucketCash},
	}
	// 현금에 분석 결과가 있어도 압력 기여는 0이어야 함
	analyses := map[string]*contracts.StockCycleAnalysis{
		"CASH": {Ticker: "CASH", CyclePressure: 99, Phase: contracts.PhaseMid},
	}

	result, err := a.Aggregate(positions, analyses, 100_000)
	require.NoError(t, err)
	assert.Zero(t, result.Pressure)
}

func TestMode_Thresholds(t *testing.T) {
	a := newRiskAggregator()

	assert.Equal(t, contracts.ModeOffense, a.mode(20, contracts.PhaseEarly))
	assert.Equal(t, contracts.ModeOffense, a.mode(29.9, contracts.PhaseMid))
	assert.Equal(t, contracts.ModeBalanced, a.mode(20, contracts.PhaseLate), "low risk but late phase")
	assert.Equal(t, contracts.ModeBalanced, a.mode(45, contracts.PhaseMid))
	assert.Equal(t, contracts.ModeDefense, a.mode(61, contracts.PhaseEarly))
	assert.Equal(t, contracts.ModeDefense, a.mode(10, contracts.PhasePeaking))
	assert.Equal(t, contracts.ModeDefense, a.mode(10, contracts.PhaseDownturn))
}

func TestRiskBlend_StoryConcentration(t *testing.T) {
	a := newRiskAggregator()

	positions := []contracts.PositionInput{
		{Ticker: "NVDA", Weight: 0.10, Bucket: contracts.BucketSpeculative, StoryTags: []string{"AI_CAPEX", "DATACENTER"}},
		{Ticker: "AMAT", Weight: 0.15, Bucket: contracts.BucketEquipment, StoryTags: []string{"AI_CAPEX"}},
		{Ticker: "TXN", Weight: 0.10, Bucket: contracts.BucketAnalog},
	}

	result, err := a.Aggregate(positions, map[string]*contracts.StockCycleAnalysis{}, 100_000)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, result.StoryWeights["AI_CAPEX"], 1e-9)
	assert.InDelta(t, 0.10, result.StoryWeights["DATACENTER"], 1e-9)
	assert.InDelta(t, 0.25, result.MaxStoryWeight, 1e-9)
	assert.InDelta(t, 50, result.StoryConcRisk, 1e-9)
}
