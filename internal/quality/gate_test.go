package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwpark/cyclewatch/internal/clusters"
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
)

func newGate() *Gate {
	return NewGate(strategyconfig.Default().Quality, nil)
}

func fullSnapshot(lookback int) *contracts.IndicatorSnapshot {
	values := map[string]float64{}
	for _, name := range contracts.KeyIndicators {
		values[name] = 0.1
	}
	return &contracts.IndicatorSnapshot{
		Ticker:       "MU",
		LookbackDays: lookback,
		Values:       values,
	}
}

func richNews() *contracts.HeadlineAggregate {
	return &contracts.HeadlineAggregate{Total: 25, Positive: 10, EffectivenessScore: 60}
}

func TestAssess_CleanDataNoRestrictions(t *testing.T) {
	g := newGate()

	r := g.Assess(fullSnapshot(250), richNews())

	assert.False(t, r.Any())
	assert.Empty(t, r.Reasons)
}

func TestAssess_ShortLookback(t *testing.T) {
	g := newGate()

	r := g.Assess(fullSnapshot(45), richNews())
	assert.True(t, r.Disable50DMA)
	assert.True(t, r.Disable200DMA)

	r = g.Assess(fullSnapshot(120), richNews())
	assert.False(t, r.Disable50DMA)
	assert.True(t, r.Disable200DMA)
}

func TestAssess_NaNThresholds(t *testing.T) {
	g := newGate()

	snap := fullSnapshot(250)
	// 키 지표의 40%를 NaN으로
	nanCount := int(math.Ceil(float64(len(contracts.KeyIndicators)) * 0.4))
	for i := 0; i < nanCount; i++ {
		snap.Values[contracts.KeyIndicators[i]] = math.NaN()
	}

	r := g.Assess(snap, richNews())
	assert.True(t, r.CapConfidence)
	assert.False(t, r.DemoteStrongBias, "0.4 fraction caps but does not demote")

	// 60% NaN이면 demote까지
	nanCount = int(math.Ceil(float64(len(contracts.KeyIndicators)) * 0.6))
	for i := 0; i < nanCount; i++ {
		snap.Values[contracts.KeyIndicators[i]] = math.NaN()
	}
	r = g.Assess(snap, richNews())
	assert.True(t, r.CapConfidence)
	assert.True(t, r.DemoteStrongBias)
}

func TestAssess_HeadlineVolume(t *testing.T) {
	g := newGate()

	tests := []struct {
		total, positive                   int
		disableNews, reduceConf, noGoodNews bool
	}{
		{25, 10, false, false, false},
		{8, 5, false, true, false},
		{3, 3, true, true, false},
		{25, 2, false, false, true},
		{0, 0, true, true, true},
	}

	for _, tt := range tests {
		r := g.Assess(fullSnapshot(250), &contracts.HeadlineAggregate{
			Total:    tt.total,
			Positive: tt.positive,
		})
		assert.Equal(t, tt.disableNews, r.DisableNewsRules, "total=%d", tt.total)
		assert.Equal(t, tt.reduceConf, r.ReduceNewsConf, "total=%d", tt.total)
		assert.Equal(t, tt.noGoodNews, r.DisableGoodNews, "positive=%d", tt.positive)
	}
}

func TestAssess_NilNews(t *testing.T) {
	g := newGate()

	r := g.Assess(fullSnapshot(250), nil)
	assert.True(t, r.DisableNewsRules)
	assert.True(t, r.DisableGoodNews)
	assert.True(t, r.ReduceNewsConf)
}

func TestFilterClusters_RemovesRestrictedMatches(t *testing.T) {
	g := newGate()

	results := []contracts.ClusterResult{
		{
			Name:      clusters.ClusterTrendDecay,
			Triggered: true,
			Strength:  0.9,
			Matched: []contracts.MatchedSignal{
				{Label: "Trading below 50DMA", Delta: 0.4, NeedsSMA50: true},
				{Label: "Bearish trend (50<200)", Delta: 0.4, NeedsSMA200: true},
				{Label: "High volume distribution", Delta: 0.4, FromNews: true},
			},
		},
	}

	r := Restrictions{Disable200DMA: true, DisableNewsRules: true}
	filtered := g.FilterClusters(results, r)

	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Matched, 1)
	assert.Equal(t, "Trading below 50DMA", filtered[0].Matched[0].Label)
	assert.False(t, filtered[0].Triggered, "one remaining match cannot keep the trigger")
	assert.InDelta(t, 0.4, filtered[0].Strength, 1e-9)
}

func TestFilterClusters_GoodNewsSignal(t *testing.T) {
	g := newGate()

	results := []contracts.ClusterResult{
		{
			Name:      clusters.ClusterDistribution,
			Triggered: true,
			Matched: []contracts.MatchedSignal{
				{Label: clusters.LabelGoodNewsNotWorking, Delta: 0.4, FromNews: true},
				{Label: "Frequent gap downs", Delta: 0.2, FromNews: true},
			},
		},
	}

	filtered := g.FilterClusters(results, Restrictions{DisableGoodNews: true})
	require.Len(t, filtered[0].Matched, 1)
	assert.Equal(t, "Frequent gap downs", filtered[0].Matched[0].Label)
}

func TestFilterClusters_Idempotent(t *testing.T) {
	g := newGate()

	results := []contracts.ClusterResult{
		{
			Name:      clusters.ClusterTrendDecay,
			Triggered: true,
			Matched: []contracts.MatchedSignal{
				{Label: "Trading below 50DMA", Delta: 0.4, NeedsSMA50: true},
				{Label: "MA cross threat", Delta: 0.2, NeedsSMA200: true},
				{Label: "Deteriorating momentum", Delta: 0.3},
			},
		},
	}

	r := Restrictions{Disable50DMA: true}
	once := g.FilterClusters(results, r)
	twice := g.FilterClusters(once, r)

	assert.Equal(t, once, twice, "re-gating a gated result must change nothing")
}

func TestApplyToScore_CapsAndDemotes(t *testing.T) {
	g := newGate()

	raw := &contracts.DualScore{
		Ticker:     "MU",
		Confidence: 88,
		Bias:       contracts.BiasStrongSell,
	}

	gated := g.ApplyToScore(raw, Restrictions{CapConfidence: true, DemoteStrongBias: true})

	assert.Equal(t, 50.0, gated.Confidence)
	assert.Equal(t, contracts.BiasSell, gated.Bias)
	// 원본은 그대로
	assert.Equal(t, 88.0, raw.Confidence)
	assert.Equal(t, contracts.BiasStrongSell, raw.Bias)
}

func TestApplyToScore_NewsConfidenceCap(t *testing.T) {
	g := newGate()

	raw := &contracts.DualScore{Confidence: 90, Bias: contracts.BiasBuy}
	gated := g.ApplyToScore(raw, Restrictions{ReduceNewsConf: true})

	assert.InDelta(t, 70, gated.Confidence, 1e-9)
	assert.Equal(t, contracts.BiasBuy, gated.Bias)
}

func TestApplyToScore_Idempotent(t *testing.T) {
	g := newGate()

	raw := &contracts.DualScore{Confidence: 95, Bias: contracts.BiasStrongBuy}
	r := Restrictions{CapConfidence: true, ReduceNewsConf: true, DemoteStrongBias: true}

	once := g.ApplyToScore(raw, r)
	twice := g.ApplyToScore(once, r)

	assert.Equal(t, once, twice)
}
