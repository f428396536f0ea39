package cycle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
)

func newClassifier() *Classifier {
	return NewClassifier(strategyconfig.Default().Cycle, nil)
}

func snapshot(values map[string]float64) *contracts.IndicatorSnapshot {
	return &contracts.IndicatorSnapshot{
		Ticker:       "MU",
		LookbackDays: 250,
		Values:       values,
	}
}

func TestClassify_QuietSnapshotIsEarly(t *testing.T) {
	c := newClassifier()

	assessment := c.Classify(snapshot(map[string]float64{
		contracts.IndRSI14:  55,
		contracts.IndRet63D: 0.05,
	}), nil)

	assert.Empty(t, assessment.Components)
	assert.Zero(t, assessment.Composite)
	assert.Equal(t, contracts.PhaseEarly, assessment.Phase)
}

func TestClassify_RSIOverheatTiers(t *testing.T) {
	c := newClassifier()

	overbought := c.Classify(snapshot(map[string]float64{contracts.IndRSI14: 72}), nil)
	assert.InDelta(t, 6.6, overbought.Components[contracts.CompRSIOverheat], 1e-9)

	extreme := c.Classify(snapshot(map[string]float64{contracts.IndRSI14: 90}), nil)
	assert.InDelta(t, 60, extreme.Components[contracts.CompRSIOverheat], 1e-9)
}

func TestClassify_PriceExtension(t *testing.T) {
	c := newClassifier()

	strong := c.Classify(snapshot(map[string]float64{contracts.IndRet63D: 0.35}), nil)
	assert.InDelta(t, 46.55, strong.Components[contracts.CompPriceExtension], 1e-9)

	extended := c.Classify(snapshot(map[string]float64{contracts.IndRet63D: 0.6}), nil)
	assert.InDelta(t, 60, extended.Components[contracts.CompPriceExtension], 1e-9)
}

func TestClassify_VolExpansionNeedsBothWindows(t *testing.T) {
	c := newClassifier()

	// 50일 변동성이 없으면 비활성
	missing := c.Classify(snapshot(map[string]float64{
		contracts.IndVolatility20D: 0.5,
		contracts.IndVolatility50D: math.NaN(),
	}), nil)
	assert.NotContains(t, missing.Components, contracts.CompVolExpansion)

	active := c.Classify(snapshot(map[string]float64{
		contracts.IndVolatility20D: 0.45,
		contracts.IndVolatility50D: 0.30,
	}), nil)
	assert.InDelta(t, 100, active.Components[contracts.CompVolExpansion], 1)
}

func TestClassify_MomentumVolDivergence(t *testing.T) {
	c := newClassifier()

	assessment := c.Classify(snapshot(map[string]float64{
		contracts.IndRet21D:        0.01,
		contracts.IndVolatility20D: 0.4,
	}), nil)

	assert.InDelta(t, 79, assessment.Components[contracts.CompMomentumVolDivg], 1e-9)
}

func TestClassify_NewsComponents(t *testing.T) {
	c := newClassifier()

	assessment := c.Classify(snapshot(nil), &contracts.HeadlineAggregate{
		Total:          12,
		CycleRiskScore: 70,
		CapexMentions:  4,
	})

	assert.InDelta(t, 70, assessment.Components[contracts.CompNegativeNews], 1e-9)
	assert.InDelta(t, 80, assessment.Components[contracts.CompCapexMentions], 1e-9)
	assert.Contains(t, assessment.KeySignals, "Negative cycle keywords in news")
}

func TestClassify_PhaseBands(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		composite float64
		want      contracts.CyclePhase
	}{
		{0, contracts.PhaseEarly},
		{19.9, contracts.PhaseEarly},
		{20, contracts.PhaseMid},
		{39.9, contracts.PhaseMid},
		{40, contracts.PhaseLate}, // sub-band은 기본값으로 LATE에 합산
		{59.9, contracts.PhaseLate},
		{60, contracts.PhaseLate},
		{79.9, contracts.PhaseLate},
		{80, contracts.PhaseDownturn},
		{100, contracts.PhaseDownturn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.phase(tt.composite), "composite %v", tt.composite)
	}
}

func TestClassify_SubBandConfigurable(t *testing.T) {
	cfg := strategyconfig.Default().Cycle
	cfg.SubBandPhase = contracts.PhasePeaking
	c := NewClassifier(cfg, nil)

	assert.Equal(t, contracts.PhasePeaking, c.phase(50))
	assert.Equal(t, contracts.PhaseLate, c.phase(70))
}

func TestClassify_ConfidenceMonotone(t *testing.T) {
	c := newClassifier()

	one := c.confidence(map[string]float64{contracts.CompRSIOverheat: 40})
	three := c.confidence(map[string]float64{
		contracts.CompRSIOverheat:    40,
		contracts.CompPriceExtension: 50,
		contracts.CompVolExpansion:   60,
	})

	assert.Greater(t, three, one)
	assert.LessOrEqual(t, three, 100.0)
}

func TestClassify_TransitionRiskBands(t *testing.T) {
	c := newClassifier()

	// 밴드 경계 근처에서 리스크가 가속
	assert.Zero(t, c.transitionRisk(10))
	assert.InDelta(t, 15, c.transitionRisk(55), 1e-9)
	assert.InDelta(t, 25, c.transitionRisk(70), 1e-9)
	assert.InDelta(t, 100, c.transitionRisk(90), 1e-9)
}

func TestTopComponents(t *testing.T) {
	assessment := &contracts.CycleAssessment{
		Components: map[string]float64{
			contracts.CompRSIOverheat:    30,
			contracts.CompPriceExtension: 80,
			contracts.CompVolExpansion:   50,
		},
	}

	top := TopComponents(assessment, 2)
	assert.Equal(t, []string{contracts.CompPriceExtension, contracts.CompVolExpansion}, top)
}
