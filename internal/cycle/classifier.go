package cycle

import (
	"fmt"
	"math"
	"sort"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// Classifier maps weighted cycle components to a discrete phase with a
// per-stock transition risk.
// ⭐ SSOT: 사이클 국면 판정은 여기서만
type Classifier struct {
	cfg    strategyconfig.Cycle
	logger *logger.Logger
}

// NewClassifier creates a classifier with the given band policy.
func NewClassifier(cfg strategyconfig.Cycle, log *logger.Logger) *Classifier {
	return &Classifier{
		cfg:    cfg,
		logger: log,
	}
}

// Classify computes the cycle components from the snapshot and headline
// aggregate, then maps the weighted composite to a phase. A component that
// does not activate reads 0 and is excluded from the composite average.
func (c *Classifier) Classify(
	snap *contracts.IndicatorSnapshot,
	news *contracts.HeadlineAggregate,
) *contracts.CycleAssessment {
	components := map[string]float64{}
	var keySignals []string

	// 1. Technical overheating (RSI)
	if rsi, ok := snap.Get(contracts.IndRSI14); ok {
		switch {
		case rsi > 75:
			components[contracts.CompRSIOverheat] = clip((rsi-75)*4, 0, 100)
			keySignals = append(keySignals, fmt.Sprintf("RSI extremely overbought (%.1f)", rsi))
		case rsi > 70:
			components[contracts.CompRSIOverheat] = clip((rsi-70)*3.3, 0, 100)
			keySignals = append(keySignals, fmt.Sprintf("RSI overbought (%.1f)", rsi))
		}
	}

	// 2. Price extension (3mo return)
	if ret63, ok := snap.Get(contracts.IndRet63D); ok {
		switch {
		case ret63 > 0.5:
			components[contracts.CompPriceExtension] = clip(ret63*100, 0, 100)
			keySignals = append(keySignals, fmt.Sprintf("Extended gains (%+.1f%%)", ret63*100))
		case ret63 > 0.3:
			components[contracts.CompPriceExtension] = clip(ret63*133, 0, 100)
			keySignals = append(keySignals, fmt.Sprintf("Strong gains (%+.1f%%)", ret63*100))
		}
	}

	// 3. News shift to negative cycle keywords
	if news != nil && news.Total > 0 {
		components[contracts.CompNegativeNews] = clip(news.CycleRiskScore, 0, 100)
		if news.CycleRiskScore > 60 {
			keySignals = append(keySignals, "Negative cycle keywords in news")
		}
	}

	// 4. Volatility regime shift
	vol20, ok20 := snap.Get(contracts.IndVolatility20D)
	vol50, ok50 := snap.Get(contracts.IndVolatility50D)
	if ok20 && ok50 && vol50 > 0 && vol20 > vol50*1.3 {
		components[contracts.CompVolExpansion] = clip((vol20/vol50-1)*333, 0, 100)
		keySignals = append(keySignals, "Volatility expansion without price progress")
	}

	// 5. Capex expansion headlines (late-cycle behavior)
	if news != nil && news.CapexMentions > 2 {
		components[contracts.CompCapexMentions] = clip(float64(news.CapexMentions)*20, 0, 100)
		keySignals = append(keySignals, fmt.Sprintf("Capex expansion headlines (%d)", news.CapexMentions))
	}

	// 6. Momentum vs volatility divergence
	if ret21, ok := snap.Get(contracts.IndRet21D); ok && ok20 {
		momentum := math.Abs(ret21)
		if momentum < 0.05 && vol20 > 0.3 {
			components[contracts.CompMomentumVolDivg] = clip(vol20*200-momentum*100, 0, 100)
			keySignals = append(keySignals, "High volatility with low momentum")
		}
	}

	composite := c.composite(components)
	phase := c.phase(composite)

	assessment := &contracts.CycleAssessment{
		Ticker:         snap.Ticker,
		Components:     components,
		Composite:      composite,
		Phase:          phase,
		Confidence:     c.confidence(components),
		TransitionRisk: c.transitionRisk(composite),
		KeySignals:     keySignals,
	}

	if c.logger != nil {
		c.logger.WithFields(map[string]interface{}{
			"ticker":     snap.Ticker,
			"composite":  composite,
			"phase":      phase,
			"components": len(components),
		}).Debug("Classified cycle phase")
	}

	return assessment
}

// composite is the weighted average over active components. No active
// component means composite 0 (early cycle, nothing overheating).
func (c *Classifier) composite(components map[string]float64) float64 {
	sum := 0.0
	weightSum := 0.0
	for name, value := range components {
		w, ok := c.cfg.ComponentWeights[name]
		if !ok {
			w = 1
		}
		sum += value * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return clip(sum/weightSum, 0, 100)
}

// phase maps the composite to the discrete band. The [mid_max, sub_band_max)
// range is policy-configurable; the default folds it into LATE.
func (c *Classifier) phase(composite float64) contracts.CyclePhase {
	switch {
	case composite < c.cfg.EarlyMax:
		return contracts.PhaseEarly
	case composite < c.cfg.MidMax:
		return contracts.PhaseMid
	case composite < c.cfg.SubBandMax:
		return c.cfg.SubBandPhase
	case composite < c.cfg.DownturnMin:
		return contracts.PhaseLate
	default:
		return contracts.PhaseDownturn
	}
}

// confidence rises with the number of active components and the margin of
// the strongest one.
func (c *Classifier) confidence(components map[string]float64) float64 {
	if len(components) == 0 {
		return 30 // 활성 컴포넌트 없음 → 낮은 기본 확신도
	}

	top := 0.0
	for _, v := range components {
		if v > top {
			top = v
		}
	}
	return clip(30+10*float64(len(components))+0.3*top, 0, 100)
}

// transitionRisk estimates proximity to a phase rollover. The formula is
// banded on the composite so risk accelerates near the band edges.
func (c *Classifier) transitionRisk(composite float64) float64 {
	switch {
	case composite >= c.cfg.DownturnMin:
		return clip(composite*1.2, 0, 100)
	case composite >= c.cfg.SubBandMax:
		return clip((composite-c.cfg.SubBandMax)*2.5, 0, 100)
	case composite >= c.cfg.MidMax:
		return clip((composite-50)*3, 0, 100)
	default:
		return clip((composite-c.cfg.MidMax)*1.5, 0, 100)
	}
}

// TopComponents returns component names ranked by reading, strongest first.
func TopComponents(assessment *contracts.CycleAssessment, n int) []string {
	names := make([]string, 0, len(assessment.Components))
	for name := range assessment.Components {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		vi, vj := assessment.Components[names[i]], assessment.Components[names[j]]
		if vi != vj {
			return vi > vj
		}
		return names[i] < names[j]
	})
	if n < len(names) {
		names = names[:n]
	}
	return names
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
