package actions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// Generator turns bucket and portfolio risk rollups into a ranked, scheduled
// action list: bucket-level REDUCE, position-level TRIM/HOLD/ADD.
// ⭐ SSOT: 액션 생성은 여기서만
type Generator struct {
	cfg    strategyconfig.Actions
	logger *logger.Logger
}

// NewGenerator creates an action generator with the given thresholds.
func NewGenerator(cfg strategyconfig.Actions, log *logger.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		logger: log,
	}
}

// Generate produces the full ranked action list for one run. Bucket actions
// come first ordered by urgency, then position actions ordered by priority
// and risk contribution. Output order is deterministic for identical inputs.
func (g *Generator) Generate(
	result *contracts.PortfolioRiskResult,
	positions []contracts.PositionInput,
	analyses map[string]*contracts.StockCycleAnalysis,
) []contracts.Action {
	bucketActions, flagged := g.bucketActions(result)
	positionActions := g.positionActions(result, positions, analyses, flagged)

	all := append(bucketActions, positionActions...)

	if g.logger != nil {
		g.logger.WithFields(map[string]interface{}{
			"bucket_actions":   len(bucketActions),
			"position_actions": len(positionActions),
			"mode":             result.Mode,
		}).Info("Generated actions")
	}

	return all
}

// bucketActions emits REDUCE for buckets past the risk threshold, in PEAKING
// phase, or meaningfully over their weight limit, and ADD for calm buckets
// sitting well under their limit. Returns the flagged bucket set for
// position-level follow-up.
func (g *Generator) bucketActions(result *contracts.PortfolioRiskResult) ([]contracts.Action, map[contracts.Bucket]bool) {
	flagged := map[contracts.Bucket]bool{}
	var out []contracts.Action

	for bucket, agg := range result.Buckets {
		if bucket == contracts.BucketCash {
			continue
		}

		overRisk := agg.TransitionRisk > g.cfg.ReduceRisk
		peaking := agg.Phase == contracts.PhasePeaking
		overLimit := agg.Overage > g.cfg.OverageTolerance

		if !overRisk && !peaking && !overLimit {
			// 한도 50% 미만 + 저위험 버킷은 75%까지 확대 후보
			if agg.TargetMax > 0 && agg.Weight < agg.TargetMax*0.5 &&
				agg.TransitionRisk < g.cfg.AddMaxRisk {
				out = append(out, contracts.Action{
					Bucket:     bucket,
					Kind:       contracts.ActionAdd,
					FromWeight: agg.Weight,
					ToWeight:   agg.TargetMax * 0.75,
					Urgency:    contracts.UrgencyLow,
					Timeframe:  "4-8 weeks",
					Reasons: []string{
						fmt.Sprintf("Under target (%.1f%% of %.1f%% limit)", agg.Weight*100, agg.TargetMax*100),
						fmt.Sprintf("Low transition risk (%.0f)", agg.TransitionRisk),
					},
				})
			}
			continue
		}
		flagged[bucket] = true

		var urgency contracts.Urgency
		var timeframe string
		switch {
		case agg.TransitionRisk > g.cfg.HighUrgencyRisk:
			urgency, timeframe = contracts.UrgencyHigh, "1-2 weeks"
		case overRisk || peaking:
			urgency, timeframe = contracts.UrgencyMedium, "2-4 weeks"
		default:
			urgency, timeframe = contracts.UrgencyLow, "4-8 weeks"
		}

		var reasons []string
		if overRisk {
			reasons = append(reasons, fmt.Sprintf("High transition risk (%.0f)", agg.TransitionRisk))
		}
		if peaking {
			reasons = append(reasons, "Bucket phase is PEAKING")
		}
		if agg.Overage > 0 {
			reasons = append(reasons, fmt.Sprintf("Over limit by %.1f%%", agg.Overage*100))
		}
		if agg.CriticalBreadth > 0.5 {
			reasons = append(reasons, fmt.Sprintf("Critical signal breadth: %.0f%%", agg.CriticalBreadth*100))
		}

		out = append(out, contracts.Action{
			Bucket:     bucket,
			Kind:       contracts.ActionReduce,
			FromWeight: agg.Weight,
			ToWeight:   agg.TargetMax,
			Urgency:    urgency,
			Timeframe:  timeframe,
			Reasons:    reasons,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Urgency.Rank() != out[j].Urgency.Rank() {
			return out[i].Urgency.Rank() < out[j].Urgency.Rank()
		}
		return out[i].Bucket < out[j].Bucket
	})

	return out, flagged
}

// positionActions emits TRIM/HOLD inside flagged buckets and ADD candidates
// in OFFENSE mode, ranked by weight x pressure.
func (g *Generator) positionActions(
	result *contracts.PortfolioRiskResult,
	positions []contracts.PositionInput,
	analyses map[string]*contracts.StockCycleAnalysis,
	flagged map[contracts.Bucket]bool,
) []contracts.Action {
	var out []contracts.Action

	for bucket := range flagged {
		agg, ok := result.Buckets[bucket]
		if !ok {
			continue
		}

		for _, c := range agg.TopContributors {
			if _, ok := analyses[c.Ticker]; !ok {
				continue
			}

			switch {
			case c.Contribution > g.cfg.TrimContribution || len(c.CriticalSignals) >= 2:
				reasons := []string{fmt.Sprintf("Top risk contributor (%.1f)", c.Contribution)}
				if len(c.CriticalSignals) > 0 {
					n := len(c.CriticalSignals)
					if n > 2 {
						n = 2
					}
					reasons = append(reasons, "Critical signals: "+strings.Join(c.CriticalSignals[:n], ", "))
				}
				out = append(out, contracts.Action{
					Bucket:       bucket,
					Ticker:       c.Ticker,
					Kind:         contracts.ActionTrim,
					FromWeight:   c.Weight,
					ToWeight:     c.Weight * 0.5,
					Priority:     1,
					Reasons:      reasons,
					Contribution: c.Contribution,
				})
			case c.Contribution >= g.cfg.HoldContribution:
				out = append(out, contracts.Action{
					Bucket:       bucket,
					Ticker:       c.Ticker,
					Kind:         contracts.ActionHold,
					FromWeight:   c.Weight,
					ToWeight:     c.Weight,
					Priority:     3,
					Reasons:      []string{fmt.Sprintf("Bucket risk elevated; moderate contribution (%.1f)", c.Contribution)},
					Contribution: c.Contribution,
				})
			}
		}
	}

	// ADD는 OFFENSE 모드에서만
	if result.Mode == contracts.ModeOffense {
		for _, pos := range positions {
			analysis, ok := analyses[pos.Ticker]
			if !ok {
				continue
			}
			if analysis.OpportunityTotal > g.cfg.AddOpportunity &&
				analysis.Phase.Rank() <= contracts.PhaseMid.Rank() &&
				analysis.RiskTotal < g.cfg.AddMaxRisk {
				out = append(out, contracts.Action{
					Bucket:     pos.Bucket,
					Ticker:     pos.Ticker,
					Kind:       contracts.ActionAdd,
					FromWeight: pos.Weight,
					ToWeight:   pos.Weight * 1.5,
					Priority:   4,
					Reasons: []string{fmt.Sprintf("Strong opportunity (%.0f) in %s phase",
						analysis.OpportunityTotal, analysis.Phase)},
					Contribution: pos.Weight * analysis.CyclePressure,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		if out[i].Contribution != out[j].Contribution {
			return out[i].Contribution > out[j].Contribution
		}
		return out[i].Ticker < out[j].Ticker
	})

	return out
}
