package brain

import (
	"strings"

	"github.com/jwpark/cyclewatch/internal/clusters"
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/cycle"
	"github.com/jwpark/cyclewatch/internal/quality"
	"github.com/jwpark/cyclewatch/internal/scoring"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// criticalStrength is the minimum gated cluster strength for a triggered
// sell-risk cluster to count as a critical signal.
const criticalStrength = 0.6

// TickerAnalysis carries the raw and gated results for one ticker side by
// side. Gating never mutates the raw results.
type TickerAnalysis struct {
	Ticker       string                        `json:"ticker"`
	RawScore     *contracts.DualScore          `json:"raw_score"`
	GatedScore   *contracts.DualScore          `json:"gated_score"`
	Cycle        *contracts.CycleAssessment    `json:"cycle"`
	Restrictions quality.Restrictions          `json:"restrictions"`
	Analysis     *contracts.StockCycleAnalysis `json:"analysis"`
}

// StockAnalyzer runs the full per-ticker pipeline: cluster evaluation, dual
// scoring, cycle classification, then the data quality gate. Each call is a
// pure function of its inputs; tickers are mutually independent.
type StockAnalyzer struct {
	cfg        *strategyconfig.Config
	evaluator  *clusters.Evaluator
	engine     *scoring.Engine
	classifier *cycle.Classifier
	gate       *quality.Gate
	logger     *logger.Logger
}

// NewStockAnalyzer wires the per-ticker pipeline from one policy config.
func NewStockAnalyzer(cfg *strategyconfig.Config, log *logger.Logger) *StockAnalyzer {
	return &StockAnalyzer{
		cfg:        cfg,
		evaluator:  clusters.NewEvaluator(log),
		engine:     scoring.NewEngine(cfg.Scoring, log),
		classifier: cycle.NewClassifier(cfg.Cycle, log),
		gate:       quality.NewGate(cfg.Quality, log),
		logger:     log,
	}
}

// Analyze computes one ticker's full analysis.
// 평가 → 점수 → 국면 → 게이트 순서, 게이트는 항상 마지막
func (a *StockAnalyzer) Analyze(
	snap *contracts.IndicatorSnapshot,
	news *contracts.HeadlineAggregate,
) *TickerAnalysis {
	results := a.evaluator.Evaluate(snap, news, a.cfg.Clusters.Weights)
	rawScore := a.engine.Score(snap.Ticker, results)
	assessment := a.classifier.Classify(snap, news)

	restrictions := a.gate.Assess(snap, news)
	filtered := a.gate.FilterClusters(results, restrictions)
	gatedScore := a.gate.ApplyToScore(a.engine.Score(snap.Ticker, filtered), restrictions)

	analysis := &contracts.StockCycleAnalysis{
		Ticker:           snap.Ticker,
		RiskTotal:        gatedScore.SellRiskScore,
		OpportunityTotal: gatedScore.OpportunityScore,
		CyclePressure:    gatedScore.SellRiskScore - gatedScore.OpportunityScore,
		Phase:            assessment.Phase,
		TransitionRisk:   assessment.TransitionRisk,
		CriticalSignals:  criticalSignals(gatedScore.SellRiskClusters),
		DataQualityOK:    !restrictions.Any(),
	}

	return &TickerAnalysis{
		Ticker:       snap.Ticker,
		RawScore:     rawScore,
		GatedScore:   gatedScore,
		Cycle:        assessment,
		Restrictions: restrictions,
		Analysis:     analysis,
	}
}

// criticalSignals names the gated sell-risk clusters that fired hard enough
// to count as critical, in catalog order.
func criticalSignals(sellRisk []contracts.ClusterResult) []string {
	var out []string
	for _, r := range sellRisk {
		if r.Triggered && r.Strength >= criticalStrength {
			out = append(out, criticalName(r.Name))
		}
	}
	return out
}

// criticalName converts a catalog cluster name to its signal constant form,
// e.g. "Technical Overheating" -> "TECHNICAL_OVERHEATING".
func criticalName(name string) string {
	s := strings.ToUpper(name)
	s = strings.NewReplacer(" ", "_", "/", "_", "-", "_").Replace(s)
	return s
}
