package clusters

import (
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// Evaluator matches the signal cluster catalog against one ticker's
// snapshot and headline aggregate.
// ⭐ SSOT: 클러스터 평가는 여기서만
type Evaluator struct {
	catalog []Cluster
	logger  *logger.Logger
}

// NewEvaluator creates an evaluator over the default catalog.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{
		catalog: DefaultCatalog(),
		logger:  log,
	}
}

// NewEvaluatorWithCatalog creates an evaluator over a custom catalog.
// 테스트에서 소형 카탈로그 주입용
func NewEvaluatorWithCatalog(catalog []Cluster, log *logger.Logger) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		logger:  log,
	}
}

// Catalog returns the evaluator's catalog.
func (e *Evaluator) Catalog() []Cluster {
	return e.catalog
}

// Evaluate matches every cluster against the inputs. Clusters are mutually
// independent; evaluation order does not matter. weights optionally
// overrides catalog weights per cluster name (policy injection).
func (e *Evaluator) Evaluate(
	snap *contracts.IndicatorSnapshot,
	news *contracts.HeadlineAggregate,
	weights map[string]float64,
) []contracts.ClusterResult {
	in := RuleInput{Snap: snap, News: news}

	results := make([]contracts.ClusterResult, 0, len(e.catalog))
	for _, cluster := range e.catalog {
		weight := cluster.Weight
		if w, ok := weights[cluster.Name]; ok {
			weight = w
		}
		results = append(results, e.evaluateCluster(cluster, weight, in))
	}

	if e.logger != nil {
		triggered := 0
		for _, r := range results {
			if r.Triggered {
				triggered++
			}
		}
		e.logger.WithFields(map[string]interface{}{
			"ticker":    snap.Ticker,
			"clusters":  len(results),
			"triggered": triggered,
		}).Debug("Evaluated signal clusters")
	}

	return results
}

// evaluateCluster matches a single cluster. A missing required indicator
// (or a nil headline aggregate for news rules) makes the rule non-matching,
// never an error.
func (e *Evaluator) evaluateCluster(cluster Cluster, weight float64, in RuleInput) contracts.ClusterResult {
	result := contracts.ClusterResult{
		Name:     cluster.Name,
		Category: cluster.Category,
		Weight:   weight,
	}

	strength := 0.0
	for _, rule := range cluster.Rules {
		if !ruleEvaluable(rule, in) {
			continue
		}
		if !rule.Match(in) {
			continue
		}

		result.Matched = append(result.Matched, contracts.MatchedSignal{
			Label:       rule.Label,
			Delta:       rule.Delta,
			NeedsSMA50:  rule.NeedsSMA50,
			NeedsSMA200: rule.NeedsSMA200,
			FromNews:    rule.NeedsNews,
		})
		strength += rule.Delta
	}

	if strength > 1.0 {
		strength = 1.0
	}
	result.Strength = strength
	result.Triggered = len(result.Matched) >= 2 // 단일 시그널로는 절대 발동하지 않음

	return result
}

func ruleEvaluable(rule Rule, in RuleInput) bool {
	if rule.NeedsNews && in.News == nil {
		return false
	}
	for _, name := range rule.Requires {
		if _, ok := in.Snap.Get(name); !ok {
			return false
		}
	}
	return true
}

// Retrigger recomputes triggered/strength from an already filtered match
// list. Used by the data quality gate after removing restricted matches.
func Retrigger(result contracts.ClusterResult) contracts.ClusterResult {
	strength := 0.0
	for _, m := range result.Matched {
		strength += m.Delta
	}
	if strength > 1.0 {
		strength = 1.0
	}
	result.Strength = strength
	result.Triggered = len(result.Matched) >= 2
	return result
}
