package contracts

// =============================================================================
// Cluster Results
// =============================================================================

// ClusterCategory separates opportunity clusters from sell-risk clusters.
type ClusterCategory string

const (
	CategoryOpportunity ClusterCategory = "opportunity"
	CategorySellRisk    ClusterCategory = "sell_risk"
)

// MatchedSignal is one matched rule inside a cluster. Delta is the rule's
// fixed strength contribution; the dependency flags let the data quality
// gate remove matches after the fact without re-running the evaluator.
type MatchedSignal struct {
	Label       string  `json:"label"`
	Delta       float64 `json:"delta"`
	NeedsSMA50  bool    `json:"needs_sma_50,omitempty"`
	NeedsSMA200 bool    `json:"needs_sma_200,omitempty"`
	FromNews    bool    `json:"from_news,omitempty"`
}

// ClusterResult is the outcome of matching one catalog cluster against a
// snapshot. Triggered requires at least two matched rules; a single matched
// rule is never enough to act on.
type ClusterResult struct {
	Name      string          `json:"name"`
	Category  ClusterCategory `json:"category"`
	Weight    float64         `json:"weight"`
	Triggered bool            `json:"triggered"`
	Strength  float64         `json:"strength"` // 0-1, capped sum of matched deltas
	Matched   []MatchedSignal `json:"matched"`
}

// =============================================================================
// Dual Score
// =============================================================================

// Bias is the overall directional call from the dual score differential.
type Bias string

const (
	BiasStrongBuy  Bias = "STRONG_BUY"
	BiasBuy        Bias = "BUY"
	BiasHold       Bias = "HOLD"
	BiasSell       Bias = "SELL"
	BiasStrongSell Bias = "STRONG_SELL"
)

// Demote maps STRONG_* biases to their plain counterpart. Used by the data
// quality gate when the snapshot is too sparse to justify a strong call.
func (b Bias) Demote() Bias {
	switch b {
	case BiasStrongBuy:
		return BiasBuy
	case BiasStrongSell:
		return BiasSell
	default:
		return b
	}
}

// DualScore holds the two complementary 0-100 scores for one ticker.
// OpportunityScore is the accumulate bias, SellRiskScore the trim/exit bias;
// they are scored independently and only compared at the bias step.
type DualScore struct {
	Ticker           string  `json:"ticker"`
	OpportunityScore float64 `json:"opportunity_score"` // 0-100
	SellRiskScore    float64 `json:"sell_risk_score"`   // 0-100
	Bias             Bias    `json:"bias"`
	Confidence       float64 `json:"confidence"` // 0-100

	// Cluster breakdown behind the scores.
	OpportunityClusters []ClusterResult `json:"opportunity_clusters"`
	SellRiskClusters    []ClusterResult `json:"sell_risk_clusters"`
}

// Differential returns opportunity minus sell-risk. Positive favors buying.
func (d *DualScore) Differential() float64 {
	return d.OpportunityScore - d.SellRiskScore
}

// TriggeredCount returns how many clusters fired across both categories.
func (d *DualScore) TriggeredCount() int {
	n := 0
	for _, c := range d.OpportunityClusters {
		if c.Triggered {
			n++
		}
	}
	for _, c := range d.SellRiskClusters {
		if c.Triggered {
			n++
		}
	}
	return n
}
